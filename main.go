package main

import "github.com/securitas-community/securitas-bridge/cmd"

func main() {
	cmd.Execute()
}
