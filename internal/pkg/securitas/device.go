package securitas

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// The API expects the client to look like the official Android app, so
// the device metadata is fixed to a plausible handset.
const (
	deviceBrand     = "samsung"
	deviceName      = "SM-S901U"
	deviceOsVersion = "12"
	deviceVersion   = "10.102.0"

	// The doubled prefix is what the official app sends; the server
	// accepts it, so it is preserved verbatim.
	userAgent = "User-Agent: Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.5005.124 Safari/537.36 Edg/102.0.1245.41"
)

func randomURLSafe(nbytes int) string {
	b := make([]byte, nbytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// GenerateUUID returns a 16 character device uuid of the kind the
// official app registers.
func GenerateUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[0:16]
}

// GenerateDeviceID returns a push-style device identifier.  The API
// only checks the shape, not the registration.
func GenerateDeviceID() string {
	suffix := randomURLSafe(130)
	if len(suffix) > 134 {
		suffix = suffix[0:134]
	}

	return randomURLSafe(16) + ":APA91b" + suffix
}

// GenerateIndigitallID returns an id for the indigitall push platform
// field of the login request.
func GenerateIndigitallID() string {
	return uuid.New().String()
}

func generateApolloOperationID() string {
	b := make([]byte, 64)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// requestID builds the per-request correlation id the server expects in
// the auth header, derived from the user name and the current time.
func requestID(username string, now time.Time) string {
	return fmt.Sprintf("OWA_______________%s_______________%d%d%d%d%d%d",
		username,
		now.Year(), int(now.Month()), now.Day(),
		now.Hour(), now.Minute(), now.Nanosecond()/1000)
}
