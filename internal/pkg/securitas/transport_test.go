package securitas

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseGraphQLErrorsArray(t *testing.T) {
	raw := json.RawMessage(`[{"message":"first"},{"message":"second"}]`)

	got := parseGraphQLErrors(raw)
	if len(got) != 2 {
		t.Fatalf("got %d errors, want 2", len(got))
	}
	if got[0].Message != "first" {
		t.Errorf("Message = %q, want %q", got[0].Message, "first")
	}
}

func TestParseGraphQLErrorsSingleObject(t *testing.T) {
	// At least one backend release returns a bare object with a reason
	raw := json.RawMessage(`{"data":{"reason":"Invalid token: Expired"}}`)

	got := parseGraphQLErrors(raw)
	if len(got) != 1 {
		t.Fatalf("got %d errors, want 1", len(got))
	}
	if got[0].Message != "Invalid token: Expired" {
		t.Errorf("Message = %q, want %q", got[0].Message, "Invalid token: Expired")
	}
}

func TestParseGraphQLErrorsEmpty(t *testing.T) {
	if got := parseGraphQLErrors(nil); got != nil {
		t.Errorf("parseGraphQLErrors(nil) = %v, want nil", got)
	}
	if got := parseGraphQLErrors(json.RawMessage(`null`)); got != nil {
		t.Errorf("parseGraphQLErrors(null) = %v, want nil", got)
	}
}

func TestPostSendsApolloHeaders(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opLoginToken, loginOKBody(t))
	api.respond(opInstallationList, `{"data":{"xSInstallations":{"installations":[]}}}`)

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.ListInstallations(context.Background()); err != nil {
		t.Fatalf("ListInstallations: %v", err)
	}

	req := api.request(opInstallationList)
	if got := req.Header.Get("X-APOLLO-OPERATION-NAME"); got != opInstallationList {
		t.Errorf("X-APOLLO-OPERATION-NAME = %q, want %q", got, opInstallationList)
	}
	if got := req.Header.Get("X-APOLLO-OPERATION-ID"); got != c.apolloOperationID {
		t.Errorf("X-APOLLO-OPERATION-ID = %q, want %q", got, c.apolloOperationID)
	}
	if got := req.Header.Get("extension"); got != `{"mode":"full"}` {
		t.Errorf("extension = %q", got)
	}

	var app appHeader
	if err := json.Unmarshal([]byte(req.Header.Get("app")), &app); err != nil {
		t.Fatalf("decoding app header: %v", err)
	}
	if app.Origin != "native" {
		t.Errorf("app origin = %q, want native", app.Origin)
	}

	var auth authHeader
	if err := json.Unmarshal([]byte(req.Header.Get("auth")), &auth); err != nil {
		t.Fatalf("decoding auth header: %v", err)
	}
	if auth.Hash == "" {
		t.Error("auth hash should carry the session token")
	}
	if auth.Callby != "OWA_10" {
		t.Errorf("auth callby = %q, want OWA_10", auth.Callby)
	}
	if auth.User != "user@example.com" {
		t.Errorf("auth user = %q, want user@example.com", auth.User)
	}
	if auth.LoginTimestamp == 0 {
		t.Error("auth loginTimestamp should be set after login")
	}
}

func TestPostConnectionError(t *testing.T) {
	srv := httptest.NewServer(newFakeAPI(t))
	srv.Close() // refuse connections

	c, err := NewClient(Config{Username: "u", Password: "p", Country: "ES"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.apiURL = srv.URL

	_, err = c.post(context.Background(), opLoginToken, nil, queryLoginToken, nil)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err = %v, want *ConnectionError", err)
	}
}

func TestPostDecodeError(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opLoginToken, `not json at all`)

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	_, err := c.post(context.Background(), opLoginToken, nil, queryLoginToken, nil)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestPostContextCancellationWins(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opLoginToken, loginOKBody(t))

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.post(ctx, opLoginToken, nil, queryLoginToken, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDecodeMissingField(t *testing.T) {
	resp := &graphQLResponse{
		Data: map[string]json.RawMessage{"xSOther": json.RawMessage(`{}`)},
		raw:  []byte(`{"data":{"xSOther":{}}}`),
	}

	var v struct{}
	err := resp.decode("xSLoginToken", &v)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
}

func TestShouldReauthenticate(t *testing.T) {
	c := &Client{reauthMessages: defaultReauthMessages}

	if !c.shouldReauthenticate("Invalid session. Please, try again later.") {
		t.Error("known session message should trigger reauth")
	}
	if c.shouldReauthenticate("Invalid user or password") {
		t.Error("credential failures must not trigger reauth")
	}
}

func TestReauthMessagesConfigurable(t *testing.T) {
	c, err := NewClient(Config{
		Username:       "u",
		Password:       "p",
		Country:        "ES",
		ReauthMessages: []string{"custom session message"},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if !c.shouldReauthenticate("custom session message") {
		t.Error("configured message should trigger reauth")
	}
	if c.shouldReauthenticate("Invalid token: Expired") {
		t.Error("defaults should be replaced, not merged")
	}
}

func TestTokenValid(t *testing.T) {
	c := &Client{}

	if c.tokenValid(time.Now()) {
		t.Error("empty token should not be valid")
	}

	c.authToken = "token"
	c.authTokenExpiry = time.Now().Add(time.Hour)
	if !c.tokenValid(time.Now()) {
		t.Error("fresh token should be valid")
	}

	c.authTokenExpiry = time.Now().Add(30 * time.Second)
	if c.tokenValid(time.Now()) {
		t.Error("a token inside the safety margin should count as expired")
	}
}
