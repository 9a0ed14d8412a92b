package securitas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDecodeTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, err := decodeTokenExpiry(testToken(t, exp))
	if err != nil {
		t.Fatalf("decodeTokenExpiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}
}

func TestDecodeTokenExpiryNoClaim(t *testing.T) {
	// Capability tokens do not always carry exp; that is not an error
	token := testTokenWithClaims(t, map[string]interface{}{"sub": "12345"})

	got, err := decodeTokenExpiry(token)
	if err != nil {
		t.Fatalf("decodeTokenExpiry: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expiry = %v, want zero time", got)
	}
}

func TestDecodeTokenExpiryMalformed(t *testing.T) {
	if _, err := decodeTokenExpiry("not-a-token"); err == nil {
		t.Error("decodeTokenExpiry should fail on a malformed token")
	}
}

func TestLoginSuccess(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opLoginToken, loginOKBody(t))

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)
	before := time.Now().UnixMilli()

	result, err := c.Login(context.Background())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Outcome != LoginAuthenticated {
		t.Errorf("Outcome = %v, want LoginAuthenticated", result.Outcome)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authToken == "" {
		t.Error("authToken should be stored")
	}
	if c.refreshToken != "refresh-1" {
		t.Errorf("refreshToken = %q, want %q", c.refreshToken, "refresh-1")
	}
	if c.loginTimestamp < before {
		t.Errorf("loginTimestamp = %d, want >= %d", c.loginTimestamp, before)
	}
	if !c.authTokenExpiry.After(time.Now()) {
		t.Error("authTokenExpiry should be in the future")
	}
}

func TestLoginTwoFactorRequired(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opLoginToken,
		`{"data":{"xSLoginToken":{"needDeviceAuthorization":true}},"errors":[{"message":"Unauthorized device"}]}`)

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	result, err := c.Login(context.Background())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Outcome != LoginTwoFactorRequired {
		t.Errorf("Outcome = %v, want LoginTwoFactorRequired", result.Outcome)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opLoginToken, `{"errors":[{"message":"Invalid user or password"}]}`)

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	_, err := c.Login(context.Background())
	var loginErr *LoginError
	if !errors.As(err, &loginErr) {
		t.Fatalf("err = %v, want *LoginError", err)
	}
	if loginErr.Message != "Invalid user or password" {
		t.Errorf("Message = %q, want %q", loginErr.Message, "Invalid user or password")
	}
}

func TestLoginSendsDeviceIdentity(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opLoginToken, loginOKBody(t))

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}

	vars := api.vars(opLoginToken)
	if vars["idDevice"] != c.deviceID {
		t.Errorf("idDevice = %v, want %q", vars["idDevice"], c.deviceID)
	}
	if vars["uuid"] != c.uuid {
		t.Errorf("uuid = %v, want %q", vars["uuid"], c.uuid)
	}
	if vars["country"] != "ES" {
		t.Errorf("country = %v, want ES", vars["country"])
	}
	if vars["callby"] != "OWA_10" {
		t.Errorf("callby = %v, want OWA_10", vars["callby"])
	}
}

func TestValidateDeviceProbe(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opValidateDevice, `{"errors":[{"message":"Unauthorized device","data":{
		"auth-otp-hash":"challenge-hash",
		"auth-phones":[{"id":0,"phone":"**********972"},{"id":1,"phone":"**********973"}]
	}}]}`)

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	hash, phones, err := c.ValidateDevice(context.Background(), false, "", "")
	if err != nil {
		t.Fatalf("ValidateDevice: %v", err)
	}
	if hash != "challenge-hash" {
		t.Errorf("hash = %q, want %q", hash, "challenge-hash")
	}
	if len(phones) != 2 {
		t.Fatalf("got %d phones, want 2", len(phones))
	}
	if phones[1].ID != 1 || phones[1].Phone != "**********973" {
		t.Errorf("phones[1] = %+v", phones[1])
	}

	// The probe authenticates the device, not the session
	req := api.request(opValidateDevice)
	var auth struct {
		Hash         string  `json:"hash"`
		RefreshToken *string `json:"refreshToken"`
	}
	if err := json.Unmarshal([]byte(req.Header.Get("auth")), &auth); err != nil {
		t.Fatalf("decoding auth header: %v", err)
	}
	if auth.Hash != "" {
		t.Errorf("auth hash = %q, want empty for device auth", auth.Hash)
	}
	if auth.RefreshToken == nil || *auth.RefreshToken != "" {
		t.Error("auth refreshToken should be present and empty for device auth")
	}
}

func TestValidateDeviceConfirm(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opValidateDevice, fmt.Sprintf(
		`{"data":{"xSValidateDevice":{"res":"OK","hash":%q,"refreshToken":"refresh-2"}}}`,
		testToken(t, time.Now().Add(time.Hour))))

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	if _, _, err := c.ValidateDevice(context.Background(), true, "challenge-hash", "123456"); err != nil {
		t.Fatalf("ValidateDevice: %v", err)
	}

	req := api.request(opValidateDevice)
	var sec securityHeader
	if err := json.Unmarshal([]byte(req.Header.Get("security")), &sec); err != nil {
		t.Fatalf("decoding security header: %v", err)
	}
	if sec.Token != "123456" {
		t.Errorf("security token = %q, want %q", sec.Token, "123456")
	}
	if sec.Type != "OTP" {
		t.Errorf("security type = %q, want OTP", sec.Type)
	}
	if sec.OtpHash != "challenge-hash" {
		t.Errorf("security otpHash = %q, want %q", sec.OtpHash, "challenge-hash")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authToken == "" {
		t.Error("confirmed validation should store the session token")
	}
	if c.otp != nil {
		t.Error("the OTP challenge should be cleared after use")
	}
}

func TestSendOTP(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opSendOTP, `{"data":{"xSSendOtp":{"res":"OK","msg":"Code sent"}}}`)

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	if err := c.SendOTP(context.Background(), 1, "challenge-hash"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}

	vars := api.vars(opSendOTP)
	if vars["recordId"] != float64(1) {
		t.Errorf("recordId = %v, want 1", vars["recordId"])
	}
	if vars["otpHash"] != "challenge-hash" {
		t.Errorf("otpHash = %v, want %q", vars["otpHash"], "challenge-hash")
	}
}

func TestSendOTPRejected(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opSendOTP, `{"data":{"xSSendOtp":{"res":"KO","msg":"Too many attempts"}}}`)

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)

	err := c.SendOTP(context.Background(), 1, "challenge-hash")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "Too many attempts" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "Too many attempts")
	}
}

func TestRefreshLogin(t *testing.T) {
	api := newFakeAPI(t)
	api.respond(opRefreshLogin, fmt.Sprintf(
		`{"data":{"xSRefreshLogin":{"res":"OK","hash":%q,"refreshToken":"refresh-3"}}}`,
		testToken(t, time.Now().Add(time.Hour))))

	srv := httptest.NewServer(api)
	defer srv.Close()

	c := newTestClient(t, srv)
	c.mu.Lock()
	c.refreshToken = "refresh-2"
	c.mu.Unlock()

	if err := c.RefreshLogin(context.Background()); err != nil {
		t.Fatalf("RefreshLogin: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authToken == "" {
		t.Error("refresh should store a new session token")
	}
	if c.refreshToken != "refresh-3" {
		t.Errorf("refreshToken = %q, want %q", c.refreshToken, "refresh-3")
	}
}

func TestRefreshLoginWithoutToken(t *testing.T) {
	c, err := NewClient(Config{Username: "u", Password: "p", Country: "ES"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var loginErr *LoginError
	if err := c.RefreshLogin(context.Background()); !errors.As(err, &loginErr) {
		t.Fatalf("err = %v, want *LoginError", err)
	}
}
