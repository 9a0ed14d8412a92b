package securitas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/securitas-community/securitas-bridge/internal/pkg/logging"
)

type graphQLRequest struct {
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Query         string                 `json:"query"`
}

type graphQLError struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type graphQLResponse struct {
	Data map[string]json.RawMessage

	raw []byte
}

// decode unmarshals one top level field of the response data, raising a
// domain error when the field is absent so callers never chase nil maps.
func (r *graphQLResponse) decode(field string, v interface{}) error {
	raw, ok := r.Data[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return &APIError{
			Message: fmt.Sprintf("unexpected response shape: missing %s", field),
			Raw:     r.raw,
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return &DecodeError{Err: err, Body: raw}
	}

	return nil
}

// The errors member is usually an array of {message, data} but at least
// one backend release returns a single object with a data.reason field.
func parseGraphQLErrors(raw json.RawMessage) []graphQLError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []graphQLError
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single struct {
		Data struct {
			Reason string `json:"reason"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &single); err == nil && single.Data.Reason != "" {
		return []graphQLError{{Message: single.Data.Reason, Data: raw}}
	}

	return nil
}

type authHeader struct {
	LoginTimestamp int64   `json:"loginTimestamp"`
	User           string  `json:"user"`
	ID             string  `json:"id"`
	Country        string  `json:"country"`
	Lang           string  `json:"lang"`
	Callby         string  `json:"callby"`
	Hash           string  `json:"hash"`
	RefreshToken   *string `json:"refreshToken,omitempty"`
}

type securityHeader struct {
	Token   string `json:"token"`
	Type    string `json:"type"`
	OtpHash string `json:"otpHash"`
}

type appHeader struct {
	AppVersion string `json:"appVersion"`
	Origin     string `json:"origin"`
}

// Operations that authenticate the device itself rather than the
// session; they carry an auth header with an empty hash.
func isDeviceAuthOperation(op string) bool {
	switch op {
	case opValidateDevice, opRefreshLogin, opSendOTP:
		return true
	}

	return false
}

func (c *Client) buildHeaders(req *http.Request, operation string, inst *Installation) {
	app, _ := json.Marshal(appHeader{AppVersion: deviceVersion, Origin: "native"})
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("app", string(app))
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-APOLLO-OPERATION-ID", c.apolloOperationID)
	req.Header.Set("X-APOLLO-OPERATION-NAME", operation)
	req.Header.Set("extension", `{"mode":"full"}`)

	if inst != nil {
		req.Header.Set("numinst", inst.Number)
		req.Header.Set("panel", inst.Panel)
		req.Header.Set("X-Capabilities", inst.Capabilities)
	}

	c.mu.Lock()
	token := c.authToken
	loginTimestamp := c.loginTimestamp
	otp := c.otp
	c.otp = nil // the OTP challenge is single use
	c.mu.Unlock()

	auth := authHeader{
		LoginTimestamp: loginTimestamp,
		User:           c.username,
		ID:             requestID(c.username, time.Now()),
		Country:        c.country,
		Lang:           c.language,
		Callby:         "OWA_10",
		Hash:           token,
	}

	if isDeviceAuthOperation(operation) {
		empty := ""
		auth.Hash = ""
		auth.RefreshToken = &empty
	}

	if auth.Hash != "" || isDeviceAuthOperation(operation) {
		value, _ := json.Marshal(auth)
		req.Header.Set("auth", string(value))
	}

	if otp != nil {
		value, _ := json.Marshal(securityHeader{
			Token:   otp.code,
			Type:    "OTP",
			OtpHash: otp.hash,
		})
		req.Header.Set("security", string(value))
	}
}

// post performs a single GraphQL round trip.  A GraphQL errors payload
// comes back as *APIError with the raw body attached.
func (c *Client) post(ctx context.Context, operation string, vars map[string]interface{}, query string, inst *Installation) (*graphQLResponse, error) {
	body, err := json.Marshal(graphQLRequest{
		OperationName: operation,
		Variables:     vars,
		Query:         query,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building graphql request")
	}
	c.buildHeaders(req, operation, inst)

	logging.Logger(ctx).Debugf("executing %s against %s", operation, c.apiURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ConnectionError{URL: c.apiURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{URL: c.apiURL, Err: err}
	}

	var parsed struct {
		Data   map[string]json.RawMessage `json:"data"`
		Errors json.RawMessage            `json:"errors"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logging.Logger(ctx).WithError(err).Errorf("problems decoding response to %s", operation)
		return nil, &DecodeError{Err: err, Body: raw}
	}

	if gqlErrors := parseGraphQLErrors(parsed.Errors); len(gqlErrors) > 0 {
		return nil, &APIError{Message: gqlErrors[0].Message, Raw: raw}
	}

	return &graphQLResponse{Data: parsed.Data, raw: raw}, nil
}

func (c *Client) shouldReauthenticate(message string) bool {
	for _, m := range c.reauthMessages {
		if m == message {
			return true
		}
	}

	return false
}

// execute wraps post with a single transparent re-login when the API
// reports the session as expired.  The retry is a bounded loop, never
// recursion, so a persistently rejected session fails after one repeat.
func (c *Client) execute(ctx context.Context, operation string, vars map[string]interface{}, query string, inst *Installation) (*graphQLResponse, error) {
	retried := false
	for {
		resp, err := c.post(ctx, operation, vars, query, inst)
		if err == nil {
			return resp, nil
		}

		var apiErr *APIError
		if !retried && errors.As(err, &apiErr) && c.shouldReauthenticate(apiErr.Message) {
			retried = true
			logging.Logger(ctx).Info("session rejected by the API, logging in again")

			c.mu.Lock()
			c.authToken = ""
			c.mu.Unlock()

			result, lerr := c.Login(ctx)
			if lerr != nil {
				return nil, lerr
			}
			if result.Outcome != LoginAuthenticated {
				return nil, &LoginError{Message: "device requires OTP validation"}
			}
			continue
		}

		return nil, err
	}
}
