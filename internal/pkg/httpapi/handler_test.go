package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/securitas-community/securitas-bridge/internal/pkg/securitas"
)

// stubAPI implements securitas.AlarmAPI with overridable behaviour per
// test.  Unset methods return zero values.
type stubAPI struct {
	listInstallations func(ctx context.Context) ([]securitas.Installation, error)
	checkAlarm        func(ctx context.Context, inst *securitas.Installation) (string, error)
	checkAlarmStatus  func(ctx context.Context, inst *securitas.Installation, referenceID string, timeout time.Duration) (*securitas.CheckAlarmStatus, error)
	armAlarm          func(ctx context.Context, inst *securitas.Installation, state securitas.AlarmState, timeout time.Duration) (*securitas.ArmStatus, error)
	disarmAlarm       func(ctx context.Context, inst *securitas.Installation, timeout time.Duration) (*securitas.DisarmStatus, error)
	changeLockMode    func(ctx context.Context, inst *securitas.Installation, lock bool, timeout time.Duration) (*securitas.SmartLockModeStatus, error)
}

func (s *stubAPI) Login(ctx context.Context) (*securitas.LoginResult, error) { return nil, nil }
func (s *stubAPI) Logout(ctx context.Context) error                          { return nil }
func (s *stubAPI) ValidateDevice(ctx context.Context, otpConfirmed bool, otpHash string, smsCode string) (string, []securitas.OtpPhone, error) {
	return "", nil, nil
}
func (s *stubAPI) SendOTP(ctx context.Context, phoneID int, otpHash string) error { return nil }
func (s *stubAPI) RefreshLogin(ctx context.Context) error                         { return nil }

func (s *stubAPI) ListInstallations(ctx context.Context) ([]securitas.Installation, error) {
	if s.listInstallations != nil {
		return s.listInstallations(ctx)
	}
	return []securitas.Installation{{Number: "12345", Alias: "Home", Panel: "SDVFAST"}}, nil
}

func (s *stubAPI) GetAllServices(ctx context.Context, inst *securitas.Installation) ([]securitas.Service, error) {
	return []securitas.Service{{ID: 11, Active: true, Description: "Alarm"}}, nil
}

func (s *stubAPI) CheckGeneralStatus(ctx context.Context, inst *securitas.Installation) (*securitas.GeneralStatus, error) {
	return &securitas.GeneralStatus{Status: "D"}, nil
}

func (s *stubAPI) CheckAlarm(ctx context.Context, inst *securitas.Installation) (string, error) {
	if s.checkAlarm != nil {
		return s.checkAlarm(ctx, inst)
	}
	return "ref-1", nil
}

func (s *stubAPI) CheckAlarmStatus(ctx context.Context, inst *securitas.Installation, referenceID string, timeout time.Duration) (*securitas.CheckAlarmStatus, error) {
	if s.checkAlarmStatus != nil {
		return s.checkAlarmStatus(ctx, inst, referenceID, timeout)
	}
	return &securitas.CheckAlarmStatus{Res: "OK", ProtomResponse: "D"}, nil
}

func (s *stubAPI) ArmAlarm(ctx context.Context, inst *securitas.Installation, state securitas.AlarmState, timeout time.Duration) (*securitas.ArmStatus, error) {
	if s.armAlarm != nil {
		return s.armAlarm(ctx, inst, state, timeout)
	}
	return &securitas.ArmStatus{Res: "OK", ProtomResponse: "T"}, nil
}

func (s *stubAPI) DisarmAlarm(ctx context.Context, inst *securitas.Installation, timeout time.Duration) (*securitas.DisarmStatus, error) {
	if s.disarmAlarm != nil {
		return s.disarmAlarm(ctx, inst, timeout)
	}
	return &securitas.DisarmStatus{Res: "OK", ProtomResponse: "D"}, nil
}

func (s *stubAPI) GetSmartLockConfig(ctx context.Context, inst *securitas.Installation) (*securitas.SmartLock, error) {
	return &securitas.SmartLock{Res: "OK"}, nil
}

func (s *stubAPI) GetLockCurrentMode(ctx context.Context, inst *securitas.Installation) (*securitas.SmartLockMode, error) {
	return &securitas.SmartLockMode{Res: "OK", LockStatus: "locked"}, nil
}

func (s *stubAPI) ChangeLockMode(ctx context.Context, inst *securitas.Installation, lock bool, timeout time.Duration) (*securitas.SmartLockModeStatus, error) {
	if s.changeLockMode != nil {
		return s.changeLockMode(ctx, inst, lock, timeout)
	}
	return &securitas.SmartLockModeStatus{Res: "OK"}, nil
}

func (s *stubAPI) GetSentinelData(ctx context.Context, inst *securitas.Installation, service securitas.Service) (*securitas.Sentinel, error) {
	return &securitas.Sentinel{}, nil
}

func (s *stubAPI) GetAirQualityData(ctx context.Context, inst *securitas.Installation, service securitas.Service) (*securitas.AirQuality, error) {
	return &securitas.AirQuality{}, nil
}

func newTestServer(api securitas.AlarmAPI) *httptest.Server {
	h := NewAlarmHandler(api, time.Minute)
	r := mux.NewRouter()
	h.Routes(r)
	return httptest.NewServer(r)
}

func TestListInstallationsEndpoint(t *testing.T) {
	srv := newTestServer(&stubAPI{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/installations")
	if err != nil {
		t.Fatalf("GET /installations: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var installations []securitas.Installation
	if err := json.NewDecoder(resp.Body).Decode(&installations); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(installations) != 1 || installations[0].Number != "12345" {
		t.Errorf("installations = %+v", installations)
	}
}

func TestUnknownInstallation(t *testing.T) {
	srv := newTestServer(&stubAPI{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/installations/99999/check", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCheckEndpoint(t *testing.T) {
	srv := newTestServer(&stubAPI{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/installations/12345/check", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var status securitas.CheckAlarmStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.ProtomResponse != "D" {
		t.Errorf("ProtomResponse = %q, want D", status.ProtomResponse)
	}
}

func TestArmEndpointParsesMode(t *testing.T) {
	var gotState securitas.AlarmState
	api := &stubAPI{
		armAlarm: func(ctx context.Context, inst *securitas.Installation, state securitas.AlarmState, timeout time.Duration) (*securitas.ArmStatus, error) {
			gotState = state
			return &securitas.ArmStatus{Res: "OK"}, nil
		},
	}

	srv := newTestServer(api)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/installations/12345/arm", "application/json",
		strings.NewReader(`{"mode":"night_armed"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotState != securitas.AlarmNightArmed {
		t.Errorf("state = %v, want AlarmNightArmed", gotState)
	}
}

func TestArmEndpointRejectsBadMode(t *testing.T) {
	srv := newTestServer(&stubAPI{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/installations/12345/arm", "application/json",
		strings.NewReader(`{"mode":"sideways"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"login", &securitas.LoginError{Message: "bad credentials"}, http.StatusUnauthorized},
		{"timeout", &securitas.OperationTimeoutError{Operation: "op"}, http.StatusGatewayTimeout},
		{"connection", &securitas.ConnectionError{URL: "https://example.com"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubAPI{
				checkAlarm: func(ctx context.Context, inst *securitas.Installation) (string, error) {
					return "", tt.err
				},
			}

			srv := newTestServer(api)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/installations/12345/check", "application/json", nil)
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestLockEndpoints(t *testing.T) {
	var gotLock bool
	api := &stubAPI{
		changeLockMode: func(ctx context.Context, inst *securitas.Installation, lock bool, timeout time.Duration) (*securitas.SmartLockModeStatus, error) {
			gotLock = lock
			return &securitas.SmartLockModeStatus{Res: "OK"}, nil
		},
	}

	srv := newTestServer(api)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/installations/12345/lock", "application/json", nil)
	if err != nil {
		t.Fatalf("POST lock: %v", err)
	}
	resp.Body.Close()
	if !gotLock {
		t.Error("lock endpoint should request lock=true")
	}

	resp, err = http.Post(srv.URL+"/installations/12345/unlock", "application/json", nil)
	if err != nil {
		t.Fatalf("POST unlock: %v", err)
	}
	resp.Body.Close()
	if gotLock {
		t.Error("unlock endpoint should request lock=false")
	}
}
