package securitas

import (
	"context"
	"time"
)

// Installation is one physical alarm site/panel registered to the
// account.  Capabilities is a short-lived JWT scoping which operations
// are permitted for the installation; it is refreshed lazily by the
// client as a side effect of listing services.
type Installation struct {
	Number     string
	Alias      string
	Panel      string
	Type       string
	Name       string
	Surname    string
	Address    string
	City       string
	PostalCode string
	Province   string
	Email      string
	Phone      string

	Capabilities       string
	CapabilitiesExpiry time.Time
}

// OtpPhone is one phone number eligible for the SMS device-validation
// challenge.
type OtpPhone struct {
	ID    int
	Phone string
}

// LoginOutcome distinguishes a completed login from one that needs the
// device-validation flow first.
type LoginOutcome int

const (
	// LoginAuthenticated means a token was obtained and stored.
	LoginAuthenticated LoginOutcome = iota

	// LoginTwoFactorRequired means this device is unknown to the API
	// and must run the OTP validation flow before it can log in.
	LoginTwoFactorRequired
)

// LoginResult is the outcome of a login attempt.  Hard failures (bad
// credentials, transport problems) are returned as errors instead.
type LoginResult struct {
	Outcome LoginOutcome
}

// Attribute is a single service attribute.
type Attribute struct {
	Name   string
	Value  string
	Active bool
}

// Service is the descriptive metadata for one installation feature.
type Service struct {
	ID                int
	Active            bool
	Visible           bool
	Bde               bool
	IsPremium         bool
	CodOper           bool
	TotalDevice       int
	Request           string
	MinWrapperVersion string
	Description       string
	Attributes        []Attribute
}

// CheckAlarmStatus is the terminal result of a check-alarm operation.
type CheckAlarmStatus struct {
	Res                string
	Msg                string
	Status             string
	Numinst            string
	ProtomResponse     string
	ProtomResponseDate string
}

// ArmStatusError is the structured error block the panel returns when
// an arm request cannot complete (open doors etc).
type ArmStatusError struct {
	Code             string `json:"code"`
	Type             string `json:"type"`
	AllowForcing     bool   `json:"allowForcing"`
	ExceptionsNumber int    `json:"exceptionsNumber"`
	ReferenceID      string `json:"referenceId"`
}

// ArmStatus is the terminal result of an arm operation.
type ArmStatus struct {
	Res                string
	Msg                string
	Status             string
	Numinst            string
	ProtomResponse     string
	ProtomResponseDate string
	RequestID          string
	Error              *ArmStatusError
}

// DisarmStatus is the terminal result of a disarm operation.
type DisarmStatus struct {
	Res                string
	Msg                string
	Status             string
	Numinst            string
	ProtomResponse     string
	ProtomResponseDate string
	RequestID          string
	Error              *ArmStatusError
}

// SmartLockModeStatus is the terminal result of a lock mode change.
type SmartLockModeStatus struct {
	Res            string
	Msg            string
	ProtomResponse string
	Status         string
}

// SmartLock describes the smart lock device on an installation.
type SmartLock struct {
	Res      string
	Location string
	Type     string
}

// SmartLockMode is the current mode of the smart lock.
type SmartLockMode struct {
	Res        string
	LockStatus string
}

// GeneralStatus is the panel status as last recorded by the vendor,
// without triggering a fresh check-alarm operation.
type GeneralStatus struct {
	Status          string
	TimestampUpdate string
}

// Sentinel is a comfort sensor reading.
type Sentinel struct {
	Alias       string
	AirQuality  string
	Humidity    int
	Temperature int
}

// AirQuality is an air quality reading.
type AirQuality struct {
	Value   int
	Message string
}

// AlarmAPI is the client surface exposed to the hub.
type AlarmAPI interface {
	Login(ctx context.Context) (*LoginResult, error)
	Logout(ctx context.Context) error
	ValidateDevice(ctx context.Context, otpConfirmed bool, otpHash string, smsCode string) (string, []OtpPhone, error)
	SendOTP(ctx context.Context, phoneID int, otpHash string) error
	RefreshLogin(ctx context.Context) error

	ListInstallations(ctx context.Context) ([]Installation, error)
	GetAllServices(ctx context.Context, inst *Installation) ([]Service, error)
	CheckGeneralStatus(ctx context.Context, inst *Installation) (*GeneralStatus, error)

	CheckAlarm(ctx context.Context, inst *Installation) (string, error)
	CheckAlarmStatus(ctx context.Context, inst *Installation, referenceID string, timeout time.Duration) (*CheckAlarmStatus, error)
	ArmAlarm(ctx context.Context, inst *Installation, state AlarmState, timeout time.Duration) (*ArmStatus, error)
	DisarmAlarm(ctx context.Context, inst *Installation, timeout time.Duration) (*DisarmStatus, error)

	GetSmartLockConfig(ctx context.Context, inst *Installation) (*SmartLock, error)
	GetLockCurrentMode(ctx context.Context, inst *Installation) (*SmartLockMode, error)
	ChangeLockMode(ctx context.Context, inst *Installation, lock bool, timeout time.Duration) (*SmartLockModeStatus, error)

	GetSentinelData(ctx context.Context, inst *Installation, service Service) (*Sentinel, error)
	GetAirQualityData(ctx context.Context, inst *Installation, service Service) (*AirQuality, error)
}
