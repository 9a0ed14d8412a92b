package securitas

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	// A token that expires within this margin is treated as expired, so
	// it cannot lapse while a request is in flight.
	tokenValidityMargin = time.Minute

	defaultPollDelay = 2 * time.Second
)

// Messages the API uses when the session needs to be re-established.
// The vendor is not consistent about these across releases, so the set
// is configurable per client.
var defaultReauthMessages = []string{
	"Invalid session. Please, try again later.",
	"Invalid token: Expired",
	"Required request header 'x-installationNumber' for method parameter type String is not present",
}

// Config carries the constructor parameters for a Client.
type Config struct {
	Username string
	Password string
	Country  string

	// HTTPClient is reused across all calls; pass the hub's shared
	// client to avoid connection pool exhaustion.
	HTTPClient *http.Client

	// Device identity.  Generate once and persist alongside the hub
	// config, because the OTP validation is bound to these values.
	DeviceID     string
	UUID         string
	IndigitallID string

	CommandSet CommandSet

	// PollDelay is the pause between operation status polls.  Zero
	// selects the default of 2s.
	PollDelay time.Duration

	// ReauthMessages overrides the set of API error messages that
	// trigger a transparent re-login.  Nil selects the defaults.
	ReauthMessages []string
}

type otpChallenge struct {
	hash string
	code string
}

// Client talks to the Securitas Direct GraphQL API on behalf of one
// account.  It is safe for concurrent use across installations;
// operations against the same installation must be serialised by the
// caller.
type Client struct {
	username string
	password string
	country  string
	language string
	apiURL   string

	httpClient *http.Client

	deviceID          string
	uuid              string
	indigitallID      string
	apolloOperationID string

	commands       CommandSet
	pollDelay      time.Duration
	reauthMessages []string

	mu              sync.Mutex
	authToken       string
	authTokenExpiry time.Time
	loginTimestamp  int64
	refreshToken    string
	otp             *otpChallenge
	protomStatus    map[string]string
}

var _ AlarmAPI = (*Client)(nil)

// NewClient builds a client for one account.  No network traffic
// happens until the first operation.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("username and password are required")
	}
	if cfg.Country == "" {
		return nil, errors.New("country is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = GenerateDeviceID()
	}
	devUUID := cfg.UUID
	if devUUID == "" {
		devUUID = GenerateUUID()
	}
	indigitallID := cfg.IndigitallID
	if indigitallID == "" {
		indigitallID = GenerateIndigitallID()
	}

	pollDelay := cfg.PollDelay
	if pollDelay == 0 {
		pollDelay = defaultPollDelay
	}

	reauth := cfg.ReauthMessages
	if reauth == nil {
		reauth = defaultReauthMessages
	}

	return &Client{
		username:          cfg.Username,
		password:          cfg.Password,
		country:           strings.ToUpper(cfg.Country),
		language:          LanguageForCountry(cfg.Country),
		apiURL:            URLForCountry(cfg.Country),
		httpClient:        httpClient,
		deviceID:          deviceID,
		uuid:              devUUID,
		indigitallID:      indigitallID,
		apolloOperationID: generateApolloOperationID(),
		commands:          cfg.CommandSet,
		pollDelay:         pollDelay,
		reauthMessages:    reauth,
		protomStatus:      make(map[string]string),
	}, nil
}

// The last protocol status code seen for an installation.  Arm and
// disarm requests echo it back as currentStatus so the server can
// detect conflicting commands.  Keyed per installation to keep
// concurrent operations on different installations independent.
func (c *Client) lastProtomStatus(numinst string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.protomStatus[numinst]
}

func (c *Client) setProtomStatus(numinst, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.protomStatus[numinst] = status
}

func (c *Client) tokenValid(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authToken != "" && now.Add(tokenValidityMargin).Before(c.authTokenExpiry)
}

// ensureAuthenticated logs in if there is no token or the current one
// is about to expire.  A login that comes back asking for device
// validation is an error here: the caller has to run the OTP flow
// explicitly before using the API.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	if c.tokenValid(time.Now()) {
		return nil
	}

	result, err := c.Login(ctx)
	if err != nil {
		return err
	}
	if result.Outcome == LoginTwoFactorRequired {
		return &LoginError{Message: "device requires OTP validation"}
	}

	return nil
}

// ListInstallations returns the alarm installations on the account.
func (c *Client) ListInstallations(ctx context.Context) ([]Installation, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	resp, err := c.execute(ctx, opInstallationList, nil, queryInstallationList, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Installations []struct {
			Numinst  string `json:"numinst"`
			Alias    string `json:"alias"`
			Panel    string `json:"panel"`
			Type     string `json:"type"`
			Name     string `json:"name"`
			Surname  string `json:"surname"`
			Address  string `json:"address"`
			City     string `json:"city"`
			Postcode string `json:"postcode"`
			Province string `json:"province"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
		} `json:"installations"`
	}
	if err := resp.decode("xSInstallations", &payload); err != nil {
		return nil, err
	}

	installations := make([]Installation, 0, len(payload.Installations))
	for _, item := range payload.Installations {
		installations = append(installations, Installation{
			Number:     item.Numinst,
			Alias:      item.Alias,
			Panel:      item.Panel,
			Type:       item.Type,
			Name:       item.Name,
			Surname:    item.Surname,
			Address:    item.Address,
			City:       item.City,
			PostalCode: item.Postcode,
			Province:   item.Province,
			Email:      item.Email,
			Phone:      item.Phone,
		})
	}

	return installations, nil
}

// CheckGeneralStatus returns the panel status the vendor last recorded,
// without starting a fresh check-alarm operation.
func (c *Client) CheckGeneralStatus(ctx context.Context, inst *Installation) (*GeneralStatus, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	vars := map[string]interface{}{"numinst": inst.Number}
	resp, err := c.execute(ctx, opStatus, vars, queryStatus, inst)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Status          string `json:"status"`
		TimestampUpdate string `json:"timestampUpdate"`
	}
	if err := resp.decode("xSStatus", &payload); err != nil {
		return nil, err
	}

	return &GeneralStatus{
		Status:          payload.Status,
		TimestampUpdate: payload.TimestampUpdate,
	}, nil
}

// GetSentinelData returns the comfort sensor reading for the zone the
// service is attached to.
func (c *Client) GetSentinelData(ctx context.Context, inst *Installation, service Service) (*Sentinel, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	vars := map[string]interface{}{"numinst": inst.Number}
	resp, err := c.execute(ctx, opSentinel, vars, querySentinel, inst)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Devices []struct {
			Alias  string `json:"alias"`
			Zone   string `json:"zone"`
			Status struct {
				Temperature    json.Number `json:"temperature"`
				Humidity       json.Number `json:"humidity"`
				AirQualityCode string      `json:"airQualityCode"`
			} `json:"status"`
		} `json:"devices"`
	}
	if err := resp.decode("xSComfort", &payload); err != nil {
		return nil, err
	}

	var zone string
	if len(service.Attributes) > 0 {
		zone = service.Attributes[0].Value
	}

	for _, device := range payload.Devices {
		if device.Zone != zone {
			continue
		}

		humidity, _ := device.Status.Humidity.Int64()
		temperature, _ := device.Status.Temperature.Int64()
		return &Sentinel{
			Alias:       device.Alias,
			AirQuality:  device.Status.AirQualityCode,
			Humidity:    int(humidity),
			Temperature: int(temperature),
		}, nil
	}

	return &Sentinel{}, nil
}

// GetAirQualityData returns the current air quality for the zone the
// service is attached to.
func (c *Client) GetAirQualityData(ctx context.Context, inst *Installation, service Service) (*AirQuality, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	var zone string
	if len(service.Attributes) > 0 {
		zone = service.Attributes[0].Value
	}

	vars := map[string]interface{}{
		"numinst": inst.Number,
		"zone":    zone,
	}
	resp, err := c.execute(ctx, opAirQuality, vars, queryAirQuality, inst)
	if err != nil {
		return nil, err
	}

	var payload struct {
		GraphData struct {
			Status struct {
				Current    json.Number `json:"current"`
				CurrentMsg string      `json:"currentMsg"`
			} `json:"status"`
		} `json:"graphData"`
	}
	if err := resp.decode("xSAirQ", &payload); err != nil {
		return nil, err
	}

	current, _ := payload.GraphData.Status.Current.Int64()
	return &AirQuality{
		Value:   int(current),
		Message: payload.GraphData.Status.CurrentMsg,
	}, nil
}
