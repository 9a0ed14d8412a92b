package securitas

import (
	"context"
	"encoding/json"
	"time"

	"github.com/securitas-community/securitas-bridge/internal/pkg/logging"
)

// ensureCapabilities refreshes the installation scoped capability token
// when it is missing or about to expire.  A fresh token arrives as a
// side effect of the services listing call.
func (c *Client) ensureCapabilities(ctx context.Context, inst *Installation) error {
	if inst.Capabilities != "" && time.Now().Add(tokenValidityMargin).Before(inst.CapabilitiesExpiry) {
		return nil
	}

	logging.Logger(ctx).Debugf("capability token for installation %s expired or missing, refreshing", inst.Number)

	_, err := c.GetAllServices(ctx, inst)
	return err
}

// GetAllServices lists the services available on an installation and
// stores the capability token the response carries.  A capability token
// that cannot be decoded leaves the installation unusable for alarm
// operations, so that is fatal to the call.
func (c *Client) GetAllServices(ctx context.Context, inst *Installation) ([]Service, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	vars := map[string]interface{}{
		"numinst": inst.Number,
		"uuid":    c.uuid,
	}

	resp, err := c.execute(ctx, opSrv, vars, querySrv, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Installation *struct {
			Capabilities string `json:"capabilities"`
			Services     []struct {
				IDService         json.Number `json:"idService"`
				Active            bool        `json:"active"`
				Visible           bool        `json:"visible"`
				Bde               bool        `json:"bde"`
				IsPremium         bool        `json:"isPremium"`
				CodOper           bool        `json:"codOper"`
				TotalDevice       json.Number `json:"totalDevice"`
				Request           string      `json:"request"`
				MinWrapperVersion string      `json:"minWrapperVersion"`
				Description       string      `json:"description"`
				Attributes        *struct {
					Attributes []struct {
						Name   string `json:"name"`
						Value  string `json:"value"`
						Active bool   `json:"active"`
					} `json:"attributes"`
				} `json:"attributes"`
			} `json:"services"`
		} `json:"installation"`
	}
	if err := resp.decode("xSSrv", &payload); err != nil {
		return nil, err
	}
	if payload.Installation == nil {
		return nil, &APIError{Message: "unexpected response shape: missing installation", Raw: resp.raw}
	}

	expiry, err := decodeTokenExpiry(payload.Installation.Capabilities)
	if err != nil {
		return nil, &APIError{Message: "failed to decode capabilities token"}
	}

	inst.Capabilities = payload.Installation.Capabilities
	inst.CapabilitiesExpiry = expiry

	services := make([]Service, 0, len(payload.Installation.Services))
	for _, item := range payload.Installation.Services {
		var attributes []Attribute
		if item.Attributes != nil {
			for _, attr := range item.Attributes.Attributes {
				attributes = append(attributes, Attribute{
					Name:   attr.Name,
					Value:  attr.Value,
					Active: attr.Active,
				})
			}
		}

		id, _ := item.IDService.Int64()
		totalDevice, _ := item.TotalDevice.Int64()
		services = append(services, Service{
			ID:                int(id),
			Active:            item.Active,
			Visible:           item.Visible,
			Bde:               item.Bde,
			IsPremium:         item.IsPremium,
			CodOper:           item.CodOper,
			TotalDevice:       int(totalDevice),
			Request:           item.Request,
			MinWrapperVersion: item.MinWrapperVersion,
			Description:       item.Description,
			Attributes:        attributes,
		})
	}

	return services, nil
}
