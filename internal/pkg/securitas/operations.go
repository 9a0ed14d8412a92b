package securitas

import (
	"context"
	"time"
)

// DefaultOperationTimeout is a reasonable budget for the submit-then-
// poll operations; panels routinely take tens of seconds to confirm.
const DefaultOperationTimeout = 60 * time.Second

// Smart lock device addressing.  Panels expose a single door lock.
const (
	lockDeviceType = "DR"
	lockDeviceID   = "01"
	lockKeyType    = "0"
)

// idService value the check-alarm status query expects.
const checkAlarmServiceID = "11"

type submitResult struct {
	Res         string `json:"res"`
	Msg         string `json:"msg"`
	ReferenceID string `json:"referenceId"`
}

// submit sends a command mutation and returns the reference id used to
// poll it.  A non-OK result fails immediately; no polling is attempted.
func (c *Client) submit(ctx context.Context, operation string, vars map[string]interface{}, query string, inst *Installation, field string) (string, error) {
	resp, err := c.execute(ctx, operation, vars, query, inst)
	if err != nil {
		return "", err
	}

	var payload submitResult
	if err := resp.decode(field, &payload); err != nil {
		return "", err
	}

	if payload.Res != "OK" {
		return "", &APIError{Message: payload.Msg, Raw: resp.raw}
	}
	if payload.ReferenceID == "" {
		return "", &APIError{Message: "no referenceId in response", Raw: resp.raw}
	}

	return payload.ReferenceID, nil
}

// CheckAlarm starts a fresh check of the panel state and returns the
// reference id to poll with CheckAlarmStatus.
func (c *Client) CheckAlarm(ctx context.Context, inst *Installation) (string, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return "", err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return "", err
	}

	vars := map[string]interface{}{
		"numinst": inst.Number,
		"panel":   inst.Panel,
	}
	resp, err := c.execute(ctx, opCheckAlarm, vars, queryCheckAlarm, inst)
	if err != nil {
		return "", err
	}

	var payload submitResult
	if err := resp.decode("xSCheckAlarm", &payload); err != nil {
		return "", err
	}
	if payload.ReferenceID == "" {
		return "", &APIError{Message: "no referenceId in response", Raw: resp.raw}
	}

	return payload.ReferenceID, nil
}

// CheckAlarmStatus polls a check-alarm operation to its terminal state
// and records the panel's protocol status for later commands.
func (c *Client) CheckAlarmStatus(ctx context.Context, inst *Installation, referenceID string, timeout time.Duration) (*CheckAlarmStatus, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	status, err := c.pollOperation(ctx, opCheckAlarmStatus, referenceID, timeout, func(ctx context.Context, counter int) (*operationStatus, error) {
		vars := map[string]interface{}{
			"numinst":     inst.Number,
			"panel":       inst.Panel,
			"referenceId": referenceID,
			"idService":   checkAlarmServiceID,
			"counter":     counter,
		}

		resp, err := c.execute(ctx, opCheckAlarmStatus, vars, queryCheckAlarmStatus, inst)
		if err != nil {
			return nil, err
		}

		var st operationStatus
		if err := resp.decode("xSCheckAlarmStatus", &st); err != nil {
			return nil, err
		}
		return &st, nil
	})
	if err != nil {
		return nil, err
	}

	c.setProtomStatus(inst.Number, status.ProtomResponse)

	return &CheckAlarmStatus{
		Res:                status.Res,
		Msg:                status.Msg,
		Status:             status.Status,
		Numinst:            status.Numinst,
		ProtomResponse:     status.ProtomResponse,
		ProtomResponseDate: status.ProtomResponseDate,
	}, nil
}

// ArmAlarm arms the panel into the requested state and polls the
// operation to completion.
func (c *Client) ArmAlarm(ctx context.Context, inst *Installation, state AlarmState, timeout time.Duration) (*ArmStatus, error) {
	request, err := c.commands.Command(state)
	if err != nil {
		return nil, err
	}

	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	currentStatus := c.lastProtomStatus(inst.Number)
	vars := map[string]interface{}{
		"request":       request,
		"numinst":       inst.Number,
		"panel":         inst.Panel,
		"currentStatus": currentStatus,
	}
	referenceID, err := c.submit(ctx, opArmPanel, vars, queryArmPanel, inst, "xSArmPanel")
	if err != nil {
		return nil, err
	}

	status, err := c.pollOperation(ctx, opArmStatus, referenceID, timeout, func(ctx context.Context, counter int) (*operationStatus, error) {
		vars := map[string]interface{}{
			"request":       request,
			"numinst":       inst.Number,
			"panel":         inst.Panel,
			"currentStatus": currentStatus,
			"referenceId":   referenceID,
			"counter":       counter,
		}

		resp, err := c.execute(ctx, opArmStatus, vars, queryArmStatus, inst)
		if err != nil {
			return nil, err
		}

		var st operationStatus
		if err := resp.decode("xSArmStatus", &st); err != nil {
			return nil, err
		}
		return &st, nil
	})
	if err != nil {
		return nil, err
	}

	c.setProtomStatus(inst.Number, status.ProtomResponse)

	return &ArmStatus{
		Res:                status.Res,
		Msg:                status.Msg,
		Status:             status.Status,
		Numinst:            status.Numinst,
		ProtomResponse:     status.ProtomResponse,
		ProtomResponseDate: status.ProtomResponseDate,
		RequestID:          status.RequestID,
		Error:              status.Error,
	}, nil
}

// DisarmAlarm fully disarms the panel and polls the operation to
// completion.
func (c *Client) DisarmAlarm(ctx context.Context, inst *Installation, timeout time.Duration) (*DisarmStatus, error) {
	request, err := c.commands.Command(AlarmTotalDisarmed)
	if err != nil {
		return nil, err
	}

	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	currentStatus := c.lastProtomStatus(inst.Number)
	vars := map[string]interface{}{
		"request":       request,
		"numinst":       inst.Number,
		"panel":         inst.Panel,
		"currentStatus": currentStatus,
	}
	referenceID, err := c.submit(ctx, opDisarmPanel, vars, queryDisarmPanel, inst, "xSDisarmPanel")
	if err != nil {
		return nil, err
	}

	status, err := c.pollOperation(ctx, opDisarmStatus, referenceID, timeout, func(ctx context.Context, counter int) (*operationStatus, error) {
		vars := map[string]interface{}{
			"request":       request,
			"numinst":       inst.Number,
			"panel":         inst.Panel,
			"currentStatus": currentStatus,
			"referenceId":   referenceID,
			"counter":       counter,
		}

		resp, err := c.execute(ctx, opDisarmStatus, vars, queryDisarmStatus, inst)
		if err != nil {
			return nil, err
		}

		var st operationStatus
		if err := resp.decode("xSDisarmStatus", &st); err != nil {
			return nil, err
		}
		return &st, nil
	})
	if err != nil {
		return nil, err
	}

	c.setProtomStatus(inst.Number, status.ProtomResponse)

	return &DisarmStatus{
		Res:                status.Res,
		Msg:                status.Msg,
		Status:             status.Status,
		Numinst:            status.Numinst,
		ProtomResponse:     status.ProtomResponse,
		ProtomResponseDate: status.ProtomResponseDate,
		RequestID:          status.RequestID,
		Error:              status.Error,
	}, nil
}

// GetSmartLockConfig describes the smart lock device on the panel.
func (c *Client) GetSmartLockConfig(ctx context.Context, inst *Installation) (*SmartLock, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	vars := map[string]interface{}{
		"numinst": inst.Number,
		"panel":   inst.Panel,
		"devices": []map[string]interface{}{
			{"deviceType": lockDeviceType, "deviceId": lockDeviceID, "keytype": lockKeyType},
		},
	}
	resp, err := c.execute(ctx, opSmartlockConfig, vars, querySmartlockConfig, inst)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Res      string `json:"res"`
		Location string `json:"location"`
		Type     string `json:"type"`
	}
	if err := resp.decode("xSGetSmartlockConfig", &payload); err != nil {
		return nil, err
	}

	return &SmartLock{
		Res:      payload.Res,
		Location: payload.Location,
		Type:     payload.Type,
	}, nil
}

// GetLockCurrentMode returns the current mode of the smart lock.
func (c *Client) GetLockCurrentMode(ctx context.Context, inst *Installation) (*SmartLockMode, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	vars := map[string]interface{}{"numinst": inst.Number}
	resp, err := c.execute(ctx, opLockCurrentMode, vars, queryLockCurrentMode, inst)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Res           string `json:"res"`
		SmartlockInfo []struct {
			LockStatus string `json:"lockStatus"`
			DeviceID   string `json:"deviceId"`
		} `json:"smartlockInfo"`
	}
	if err := resp.decode("xSGetLockCurrentMode", &payload); err != nil {
		return nil, err
	}
	if len(payload.SmartlockInfo) == 0 {
		return nil, &APIError{Message: "no smartlock info in response", Raw: resp.raw}
	}

	return &SmartLockMode{
		Res:        payload.Res,
		LockStatus: payload.SmartlockInfo[0].LockStatus,
	}, nil
}

// ChangeLockMode locks or unlocks the smart lock and polls the
// operation to completion.
func (c *Client) ChangeLockMode(ctx context.Context, inst *Installation, lock bool, timeout time.Duration) (*SmartLockModeStatus, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureCapabilities(ctx, inst); err != nil {
		return nil, err
	}

	vars := map[string]interface{}{
		"numinst":    inst.Number,
		"panel":      inst.Panel,
		"deviceType": lockDeviceType,
		"deviceId":   lockDeviceID,
		"lock":       lock,
	}
	referenceID, err := c.submit(ctx, opChangeLockMode, vars, queryChangeLockMode, inst, "xSChangeSmartlockMode")
	if err != nil {
		return nil, err
	}

	status, err := c.pollOperation(ctx, opChangeLockModeStatus, referenceID, timeout, func(ctx context.Context, counter int) (*operationStatus, error) {
		vars := map[string]interface{}{
			"counter":     counter,
			"deviceId":    lockDeviceID,
			"numinst":     inst.Number,
			"panel":       inst.Panel,
			"referenceId": referenceID,
		}

		resp, err := c.execute(ctx, opChangeLockModeStatus, vars, queryChangeLockModeStatus, inst)
		if err != nil {
			return nil, err
		}

		var st operationStatus
		if err := resp.decode("xSChangeSmartlockModeStatus", &st); err != nil {
			return nil, err
		}
		return &st, nil
	})
	if err != nil {
		return nil, err
	}

	c.setProtomStatus(inst.Number, status.ProtomResponse)

	return &SmartLockModeStatus{
		Res:            status.Res,
		Msg:            status.Msg,
		ProtomResponse: status.ProtomResponse,
		Status:         status.Status,
	}, nil
}
