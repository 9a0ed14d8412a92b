package securitas

import (
	"context"
	"time"

	"github.com/securitas-community/securitas-bridge/internal/pkg/logging"
)

// operationStatus is the shared shape of the poll responses; operations
// that do not populate a field leave it at its zero value.
type operationStatus struct {
	Res                string          `json:"res"`
	Msg                string          `json:"msg"`
	Status             string          `json:"status"`
	Numinst            string          `json:"numinst"`
	ProtomResponse     string          `json:"protomResponse"`
	ProtomResponseDate string          `json:"protomResponseDate"`
	RequestID          string          `json:"requestId"`
	Error              *ArmStatusError `json:"error"`
}

// terminal reports whether this poll response ends the operation.  A
// missing or empty res is treated like WAIT because the vendor is known
// to return transiently malformed poll responses.
func (s *operationStatus) terminal() bool {
	return s.Res != "" && s.Res != "WAIT"
}

type pollFunc func(ctx context.Context, counter int) (*operationStatus, error)

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still give a cancelled context the chance to abort the loop.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pollOperation runs the WAIT loop shared by the check-alarm, arm,
// disarm and lock-mode operations: sleep, fetch the status with an
// incrementing counter, stop on the first non-WAIT response or when the
// timeout budget is exhausted.  The first fetch always happens.
// Context cancellation aborts the loop with the context's error, not a
// timeout error.
func (c *Client) pollOperation(ctx context.Context, operation string, referenceID string, timeout time.Duration, fetch pollFunc) (*operationStatus, error) {
	delay := c.pollDelay

	effectiveDelay := delay
	if effectiveDelay <= 0 {
		effectiveDelay = time.Second
	}
	maxIterations := int((timeout + effectiveDelay - 1) / effectiveDelay)
	if maxIterations < 1 {
		maxIterations = 1
	}

	for counter := 1; ; counter++ {
		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}

		status, err := fetch(ctx, counter)
		if err != nil {
			return nil, err
		}

		if status.terminal() {
			logging.Logger(ctx).Debugf("%s finished after %d polls with res %s", operation, counter, status.Res)
			return status, nil
		}

		if counter >= maxIterations {
			return nil, &OperationTimeoutError{
				Operation:   operation,
				ReferenceID: referenceID,
				Timeout:     timeout,
			}
		}
	}
}
