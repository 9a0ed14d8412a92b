package securitas

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	if len(id) != 16 {
		t.Errorf("uuid length = %d, want 16", len(id))
	}
	if strings.Contains(id, "-") {
		t.Errorf("uuid %q should not contain dashes", id)
	}
	if id == GenerateUUID() {
		t.Error("uuids should not repeat")
	}
}

func TestGenerateDeviceID(t *testing.T) {
	id := GenerateDeviceID()
	if !strings.Contains(id, ":APA91b") {
		t.Errorf("device id %q should contain the :APA91b marker", id)
	}
	if id == GenerateDeviceID() {
		t.Error("device ids should not repeat")
	}
}

func TestGenerateApolloOperationID(t *testing.T) {
	id := generateApolloOperationID()
	if len(id) != 128 {
		t.Errorf("apollo operation id length = %d, want 128 hex chars", len(id))
	}
}

func TestRequestID(t *testing.T) {
	now := time.Date(2026, time.March, 5, 9, 7, 42, 123456000, time.UTC)

	got := requestID("user@example.com", now)
	want := "OWA_______________user@example.com_______________20263597123456"
	if got != want {
		t.Errorf("requestID = %q, want %q", got, want)
	}
}
