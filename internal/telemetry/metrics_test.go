package telemetry

import "testing"

func TestHealthyAllUp(t *testing.T) {
	snap := Healthy(map[string]bool{"redis": true, "postgres": true})
	if snap.Status != "ok" {
		t.Fatalf("Status = %q, want ok", snap.Status)
	}
}

func TestHealthyDegradedOnAnyDown(t *testing.T) {
	snap := Healthy(map[string]bool{"redis": true, "postgres": false})
	if snap.Status != "degraded" {
		t.Fatalf("Status = %q, want degraded", snap.Status)
	}
}
