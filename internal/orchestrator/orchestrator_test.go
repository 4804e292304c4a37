package orchestrator

import (
	"sync/atomic"
	"testing"
)

func TestGuardForReturnsSameInstance(t *testing.T) {
	o := &Orchestrator{}
	g1 := o.guardFor("user-1")
	g2 := o.guardFor("user-1")
	if g1 != g2 {
		t.Fatalf("guardFor() returned different instances for the same user")
	}
}

func TestGuardForIsolatesUsers(t *testing.T) {
	o := &Orchestrator{}
	g1 := o.guardFor("user-1")
	g2 := o.guardFor("user-2")
	g1.Store(true)
	if g2.Load() {
		t.Fatalf("expected user-2's guard to be independent of user-1's")
	}
}

func TestGuardCompareAndSwapSemantics(t *testing.T) {
	var guard atomic.Bool
	if !guard.CompareAndSwap(false, true) {
		t.Fatalf("expected first CAS to succeed")
	}
	if guard.CompareAndSwap(false, true) {
		t.Fatalf("expected second CAS to fail while guard is held")
	}
	guard.Store(false)
	if !guard.CompareAndSwap(false, true) {
		t.Fatalf("expected CAS to succeed again after release")
	}
}
