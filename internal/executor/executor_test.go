package executor

import (
	"testing"

	"github.com/rawblock/solana-sniper/pkg/models"
)

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		state models.ExecutionState
		want  bool
	}{
		{models.StateSucceeded, true},
		{models.StateFailed, true},
		{models.StateSkipped, true},
		{models.StatePending, false},
		{models.StateQuoting, false},
		{models.StateSwapping, false},
	}
	for _, c := range cases {
		if got := isTerminal(c.state); got != c.want {
			t.Fatalf("isTerminal(%s) = %v, want %v", c.state, got, c.want)
		}
	}
}
