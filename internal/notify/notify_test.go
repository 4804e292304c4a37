package notify

import (
	"strings"
	"testing"

	"github.com/rawblock/solana-sniper/pkg/models"
)

func TestBuildMessageSucceeded(t *testing.T) {
	exec := models.SnipeExecution{
		Mint: "MintAAA", State: models.StateSucceeded,
		TokenAmount: 1000, QuoteAmount: 0.5, TxSignature: "sig123",
	}
	msg, err := BuildMessage("user-1", exec)
	if err != nil {
		t.Fatalf("BuildMessage() error = %v", err)
	}
	if !strings.Contains(msg.Text, "MintAAA") || !strings.Contains(msg.Text, "sig123") {
		t.Fatalf("Text = %q, missing expected fields", msg.Text)
	}
}

func TestBuildMessageFailed(t *testing.T) {
	exec := models.SnipeExecution{Mint: "MintBBB", State: models.StateFailed, FailureReason: "swap reverted"}
	msg, err := BuildMessage("user-1", exec)
	if err != nil {
		t.Fatalf("BuildMessage() error = %v", err)
	}
	if !strings.Contains(msg.Text, "swap reverted") {
		t.Fatalf("Text = %q, want failure reason included", msg.Text)
	}
}

func TestBuildMessageUnknownStateErrors(t *testing.T) {
	exec := models.SnipeExecution{Mint: "MintCCC", State: models.StatePending}
	if _, err := BuildMessage("user-1", exec); err == nil {
		t.Fatalf("BuildMessage() error = nil, want error for state with no template")
	}
}
