package lease

import (
	"encoding/json"
	"testing"
)

func TestKeyFor(t *testing.T) {
	got := keyFor("user-123")
	want := "snipe:lease:user-123"
	if got != want {
		t.Fatalf("keyFor() = %q, want %q", got, want)
	}
}

func TestPayloadRoundTripsThroughJSON(t *testing.T) {
	p := payload{
		WalletID: "wallet-1",
		Salt:     []byte{1, 2, 3},
		Nonce:    []byte{4, 5, 6},
		Cipher:   []byte{7, 8, 9},
	}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got payload
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.WalletID != p.WalletID {
		t.Fatalf("WalletID = %q, want %q", got.WalletID, p.WalletID)
	}
	if len(got.Salt) != 3 || len(got.Nonce) != 3 || len(got.Cipher) != 3 {
		t.Fatalf("byte fields did not round trip: %+v", got)
	}
}
