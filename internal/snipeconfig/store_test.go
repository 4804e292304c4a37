package snipeconfig

import (
	"testing"

	"github.com/rawblock/solana-sniper/pkg/models"
)

func TestDexIDConversionRoundTrip(t *testing.T) {
	in := []models.DexID{models.DexRaydiumV4, models.DexPumpfun}
	strs := fromDexIDs(in)
	back := toDexIDs(strs)

	if len(back) != len(in) {
		t.Fatalf("length mismatch: got %d want %d", len(back), len(in))
	}
	for i := range in {
		if back[i] != in[i] {
			t.Fatalf("index %d: got %v want %v", i, back[i], in[i])
		}
	}
}

func TestCacheEntryStoreAndLoad(t *testing.T) {
	s := &Store{}
	cfg := models.SnipeConfig{UserID: "u1", Enabled: true}
	s.cache.Store(cfg.UserID, cacheEntry{cfg: cfg})

	v, ok := s.cache.Load(cfg.UserID)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if v.(cacheEntry).cfg.UserID != "u1" {
		t.Fatalf("unexpected cached value: %+v", v)
	}
}
