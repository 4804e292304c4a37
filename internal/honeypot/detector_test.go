package honeypot

import (
	"context"
	"testing"
)

type stubProvider struct{ name string }

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) Check(ctx context.Context, mint string) ProviderResult {
	return ProviderResult{}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		v, lo, hi, want int
	}{
		{-5, 0, 100, 0},
		{150, 0, 100, 100},
		{42, 0, 100, 42},
	}
	for _, c := range cases {
		if got := clamp(c.v, c.lo, c.hi); got != c.want {
			t.Fatalf("clamp(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestAggregateConclusiveOverridesToHundred(t *testing.T) {
	d := &Detector{
		providers: []Provider{stubProvider{"a"}, stubProvider{"b"}},
		weights:   map[string]float64{"a": 0.5, "b": 0.5},
	}
	results := []ProviderResult{
		{Score: 10},
		{Score: 0, Conclusive: true, Flags: []string{"is_honeypot"}},
	}
	got := d.aggregate("MintXYZ", results)
	if got.RiskScore != 100 || !got.Conclusive {
		t.Fatalf("aggregate() = %+v, want score=100 conclusive=true", got)
	}
}

func TestAggregateWeightedSum(t *testing.T) {
	d := &Detector{
		providers: []Provider{stubProvider{"a"}, stubProvider{"b"}},
		weights:   map[string]float64{"a": 0.5, "b": 0.5},
	}
	results := []ProviderResult{{Score: 40}, {Score: 60}}
	got := d.aggregate("MintXYZ", results)
	if got.RiskScore != 50 {
		t.Fatalf("aggregate() score = %d, want 50", got.RiskScore)
	}
	if got.Confidence != 100 {
		t.Fatalf("aggregate() confidence = %f, want 100", got.Confidence)
	}
}

func TestAggregateConfidenceDropsOnProviderError(t *testing.T) {
	d := &Detector{
		providers: []Provider{stubProvider{"a"}, stubProvider{"b"}},
		weights:   map[string]float64{"a": 0.5, "b": 0.5},
	}
	results := []ProviderResult{{Score: 40}, {Err: errString("boom")}}
	got := d.aggregate("MintXYZ", results)
	if got.Confidence != 50 {
		t.Fatalf("aggregate() confidence = %f, want 50", got.Confidence)
	}
}
