package domain

import "testing"

func TestPrizeLabel(t *testing.T) {
	if got := (Prize{Amount: 500}).Label(); got != "500" {
		t.Fatalf("label = %q, want %q", got, "500")
	}
	if got := (Prize{}).Label(); got != EmptyLabel {
		t.Fatalf("label = %q, want %q", got, EmptyLabel)
	}
}

func TestParsePrize(t *testing.T) {
	p, err := ParsePrize("200")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Amount != 200 || p.IsEmpty() {
		t.Fatalf("unexpected prize %+v", p)
	}

	p, err = ParsePrize(EmptyLabel)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if !p.IsEmpty() {
		t.Fatalf("expected empty prize, got %+v", p)
	}

	for _, bad := range []string{"", "abc", "-5", "0", "12.5"} {
		if _, err := ParsePrize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
