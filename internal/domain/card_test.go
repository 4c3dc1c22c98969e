package domain

import "testing"

func TestEncodeDecodePrizes(t *testing.T) {
	prizes := [CardCells]Prize{
		{Amount: 500}, {}, {Amount: 200}, {}, {Amount: 100}, {}, {Amount: 50}, {}, {},
	}

	encoded := EncodePrizes(prizes)
	want := "500,Пусто,200,Пусто,100,Пусто,50,Пусто,Пусто"
	if encoded != want {
		t.Fatalf("encoded %q, want %q", encoded, want)
	}

	decoded, err := DecodePrizes(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != prizes {
		t.Fatalf("round trip mismatch: %v != %v", decoded, prizes)
	}
}

func TestDecodePrizes_Invalid(t *testing.T) {
	cases := []string{
		"",
		"500,200",
		"500,200,100,50,Пусто,Пусто,Пусто,Пусто,abc",
		"500,200,100,50,Пусто,Пусто,Пусто,Пусто,-10",
		"500,200,100,50,Пусто,Пусто,Пусто,Пусто,0",
	}
	for _, s := range cases {
		if _, err := DecodePrizes(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestEncodeDecodeRevealed(t *testing.T) {
	revealed := [CardCells]bool{true, false, false, true, false, false, false, false, true}

	encoded := EncodeRevealed(revealed)
	if encoded != "100100001" {
		t.Fatalf("encoded %q, want %q", encoded, "100100001")
	}

	decoded, err := DecodeRevealed(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != revealed {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeRevealed_Invalid(t *testing.T) {
	for _, s := range []string{"", "0000", "0000000000", "00000000x"} {
		if _, err := DecodeRevealed(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCard_FullyRevealedAndWonTotal(t *testing.T) {
	c := &Card{
		Prizes:   [CardCells]Prize{{Amount: 500}, {}, {Amount: 100}, {}, {}, {}, {}, {}, {}},
		Revealed: [CardCells]bool{true, true, false, false, false, false, false, false, false},
	}

	if c.FullyRevealed() {
		t.Fatalf("card should not be fully revealed")
	}
	if got := c.WonTotal(); got != 500 {
		t.Fatalf("won total = %d, want 500", got)
	}

	for i := range c.Revealed {
		c.Revealed[i] = true
	}
	if !c.FullyRevealed() {
		t.Fatalf("card should be fully revealed")
	}
	if got := c.WonTotal(); got != 600 {
		t.Fatalf("won total = %d, want 600", got)
	}
}
