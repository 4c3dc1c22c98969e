package domain

import (
	"errors"
	"strings"
	"time"
)

// CardCells is the number of cells on a scratch card (3x3 grid).
const CardCells = 9

type Card struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Prizes    [CardCells]Prize `json:"prizes"`
	Revealed  [CardCells]bool  `json:"revealed"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// FullyRevealed reports whether every cell has been scratched.
func (c *Card) FullyRevealed() bool {
	for _, r := range c.Revealed {
		if !r {
			return false
		}
	}
	return true
}

// WonTotal returns the sum of prizes on revealed cells.
func (c *Card) WonTotal() int64 {
	var total int64
	for i, r := range c.Revealed {
		if r {
			total += c.Prizes[i].Amount
		}
	}
	return total
}

// EncodePrizes renders the prize layout as the comma-joined label list
// stored in the cards table.
func EncodePrizes(prizes [CardCells]Prize) string {
	labels := make([]string, CardCells)
	for i, p := range prizes {
		labels[i] = p.Label()
	}
	return strings.Join(labels, ",")
}

// DecodePrizes parses the stored comma-joined label list.
func DecodePrizes(s string) ([CardCells]Prize, error) {
	var prizes [CardCells]Prize
	labels := strings.Split(s, ",")
	if len(labels) != CardCells {
		return prizes, errors.New("card must have exactly 9 prizes")
	}
	for i, label := range labels {
		p, err := ParsePrize(label)
		if err != nil {
			return prizes, err
		}
		prizes[i] = p
	}
	return prizes, nil
}

// EncodeRevealed renders reveal flags as the 9-character '0'/'1' string
// stored in the cards table.
func EncodeRevealed(revealed [CardCells]bool) string {
	b := make([]byte, CardCells)
	for i, r := range revealed {
		if r {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// DecodeRevealed parses the stored '0'/'1' string.
func DecodeRevealed(s string) ([CardCells]bool, error) {
	var revealed [CardCells]bool
	if len(s) != CardCells {
		return revealed, errors.New("revealed mask must have exactly 9 flags")
	}
	for i := 0; i < CardCells; i++ {
		switch s[i] {
		case '1':
			revealed[i] = true
		case '0':
		default:
			return revealed, errors.New("revealed mask must contain only '0' and '1'")
		}
	}
	return revealed, nil
}
