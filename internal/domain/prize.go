package domain

import (
	"fmt"
	"strconv"
)

// EmptyLabel is the stored label for a cell that pays nothing.
const EmptyLabel = "Пусто"

// Prize is one cell's prize. Amount == 0 is the empty cell; any other
// value is a coin payout of that size.
type Prize struct {
	Amount int64 `json:"amount"`
}

// IsEmpty reports whether the prize pays nothing.
func (p Prize) IsEmpty() bool {
	return p.Amount == 0
}

// Label returns the storage/display form of the prize: the numeric
// amount, or the empty word.
func (p Prize) Label() string {
	if p.IsEmpty() {
		return EmptyLabel
	}
	return strconv.FormatInt(p.Amount, 10)
}

// ParsePrize decodes a stored label back into a Prize.
func ParsePrize(label string) (Prize, error) {
	if label == EmptyLabel {
		return Prize{}, nil
	}
	n, err := strconv.ParseInt(label, 10, 64)
	if err != nil || n <= 0 {
		return Prize{}, fmt.Errorf("bad prize label %q", label)
	}
	return Prize{Amount: n}, nil
}
