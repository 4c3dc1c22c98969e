package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"

	"scratch_lottery/internal/domain"
)

// Vocabulary is the fixed prize pool a card is drawn from: four coin
// prizes and five empty cells.
func Vocabulary() [domain.CardCells]domain.Prize {
	return [domain.CardCells]domain.Prize{
		{Amount: 500},
		{Amount: 200},
		{Amount: 100},
		{Amount: 50},
		{}, {}, {}, {}, {},
	}
}

// DrawLayout samples a 9-cell prize layout: the vocabulary is doubled
// to an 18-entry pool and 9 entries are drawn without replacement, so
// any label appears at most twice per card.
func DrawLayout(r *rand.Rand) [domain.CardCells]domain.Prize {
	vocab := Vocabulary()
	pool := make([]domain.Prize, 0, 2*len(vocab))
	pool = append(pool, vocab[:]...)
	pool = append(pool, vocab[:]...)

	r.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	var layout [domain.CardCells]domain.Prize
	copy(layout[:], pool[:domain.CardCells])
	return layout
}

// NewRand returns a math/rand generator seeded from crypto/rand.
func NewRand() *rand.Rand {
	seed, err := crand.Int(crand.Reader, big.NewInt(1<<62))
	if err != nil {
		return rand.New(rand.NewSource(1))
	}
	return rand.New(rand.NewSource(seed.Int64()))
}
