package repository

import (
	"context"
	"errors"

	"scratch_lottery/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCardNotFound = errors.New("card not found")

// CardRepository persists issued scratch cards: the prize layout as a
// comma-joined label list and the reveal state as a '0'/'1' mask.
// Card ids come from a sequence, so they only grow and are never
// reused; card rows are never deleted.
type CardRepository struct {
	db *pgxpool.Pool
}

func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

// Create persists a new card with all cells unrevealed.
func (r *CardRepository) Create(ctx context.Context, userID int64, prizes [domain.CardCells]domain.Prize) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO cards (user_id, prizes, revealed)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		userID, domain.EncodePrizes(prizes), domain.EncodeRevealed([domain.CardCells]bool{}),
	).Scan(&id)
	return id, err
}

// CreateTx persists a new card within an existing transaction.
func (r *CardRepository) CreateTx(ctx context.Context, tx pgx.Tx, userID int64, prizes [domain.CardCells]domain.Prize) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO cards (user_id, prizes, revealed)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		userID, domain.EncodePrizes(prizes), domain.EncodeRevealed([domain.CardCells]bool{}),
	).Scan(&id)
	return id, err
}

// GetByID returns a card or ErrCardNotFound.
func (r *CardRepository) GetByID(ctx context.Context, cardID int64) (*domain.Card, error) {
	return scanCard(r.db.QueryRow(ctx,
		`SELECT id, user_id, prizes, revealed, created_at FROM cards WHERE id = $1`,
		cardID,
	))
}

// GetByIDForUpdateTx locks the card row for the duration of tx and
// returns it. Used by the reveal path to serialize concurrent reveals
// on the same card.
func (r *CardRepository) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, cardID int64) (*domain.Card, error) {
	return scanCard(tx.QueryRow(ctx,
		`SELECT id, user_id, prizes, revealed, created_at FROM cards WHERE id = $1 FOR UPDATE`,
		cardID,
	))
}

// RevealCellTx flips one reveal flag to '1' within an existing
// transaction. pos is zero-based; overlay() is one-based.
func (r *CardRepository) RevealCellTx(ctx context.Context, tx pgx.Tx, cardID int64, pos int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE cards SET revealed = overlay(revealed placing '1' from $2 for 1) WHERE id = $1`,
		cardID, pos+1,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCardNotFound
	}
	return nil
}

// GetByUser returns the user's most recent cards.
func (r *CardRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.Card, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, prizes, revealed, created_at
		 FROM cards
		 WHERE user_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	var (
		c           domain.Card
		prizesRaw   string
		revealedRaw string
	)
	if err := row.Scan(&c.ID, &c.UserID, &prizesRaw, &revealedRaw, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	prizes, err := domain.DecodePrizes(prizesRaw)
	if err != nil {
		return nil, err
	}
	revealed, err := domain.DecodeRevealed(revealedRaw)
	if err != nil {
		return nil, err
	}
	c.Prizes = prizes
	c.Revealed = revealed
	return &c, nil
}
