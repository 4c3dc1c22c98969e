package repository

import (
	"context"
	"errors"

	"scratch_lottery/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// DefaultInitialCoins is the balance every user starts with.
const DefaultInitialCoins = 100

// UserRepository is the coin ledger: one row per user, balance mutated
// only by Debit/Credit.
type UserRepository struct {
	db           *pgxpool.Pool
	initialCoins int64
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, initialCoins: DefaultInitialCoins}
}

// NewUserRepositoryWithInitial overrides the starting balance.
func NewUserRepositoryWithInitial(db *pgxpool.Pool, initialCoins int64) *UserRepository {
	return &UserRepository{db: db, initialCoins: initialCoins}
}

// EnsureUser returns the user for a Telegram ID, creating the row with
// the initial balance on first access.
func (r *UserRepository) EnsureUser(ctx context.Context, tgID int64, username, firstName string) (*domain.User, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (tg_id, username, first_name, coins)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tg_id) DO NOTHING`,
		tgID, username, firstName, r.initialCoins,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByTgID(ctx, tgID)
}

func (r *UserRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, tg_id, COALESCE(username, ''), COALESCE(first_name, ''), coins, created_at
		 FROM users
		 WHERE tg_id = $1`,
		tgID,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, tg_id, COALESCE(username, ''), COALESCE(first_name, ''), coins, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	))
}

// GetBalance returns the user's coin balance.
func (r *UserRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var coins int64
	err := r.db.QueryRow(ctx, `SELECT coins FROM users WHERE id = $1`, userID).Scan(&coins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return coins, err
}

// Credit adds amount to the balance and returns the new value.
func (r *UserRepository) Credit(ctx context.Context, userID int64, amount int64) (int64, error) {
	var newBalance int64
	err := r.db.QueryRow(ctx,
		`UPDATE users SET coins = coins + $1 WHERE id = $2 RETURNING coins`,
		amount, userID,
	).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return newBalance, err
}

// Debit subtracts amount from the balance. The balance never goes
// negative: an underfunded debit returns ErrInsufficientFunds and
// changes nothing.
func (r *UserRepository) Debit(ctx context.Context, userID int64, amount int64) (int64, error) {
	var newBalance int64
	err := r.db.QueryRow(ctx,
		`UPDATE users SET coins = coins - $1 WHERE id = $2 AND coins >= $1 RETURNING coins`,
		amount, userID,
	).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		_ = r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
		if !exists {
			return 0, ErrUserNotFound
		}
		return 0, ErrInsufficientFunds
	}
	return newBalance, err
}

// BalanceForUpdateTx locks the user row and returns its balance inside
// an existing transaction.
func (r *UserRepository) BalanceForUpdateTx(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	var coins int64
	err := tx.QueryRow(ctx, `SELECT coins FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&coins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return coins, err
}

// BalanceTx reads the balance inside an existing transaction without
// locking the row.
func (r *UserRepository) BalanceTx(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	var coins int64
	err := tx.QueryRow(ctx, `SELECT coins FROM users WHERE id = $1`, userID).Scan(&coins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return coins, err
}

// DebitTx subtracts amount within an existing transaction.
func (r *UserRepository) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount int64) (int64, error) {
	var newBalance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET coins = coins - $1 WHERE id = $2 AND coins >= $1 RETURNING coins`,
		amount, userID,
	).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInsufficientFunds
	}
	return newBalance, err
}

// CreditTx adds amount within an existing transaction.
func (r *UserRepository) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount int64) (int64, error) {
	var newBalance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET coins = coins + $1 WHERE id = $2 RETURNING coins`,
		amount, userID,
	).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return newBalance, err
}

// TopWinner is one leaderboard entry.
type TopWinner struct {
	User domain.User `json:"user"`
	Won  int64       `json:"won"`
}

// GetTopWinners returns users ordered by total coins won from cards.
func (r *UserRepository) GetTopWinners(ctx context.Context, limit int) ([]TopWinner, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.tg_id, COALESCE(u.username, ''), COALESCE(u.first_name, ''), u.coins, u.created_at,
		       COALESCE(w.won, 0) AS won
		FROM users u
		LEFT JOIN (
			SELECT user_id, SUM(amount) AS won
			FROM transactions
			WHERE type = $1
			GROUP BY user_id
		) w ON w.user_id = u.id
		ORDER BY won DESC
		LIMIT $2`, domain.TxTypeCardPrize, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TopWinner
	for rows.Next() {
		var e TopWinner
		if err := rows.Scan(&e.User.ID, &e.User.TgID, &e.User.Username, &e.User.FirstName,
			&e.User.Coins, &e.User.CreatedAt, &e.Won); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.TgID, &u.Username, &u.FirstName, &u.Coins, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
