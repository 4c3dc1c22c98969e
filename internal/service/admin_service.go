package service

import (
	"context"

	"scratch_lottery/internal/domain"
	"scratch_lottery/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminService backs the bot's admin commands.
type AdminService struct {
	db           *pgxpool.Pool
	users        *repository.UserRepository
	transactions *repository.TransactionRepository
}

func NewAdminService(db *pgxpool.Pool) *AdminService {
	return &AdminService{
		db:           db,
		users:        repository.NewUserRepository(db),
		transactions: repository.NewTransactionRepository(db),
	}
}

// Stats is a platform summary for the /stats admin command.
type Stats struct {
	TotalUsers    int64
	TotalCards    int64
	CardsToday    int64
	TotalCoins    int64
	TotalPaidOut  int64
	TotalRevealed int64
}

// GetStats collects platform totals.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM cards),
			(SELECT COUNT(*) FROM cards WHERE created_at >= CURRENT_DATE),
			(SELECT COALESCE(SUM(coins), 0) FROM users),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = $1),
			(SELECT COALESCE(SUM(LENGTH(REPLACE(revealed, '0', ''))), 0) FROM cards)
	`, domain.TxTypeCardPrize).Scan(
		&st.TotalUsers, &st.TotalCards, &st.CardsToday,
		&st.TotalCoins, &st.TotalPaidOut, &st.TotalRevealed,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// AddCoins credits a user by Telegram id and records the grant.
func (s *AdminService) AddCoins(ctx context.Context, tgID int64, amount int64) (int64, error) {
	user, err := s.users.GetByTgID(ctx, tgID)
	if err != nil {
		return 0, err
	}

	newBalance, err := s.users.Credit(ctx, user.ID, amount)
	if err != nil {
		return 0, err
	}

	record := &domain.Transaction{
		UserID: user.ID,
		Type:   domain.TxTypeAdminGrant,
		Amount: amount,
	}
	if err := s.transactions.Create(ctx, record); err != nil {
		return 0, err
	}
	return newBalance, nil
}
