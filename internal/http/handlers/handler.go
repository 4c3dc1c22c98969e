package handlers

import (
	"scratch_lottery/internal/repository"
	"scratch_lottery/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB           *pgxpool.Pool
	BotToken     string
	Users        *repository.UserRepository
	Transactions *repository.TransactionRepository
	Scratch      *service.ScratchService
}

func NewHandler(db *pgxpool.Pool, botToken string, users *repository.UserRepository, scratch *service.ScratchService) *Handler {
	return &Handler{
		DB:           db,
		BotToken:     botToken,
		Users:        users,
		Transactions: repository.NewTransactionRepository(db),
		Scratch:      scratch,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
