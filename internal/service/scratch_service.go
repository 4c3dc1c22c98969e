package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"scratch_lottery/internal/domain"
	"scratch_lottery/internal/game"
	"scratch_lottery/internal/logger"
	"scratch_lottery/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidCell       = errors.New("cell must be between 0 and 8")
)

// RevealOutcome tells the caller what a reveal attempt actually did.
// AlreadyRevealed and NotFound leave every row untouched.
type RevealOutcome string

const (
	RevealApplied         RevealOutcome = "applied"
	RevealAlreadyRevealed RevealOutcome = "already_revealed"
	RevealNotFound        RevealOutcome = "not_found"
)

// Purchase is the result of a successful card purchase.
type Purchase struct {
	CardID  int64
	Balance int64
	Image   []byte
	Caption string
}

// Reveal is the result of a reveal attempt. Image and Card are set
// only when Outcome is RevealApplied.
type Reveal struct {
	Outcome RevealOutcome
	Card    *domain.Card
	Cell    int
	Prize   domain.Prize
	Balance int64
	Image   []byte
	Caption string
}

// CardRenderer draws a card in a given reveal state. Satisfied by
// *render.Renderer.
type CardRenderer interface {
	Render(prizes [domain.CardCells]domain.Prize, revealed [domain.CardCells]bool) ([]byte, error)
}

// ScratchService is the game engine: it owns the purchase and reveal
// flows, each running as one database transaction with the affected
// row locked, then re-renders the card image.
type ScratchService struct {
	db           *pgxpool.Pool
	users        *repository.UserRepository
	cards        *repository.CardRepository
	transactions *repository.TransactionRepository
	renderer     CardRenderer
	price        int64

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewScratchService(db *pgxpool.Pool, renderer CardRenderer, price int64) *ScratchService {
	return &ScratchService{
		db:           db,
		users:        repository.NewUserRepository(db),
		cards:        repository.NewCardRepository(db),
		transactions: repository.NewTransactionRepository(db),
		renderer:     renderer,
		price:        price,
		rng:          game.NewRand(),
	}
}

// Price returns the card price in coins.
func (s *ScratchService) Price() int64 {
	return s.price
}

// Cards exposes the card repository for read-only queries.
func (s *ScratchService) Cards() *repository.CardRepository {
	return s.cards
}

// BuyCard debits the card price, draws a prize layout, persists the
// card and returns it rendered fully hidden. Returns
// ErrInsufficientFunds without any state change when the balance is
// below the price.
func (s *ScratchService) BuyCard(ctx context.Context, userID int64) (*Purchase, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balance, err := s.users.BalanceForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if balance < s.price {
		return nil, ErrInsufficientFunds
	}

	newBalance, err := s.users.DebitTx(ctx, tx, userID, s.price)
	if err != nil {
		return nil, err
	}

	layout := s.drawLayout()
	cardID, err := s.cards.CreateTx(ctx, tx, userID, layout)
	if err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Type:   domain.TxTypeCardPurchase,
		Amount: -s.price,
		Meta:   map[string]interface{}{"card_id": cardID},
	}
	if err := s.transactions.CreateWithTx(ctx, tx, record); err != nil {
		return nil, err
	}

	// render before commit: a render failure must roll the purchase back,
	// never strand a committed debit behind an error
	img, err := s.renderer.Render(layout, [domain.CardCells]bool{})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	CardsPurchased.Inc()
	logger.Info("card purchased", "user_id", userID, "card_id", cardID, "balance", newBalance)

	return &Purchase{
		CardID:  cardID,
		Balance: newBalance,
		Image:   img,
		Caption: fmt.Sprintf("🎟 Новая карточка!\nОстаток: %d монет", newBalance),
	}, nil
}

// RevealCell opens one cell on a card. A missing card or an already
// open cell is reported through the outcome and mutates nothing; an
// applied reveal flips the flag, credits numeric prizes and returns
// the card re-rendered in its updated state.
func (s *ScratchService) RevealCell(ctx context.Context, cardID int64, pos int) (*Reveal, error) {
	if pos < 0 || pos >= domain.CardCells {
		return nil, ErrInvalidCell
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	card, err := s.cards.GetByIDForUpdateTx(ctx, tx, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			logger.Debug("reveal on unknown card", "card_id", cardID)
			CellsRevealed.WithLabelValues(string(RevealNotFound)).Inc()
			return &Reveal{Outcome: RevealNotFound, Cell: pos}, nil
		}
		return nil, err
	}

	if card.Revealed[pos] {
		logger.Debug("reveal on open cell", "card_id", cardID, "cell", pos)
		CellsRevealed.WithLabelValues(string(RevealAlreadyRevealed)).Inc()
		return &Reveal{Outcome: RevealAlreadyRevealed, Card: card, Cell: pos}, nil
	}

	if err := s.cards.RevealCellTx(ctx, tx, cardID, pos); err != nil {
		return nil, err
	}
	card.Revealed[pos] = true
	prize := card.Prizes[pos]

	var balance int64
	if prize.IsEmpty() {
		balance, err = s.users.BalanceTx(ctx, tx, card.UserID)
		if err != nil {
			return nil, err
		}
	} else {
		balance, err = s.users.CreditTx(ctx, tx, card.UserID, prize.Amount)
		if err != nil {
			return nil, err
		}
		record := &domain.Transaction{
			UserID: card.UserID,
			Type:   domain.TxTypeCardPrize,
			Amount: prize.Amount,
			Meta:   map[string]interface{}{"card_id": cardID, "cell": pos},
		}
		if err := s.transactions.CreateWithTx(ctx, tx, record); err != nil {
			return nil, err
		}
	}

	img, err := s.renderer.Render(card.Prizes, card.Revealed)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	CellsRevealed.WithLabelValues(string(RevealApplied)).Inc()
	if !prize.IsEmpty() {
		CoinsPaidOut.Add(float64(prize.Amount))
	}
	logger.Info("cell revealed", "card_id", cardID, "cell", pos, "prize", prize.Label(), "balance", balance)

	return &Reveal{
		Outcome: RevealApplied,
		Card:    card,
		Cell:    pos,
		Prize:   prize,
		Balance: balance,
		Image:   img,
		Caption: fmt.Sprintf("Открыто: %s\nБаланс: %d монет", prizeCaption(prize), balance),
	}, nil
}

// RenderCard renders a card in its current persisted state.
func (s *ScratchService) RenderCard(ctx context.Context, cardID int64) ([]byte, *domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.renderer.Render(card.Prizes, card.Revealed)
	if err != nil {
		return nil, nil, err
	}
	return img, card, nil
}

func (s *ScratchService) drawLayout() [domain.CardCells]domain.Prize {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return game.DrawLayout(s.rng)
}

func prizeCaption(p domain.Prize) string {
	if p.IsEmpty() {
		return domain.EmptyLabel
	}
	return fmt.Sprintf("%d монет", p.Amount)
}
