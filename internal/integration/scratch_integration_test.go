package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scratch_lottery/internal/domain"
	"scratch_lottery/internal/render"
	"scratch_lottery/internal/repository"
	"scratch_lottery/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

const cardPrice = 50

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func newService(db *pgxpool.Pool) *service.ScratchService {
	return service.NewScratchService(db, render.New("testdata"), cardPrice)
}

// fresh tg_id per run so state from earlier runs never interferes
func freshTgID() int64 {
	return time.Now().UnixNano()
}

func TestLedger_DebitCredit(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	u, err := users.EnsureUser(ctx, freshTgID(), "ledger", "Ledger")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	balance, err := users.Debit(ctx, u.ID, 30)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if balance != 70 {
		t.Fatalf("balance after debit = %d, want 70", balance)
	}

	// underfunded debit must fail and change nothing
	if _, err := users.Debit(ctx, u.ID, 1000); !errors.Is(err, repository.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	balance, err = users.GetBalance(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != 70 {
		t.Fatalf("failed debit changed balance: %d", balance)
	}

	if _, err := users.Debit(ctx, 1<<60, 10); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	balance, err = users.Credit(ctx, u.ID, 25)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 95 {
		t.Fatalf("balance after credit = %d, want 95", balance)
	}
}

func TestCardStore_Create(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	cards := repository.NewCardRepository(db)
	ctx := context.Background()

	u, err := users.EnsureUser(ctx, freshTgID(), "store", "Store")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	layout := [domain.CardCells]domain.Prize{
		{Amount: 500}, {}, {Amount: 200}, {}, {}, {}, {}, {}, {},
	}
	id, err := cards.Create(ctx, u.ID, layout)
	if err != nil {
		t.Fatalf("create card: %v", err)
	}

	card, err := cards.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card.Prizes != layout {
		t.Fatalf("stored layout %v, want %v", card.Prizes, layout)
	}
	for i, r := range card.Revealed {
		if r {
			t.Fatalf("cell %d revealed on a fresh card", i)
		}
	}
}

func TestScratch_InitialBalance(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)

	u, err := users.EnsureUser(context.Background(), freshTgID(), "tester", "Tester")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if u.Coins != 100 {
		t.Fatalf("initial balance = %d, want 100", u.Coins)
	}

	// second ensure must not reset anything
	again, err := users.EnsureUser(context.Background(), u.TgID, "tester", "Tester")
	if err != nil {
		t.Fatalf("ensure user again: %v", err)
	}
	if again.ID != u.ID || again.Coins != u.Coins {
		t.Fatalf("ensure is not idempotent: %+v vs %+v", again, u)
	}
}

func TestScratch_BuyCard(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	svc := newService(db)
	ctx := context.Background()

	u, err := users.EnsureUser(ctx, freshTgID(), "buyer", "Buyer")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	p, err := svc.BuyCard(ctx, u.ID)
	if err != nil {
		t.Fatalf("buy card: %v", err)
	}
	if p.Balance != 100-cardPrice {
		t.Fatalf("balance after buy = %d, want %d", p.Balance, 100-cardPrice)
	}
	if len(p.Image) == 0 {
		t.Fatalf("expected rendered card image")
	}

	card, err := svc.Cards().GetByID(ctx, p.CardID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card.UserID != u.ID {
		t.Fatalf("card owner = %d, want %d", card.UserID, u.ID)
	}
	for i, r := range card.Revealed {
		if r {
			t.Fatalf("cell %d revealed on a fresh card", i)
		}
	}
}

func TestScratch_BuyCard_InsufficientFunds(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepositoryWithInitial(db, cardPrice-10)
	svc := newService(db)
	ctx := context.Background()

	u, err := users.EnsureUser(ctx, freshTgID(), "poor", "Poor")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	_, err = svc.BuyCard(ctx, u.ID)
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// balance and card count must be untouched
	balance, err := users.GetBalance(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != cardPrice-10 {
		t.Fatalf("balance changed on failed buy: %d", balance)
	}

	cards, err := svc.Cards().GetByUser(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("card created on failed buy")
	}
}

func TestScratch_RevealCell(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	svc := newService(db)
	ctx := context.Background()

	u, err := users.EnsureUser(ctx, freshTgID(), "player", "Player")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	p, err := svc.BuyCard(ctx, u.ID)
	if err != nil {
		t.Fatalf("buy card: %v", err)
	}

	r, err := svc.RevealCell(ctx, p.CardID, 4)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if r.Outcome != service.RevealApplied {
		t.Fatalf("outcome = %s, want applied", r.Outcome)
	}
	if !r.Card.Revealed[4] {
		t.Fatalf("cell 4 not marked revealed")
	}

	wantBalance := p.Balance + r.Prize.Amount
	if r.Balance != wantBalance {
		t.Fatalf("balance = %d, want %d", r.Balance, wantBalance)
	}

	// second reveal on the same cell is a no-op
	r2, err := svc.RevealCell(ctx, p.CardID, 4)
	if err != nil {
		t.Fatalf("second reveal: %v", err)
	}
	if r2.Outcome != service.RevealAlreadyRevealed {
		t.Fatalf("outcome = %s, want already_revealed", r2.Outcome)
	}
	balance, err := users.GetBalance(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != wantBalance {
		t.Fatalf("repeat reveal changed balance: %d != %d", balance, wantBalance)
	}
}

func TestScratch_RevealUnknownCard(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)

	r, err := svc.RevealCell(context.Background(), 1<<60, 0)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if r.Outcome != service.RevealNotFound {
		t.Fatalf("outcome = %s, want not_found", r.Outcome)
	}
}

func TestScratch_RevealInvalidCell(t *testing.T) {
	db := setupDB(t)
	svc := newService(db)

	for _, pos := range []int{-1, 9, 100} {
		if _, err := svc.RevealCell(context.Background(), 1, pos); !errors.Is(err, service.ErrInvalidCell) {
			t.Fatalf("pos %d: expected ErrInvalidCell, got %v", pos, err)
		}
	}
}

type brokenRenderer struct{}

func (brokenRenderer) Render([domain.CardCells]domain.Prize, [domain.CardCells]bool) ([]byte, error) {
	return nil, errors.New("render failed")
}

// A render failure must roll the whole purchase back: no debit, no card.
func TestScratch_BuyCard_RenderFailureRollsBack(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	svc := service.NewScratchService(db, brokenRenderer{}, cardPrice)
	ctx := context.Background()

	u, err := users.EnsureUser(ctx, freshTgID(), "broken", "Broken")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	if _, err := svc.BuyCard(ctx, u.ID); err == nil {
		t.Fatalf("expected buy to fail")
	}

	balance, err := users.GetBalance(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != 100 {
		t.Fatalf("failed buy changed balance: %d", balance)
	}

	cards, err := svc.Cards().GetByUser(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("failed buy left a card behind")
	}
}

func TestScratch_FullCardScenario(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	svc := newService(db)
	ctx := context.Background()

	u, err := users.EnsureUser(ctx, freshTgID(), "full", "Full")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	p, err := svc.BuyCard(ctx, u.ID)
	if err != nil {
		t.Fatalf("buy card: %v", err)
	}

	var lastBalance int64 = p.Balance
	for pos := 0; pos < 9; pos++ {
		r, err := svc.RevealCell(ctx, p.CardID, pos)
		if err != nil {
			t.Fatalf("reveal %d: %v", pos, err)
		}
		if r.Outcome != service.RevealApplied {
			t.Fatalf("reveal %d: outcome %s", pos, r.Outcome)
		}
		if r.Balance != lastBalance+r.Prize.Amount {
			t.Fatalf("reveal %d: balance %d, want %d", pos, r.Balance, lastBalance+r.Prize.Amount)
		}
		lastBalance = r.Balance
	}

	card, err := svc.Cards().GetByID(ctx, p.CardID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if !card.FullyRevealed() {
		t.Fatalf("card not fully revealed")
	}

	wantBalance := p.Balance + card.WonTotal()
	balance, err := users.GetBalance(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != wantBalance {
		t.Fatalf("final balance %d, want buy remainder %d + won %d", balance, p.Balance, card.WonTotal())
	}
}
