package bot

import (
	"context"
	"fmt"
	"testing"

	"scratch_lottery/internal/domain"
	"scratch_lottery/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram omits Message on callbacks against messages too old to
// reference; handlers must bail out instead of dereferencing it.
func TestCallbackHandlers_NilMessage(t *testing.T) {
	b := &ScratchBot{log: logger.With("component", "scratch_bot_test")}

	q := &tgbotapi.CallbackQuery{
		ID:   "stale",
		From: &tgbotapi.User{ID: 1},
		Data: "buy_card",
	}
	b.handleBuy(context.Background(), q)

	q.Data = "scratch_1_0"
	b.handleScratch(context.Background(), q)
}

func TestScratchKeyboard(t *testing.T) {
	var revealed [domain.CardCells]bool
	revealed[0] = true
	revealed[8] = true

	kb := scratchKeyboard(77, revealed)
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(kb.InlineKeyboard))
	}

	for row := 0; row < 3; row++ {
		if len(kb.InlineKeyboard[row]) != 3 {
			t.Fatalf("row %d: expected 3 buttons, got %d", row, len(kb.InlineKeyboard[row]))
		}
		for col := 0; col < 3; col++ {
			i := row*3 + col
			btn := kb.InlineKeyboard[row][col]
			if revealed[i] {
				if *btn.CallbackData != "noop" {
					t.Fatalf("cell %d: open cell must be inert, got %q", i, *btn.CallbackData)
				}
			} else if *btn.CallbackData != fmt.Sprintf("scratch_77_%d", i) {
				t.Fatalf("cell %d: callback %q", i, *btn.CallbackData)
			}
		}
	}
}
