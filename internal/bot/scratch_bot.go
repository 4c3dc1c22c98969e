package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"scratch_lottery/internal/domain"
	"scratch_lottery/internal/logger"
	"scratch_lottery/internal/repository"
	"scratch_lottery/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ScratchBot is the Telegram surface of the scratch game: /start with
// a buy button, a 3x3 scratch keyboard under every card photo, and a
// couple of admin commands.
type ScratchBot struct {
	bot      *tgbotapi.BotAPI
	scratch  *service.ScratchService
	admin    *service.AdminService
	users    *repository.UserRepository
	adminIDs []int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

// New creates a scratch bot.
func New(token string, scratch *service.ScratchService, admin *service.AdminService, users *repository.UserRepository, adminIDs []int64) (*ScratchBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "scratch_bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &ScratchBot{
		bot:      api,
		scratch:  scratch,
		admin:    admin,
		users:    users,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start runs the long-polling update loop.
func (b *ScratchBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.CallbackQuery != nil:
				b.wg.Add(1)
				go func(q *tgbotapi.CallbackQuery) {
					defer b.wg.Done()
					b.handleCallback(q)
				}(update.CallbackQuery)

			case update.Message != nil && update.Message.IsCommand():
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleCommand(msg)
				}(update.Message)
			}
		}
	}
}

// Stop gracefully stops the bot
func (b *ScratchBot) Stop() {
	b.log.Info("stopping bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *ScratchBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch msg.Command() {
	case "start", "balance":
		b.sendLobby(ctx, msg)

	case "stats":
		if b.isAdmin(msg.From.ID) {
			b.replyText(msg, b.handleStats(ctx))
		}

	case "addcoins":
		if b.isAdmin(msg.From.ID) {
			b.replyText(msg, b.handleAddCoins(ctx, msg.CommandArguments()))
		}

	default:
		b.replyText(msg, "Неизвестная команда. /start — начать игру.")
	}
}

// sendLobby shows the balance and the buy button.
func (b *ScratchBot) sendLobby(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.EnsureUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName)
	if err != nil {
		b.log.Error("ensure user failed", "tg_id", msg.From.ID, "error", err)
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"*Лотерея!*\n\nУ тебя: %d монет\nКарточка — %d монет", user.Coins, b.scratch.Price()))
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyMarkup = buyKeyboard(b.scratch.Price())

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *ScratchBot) handleCallback(q *tgbotapi.CallbackQuery) {
	// always answer so the button stops spinning
	if _, err := b.bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Debug("callback answer failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data := q.Data
	switch {
	case data == "buy_card":
		b.handleBuy(ctx, q)
	case strings.HasPrefix(data, "scratch_"):
		b.handleScratch(ctx, q)
	}
}

func (b *ScratchBot) handleBuy(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Message is nil for callbacks on messages too old for Telegram to reference
	if q.Message == nil {
		return
	}

	user, err := b.users.EnsureUser(ctx, q.From.ID, q.From.UserName, q.From.FirstName)
	if err != nil {
		b.log.Error("ensure user failed", "tg_id", q.From.ID, "error", err)
		return
	}

	p, err := b.scratch.BuyCard(ctx, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, "Недостаточно монет!")
			if _, err := b.bot.Send(edit); err != nil {
				b.log.Error("error editing message", "error", err)
			}
			return
		}
		b.log.Error("buy card failed", "user_id", user.ID, "error", err)
		return
	}

	photo := tgbotapi.NewPhoto(q.Message.Chat.ID, tgbotapi.FileBytes{Name: "card.png", Bytes: p.Image})
	photo.Caption = p.Caption
	photo.ParseMode = tgbotapi.ModeMarkdown
	photo.ReplyMarkup = scratchKeyboard(p.CardID, [domain.CardCells]bool{})

	if _, err := b.bot.Send(photo); err != nil {
		b.log.Error("error sending card photo", "error", err)
		return
	}

	if _, err := b.bot.Request(tgbotapi.NewDeleteMessage(q.Message.Chat.ID, q.Message.MessageID)); err != nil {
		b.log.Debug("delete lobby message failed", "error", err)
	}
}

func (b *ScratchBot) handleScratch(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		return
	}

	parts := strings.Split(q.Data, "_")
	if len(parts) != 3 {
		return
	}
	cardID, err1 := strconv.ParseInt(parts[1], 10, 64)
	pos, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return
	}

	r, err := b.scratch.RevealCell(ctx, cardID, pos)
	if err != nil {
		b.log.Error("reveal failed", "card_id", cardID, "cell", pos, "error", err)
		return
	}
	if r.Outcome != service.RevealApplied {
		b.log.Debug("reveal no-op", "card_id", cardID, "cell", pos, "outcome", r.Outcome)
		return
	}

	kb := scratchKeyboard(cardID, r.Card.Revealed)
	media := tgbotapi.NewInputMediaPhoto(tgbotapi.FileBytes{Name: "card.png", Bytes: r.Image})
	media.Caption = r.Caption

	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      q.Message.Chat.ID,
			MessageID:   q.Message.MessageID,
			ReplyMarkup: &kb,
		},
		Media: media,
	}
	if _, err := b.bot.Send(edit); err != nil {
		b.log.Error("error editing card message", "error", err)
	}
}

func (b *ScratchBot) handleStats(ctx context.Context) string {
	stats, err := b.admin.GetStats(ctx)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}

	return fmt.Sprintf(`📊 Статистика

👥 Пользователей: %d
🎟 Карточек: %d (сегодня: %d)
🔍 Открыто ячеек: %d

💰 Монет в обороте: %d
🏆 Выплачено призов: %d`,
		stats.TotalUsers,
		stats.TotalCards, stats.CardsToday,
		stats.TotalRevealed,
		stats.TotalCoins,
		stats.TotalPaidOut,
	)
}

func (b *ScratchBot) handleAddCoins(ctx context.Context, args string) string {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "Использование: /addcoins <tg_id> <сумма>"
	}

	tgID, err1 := strconv.ParseInt(fields[0], 10, 64)
	amount, err2 := strconv.ParseInt(fields[1], 10, 64)
	if err1 != nil || err2 != nil || amount <= 0 {
		return "Использование: /addcoins <tg_id> <сумма>"
	}

	newBalance, err := b.admin.AddCoins(ctx, tgID, amount)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}
	return fmt.Sprintf("✅ Начислено %d монет, новый баланс: %d", amount, newBalance)
}

func (b *ScratchBot) replyText(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *ScratchBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func buyKeyboard(price int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Купить карточку (%d монет)", price), "buy_card"),
		),
	)
}

// scratchKeyboard builds the 3x3 keyboard mirroring the card: hidden
// cells scratch, open cells are inert.
func scratchKeyboard(cardID int64, revealed [domain.CardCells]bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 3)
	for row := 0; row < 3; row++ {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, 3)
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if revealed[i] {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData("Открыто", "noop"))
			} else {
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData("Стереть", fmt.Sprintf("scratch_%d_%d", cardID, i)))
			}
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
