package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"scratch_lottery/internal/domain"
	"scratch_lottery/internal/repository"
	"scratch_lottery/internal/service"

	"github.com/gin-gonic/gin"
)

// RevealRequest identifies one cell on one card.
type RevealRequest struct {
	CardID int64 `json:"card_id" binding:"required,min=1"`
	Cell   *int  `json:"cell" binding:"required,min=0,max=8"`
}

// BuyCard purchases a new scratch card for the authenticated user.
func (h *Handler) BuyCard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	p, err := h.Scratch.BuyCard(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient_funds"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"card_id":   p.CardID,
		"balance":   p.Balance,
		"caption":   p.Caption,
		"image_url": cardImageURL(p.CardID),
	})
}

// RevealCell opens one cell on a card and reports the outcome.
func (h *Handler) RevealCell(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	r, err := h.Scratch.RevealCell(c.Request.Context(), req.CardID, *req.Cell)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCell) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	if r.Outcome != service.RevealApplied {
		c.JSON(http.StatusOK, gin.H{"outcome": r.Outcome})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":        r.Outcome,
		"revealed_label": r.Prize.Label(),
		"prize_amount":   r.Prize.Amount,
		"balance":        r.Balance,
		"caption":        r.Caption,
		"image_url":      cardImageURL(req.CardID),
	})
}

// CardImage serves the card rendered in its current reveal state.
func (h *Handler) CardImage(c *gin.Context) {
	cardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad card id"})
		return
	}

	img, _, err := h.Scratch.RenderCard(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}

	c.Data(http.StatusOK, "image/png", img)
}

// MyCards returns the authenticated user's recent cards.
func (h *Handler) MyCards(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	cards, err := h.Scratch.Cards().GetByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	out := make([]gin.H, 0, len(cards))
	for _, card := range cards {
		out = append(out, gin.H{
			"id":             card.ID,
			"revealed":       domain.EncodeRevealed(card.Revealed),
			"fully_revealed": card.FullyRevealed(),
			"won":            card.WonTotal(),
			"created_at":     card.CreatedAt,
			"image_url":      cardImageURL(card.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{"cards": out})
}

// GameInfo returns the scratch game configuration.
func (h *Handler) GameInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"price":       h.Scratch.Price(),
		"cells":       domain.CardCells,
		"description": "Купи карточку и сотри 9 ячеек — числовые ячейки платят монетами!",
	})
}

func cardImageURL(cardID int64) string {
	return fmt.Sprintf("/api/v1/cards/%d/image", cardID)
}
