package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TopWinners returns users ordered by total coins won from cards.
func (h *Handler) TopWinners(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	top, err := h.Users.GetTopWinners(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"top": top})
}
