package http

import (
	"net/http"
	"time"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/interfaces"
)

// QRHandler serves the restaurant-side endpoints: fetching the current
// signed token for display, and rotating the code.
type QRHandler struct {
	tokens interfaces.TokenService
	logger logger.Logger
}

func NewQRHandler(tokens interfaces.TokenService, logger logger.Logger) *QRHandler {
	return &QRHandler{
		tokens: tokens,
		logger: logger,
	}
}

func (h *QRHandler) CurrentToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	restaurantID := r.Header.Get("X-Restaurant-ID")
	if restaurantID == "" {
		http.Error(w, "Missing identity headers", http.StatusUnauthorized)
		return
	}

	token, qr, err := h.tokens.CurrentToken(r.Context(), restaurantID)
	if err != nil {
		h.logger.Error("qr_token_failed", "Failed to issue QR token", "", nil, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"token":                    token,
		"type":                     qr.Type,
		"refresh_interval_minutes": qr.RefreshIntervalMinutes,
	}
	if qr.ExpiresAt != nil {
		resp["expires_at"] = qr.ExpiresAt.Format(time.RFC3339)
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *QRHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	restaurantID := r.Header.Get("X-Restaurant-ID")
	if restaurantID == "" {
		http.Error(w, "Missing identity headers", http.StatusUnauthorized)
		return
	}

	qr, err := h.tokens.Rotate(r.Context(), restaurantID)
	if err != nil {
		h.logger.Error("qr_rotate_failed", "Failed to rotate QR code", "", nil, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":       qr.Code,
		"rotated_at": qr.UpdatedAt.Format(time.RFC3339),
	})
}
