package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/staffclock/attendance/internal/adapter/logger"
	"github.com/staffclock/attendance/internal/domain"
	"github.com/staffclock/attendance/internal/interfaces"
)

type AttendanceHandler struct {
	service interfaces.AttendanceService
	history interfaces.EventHistory
	logger  logger.Logger
}

func NewAttendanceHandler(service interfaces.AttendanceService, history interfaces.EventHistory, logger logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		history: history,
		logger:  logger,
	}
}

type ClockRequest struct {
	Source    string   `json:"source"`
	Method    string   `json:"verification_method"`
	Token     string   `json:"token,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type SessionResponse struct {
	SessionID   string  `json:"session_id"`
	Status      string  `json:"status"`
	ClockIn     string  `json:"clock_in"`
	ClockOut    *string `json:"clock_out,omitempty"`
	HoursWorked float64 `json:"hours_worked"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func (h *AttendanceHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.handleClock(w, r, h.service.ClockIn)
}

func (h *AttendanceHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.handleClock(w, r, h.service.ClockOut)
}

func (h *AttendanceHandler) handleClock(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, cmd interfaces.ClockCommand) (*domain.WorkSession, error)) {
	if r.Method != http.MethodPost {
		h.respondError(w, "Method not allowed", "", http.StatusMethodNotAllowed, nil)
		return
	}

	restaurantID, userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, "Invalid request body", "", http.StatusBadRequest, nil)
		return
	}

	if validationErrors := validateClockRequest(req); len(validationErrors) > 0 {
		h.respondError(w, "Validation failed", "", http.StatusBadRequest, validationErrors)
		return
	}

	cmd := interfaces.ClockCommand{
		RestaurantID: restaurantID,
		UserID:       userID,
		Token:        req.Token,
		Verification: domain.Verification{
			Source:    domain.EventSource(req.Source),
			Method:    domain.VerificationMethod(req.Method),
			IPAddress: clientIP(r),
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		},
	}

	session, err := op(r.Context(), cmd)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(session))
}

func (h *AttendanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method not allowed", "", http.StatusMethodNotAllowed, nil)
		return
	}

	restaurantID, userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	status, err := h.service.Status(r.Context(), restaurantID, userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	resp := map[string]interface{}{
		"is_clocked_in":   status.IsClockedIn,
		"can_clock_in":    status.CanClockIn,
		"can_clock_out":   status.CanClockOut,
		"attendance_mode": status.AttendanceMode,
		"qr_enabled":      status.QREnabled,
		"device_enabled":  status.DeviceEnabled,
	}
	if status.TodaySchedule != nil {
		resp["today_schedule"] = map[string]interface{}{
			"date":       status.TodaySchedule.Date.Format("2006-01-02"),
			"start_time": status.TodaySchedule.StartTime,
			"end_time":   status.TodaySchedule.EndTime,
		}
	}
	sessions := make([]SessionResponse, len(status.TodaySessions))
	for i, s := range status.TodaySessions {
		sessions[i] = sessionResponse(s)
	}
	resp["today_sessions"] = sessions

	respondJSON(w, http.StatusOK, resp)
}

func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method not allowed", "", http.StatusMethodNotAllowed, nil)
		return
	}

	restaurantID, userID, ok := h.identity(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.respondError(w, "Invalid limit", "", http.StatusBadRequest, nil)
			return
		}
		limit = n
	}

	events, err := h.history.History(r.Context(), restaurantID, userID, limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	resp := make([]map[string]interface{}, len(events))
	for i, e := range events {
		resp[i] = map[string]interface{}{
			"id":                  e.ID,
			"event_type":          e.EventType,
			"source":              e.Source,
			"verification_method": e.VerificationMethod,
			"event_time":          e.EventTime,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *AttendanceHandler) identity(w http.ResponseWriter, r *http.Request) (restaurantID, userID string, ok bool) {
	restaurantID = r.Header.Get("X-Restaurant-ID")
	userID = r.Header.Get("X-User-ID")
	if restaurantID == "" || userID == "" {
		h.respondError(w, "Missing identity headers", "", http.StatusUnauthorized, nil)
		return "", "", false
	}
	return restaurantID, userID, true
}

func (h *AttendanceHandler) respondServiceError(w http.ResponseWriter, err error) {
	if domain.IsAdmissionError(err) {
		h.respondError(w, err.Error(), err.Error(), admissionStatus(err), nil)
		return
	}

	h.logger.Error("request_failed", "Attendance request failed", "", nil, err)
	h.respondError(w, "Internal server error", "", http.StatusInternalServerError, nil)
}

func (h *AttendanceHandler) respondError(w http.ResponseWriter, message, code string, status int, validationErrors []ValidationError) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code, Errors: validationErrors})
}

func admissionStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotClockedIn), errors.Is(err, domain.ErrAlreadyClockedIn):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidQR), errors.Is(err, domain.ErrExpiredQR),
		errors.Is(err, domain.ErrGeolocationRequired):
		return http.StatusBadRequest
	default:
		return http.StatusForbidden
	}
}

func validateClockRequest(req ClockRequest) []ValidationError {
	var errs []ValidationError

	validSources := map[string]bool{
		string(domain.SourceQRCode): true,
		string(domain.SourceDevice): true,
		string(domain.SourceManual): true,
	}
	if !validSources[req.Source] {
		errs = append(errs, ValidationError{
			Field:   "source",
			Message: "source must be one of: qr_code, device, manual",
		})
	}

	validMethods := map[string]bool{
		string(domain.MethodQR):        true,
		string(domain.MethodBiometric): true,
		string(domain.MethodPIN):       true,
		string(domain.MethodManual):    true,
	}
	if !validMethods[req.Method] {
		errs = append(errs, ValidationError{
			Field:   "verification_method",
			Message: "verification method must be one of: qr, biometric, pin, manual",
		})
	}

	if req.Source == string(domain.SourceQRCode) && req.Token == "" {
		errs = append(errs, ValidationError{
			Field:   "token",
			Message: "token is required for qr_code source",
		})
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		errs = append(errs, ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be sent together",
		})
	}

	return errs
}

func sessionResponse(s *domain.WorkSession) SessionResponse {
	resp := SessionResponse{
		SessionID:   s.ID,
		Status:      string(s.Status),
		ClockIn:     s.ClockIn.Format(time.RFC3339),
		HoursWorked: s.HoursWorked,
	}
	if s.ClockOut != nil {
		out := s.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &out
	}
	return resp
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
