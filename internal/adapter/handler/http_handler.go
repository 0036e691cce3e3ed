package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/obrennan/stocktalk/internal/core/domain"
	"github.com/obrennan/stocktalk/internal/core/service"
)

type HTTPHandler struct {
	commands *service.CommandService
}

type CommandHTTPRequest struct {
	OrgID   string `json:"org_id"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type CommandHTTPResponse struct {
	IsAction          bool               `json:"is_action"`
	NeedsConfirmation bool               `json:"needs_confirmation,omitempty"`
	Action            string             `json:"action,omitempty"`
	Filters           *domain.ItemFilter `json:"filters,omitempty"`
	Success           bool               `json:"success"`
	Affected          int                `json:"affected"`
	Message           string             `json:"message"`
	RecordErrors      []string           `json:"record_errors,omitempty"`
	AffectedNames     []string           `json:"affected_names,omitempty"`
	OverflowCount     int                `json:"overflow_count,omitempty"`
}

func NewHTTPHandler(commands *service.CommandService) *HTTPHandler {
	return &HTTPHandler{commands: commands}
}

func (h *HTTPHandler) Command(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CommandHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CommandHTTPResponse{
			Message: "invalid request body",
		})
		return
	}

	if req.OrgID == "" || req.UserID == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, CommandHTTPResponse{
			Message: "missing required fields",
		})
		return
	}

	resp, err := h.commands.Execute(r.Context(), service.CommandRequest{
		OrgID:   req.OrgID,
		UserID:  req.UserID,
		Message: req.Message,
	})
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"

		switch {
		case errors.Is(err, service.ErrUnauthorized):
			status = http.StatusForbidden
			message = "only owners and admins can run inventory commands"
		case errors.Is(err, service.ErrRateLimited):
			status = http.StatusTooManyRequests
			message = "too many commands, retry shortly"
		case errors.Is(err, service.ErrTierLimited):
			status = http.StatusPaymentRequired
			message = strings.TrimPrefix(err.Error(), service.ErrTierLimited.Error()+": ")
		}

		writeJSON(w, status, CommandHTTPResponse{Message: message})
		return
	}

	writeJSON(w, http.StatusOK, CommandHTTPResponse{
		IsAction:          resp.IsAction,
		NeedsConfirmation: resp.NeedsConfirmation,
		Action:            string(resp.Kind),
		Filters:           resp.Filter,
		Success:           resp.Success,
		Affected:          resp.Affected,
		Message:           resp.Message,
		RecordErrors:      resp.RecordErrors,
		AffectedNames:     resp.AffectedNames,
		OverflowCount:     resp.Overflow,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
