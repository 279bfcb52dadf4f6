package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/foundrgate/foundrgate/internal/auth"
	"github.com/foundrgate/foundrgate/internal/commands"
)

// serviceResponse is the uniform envelope on the shared-secret routes.
type serviceResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeServiceOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, serviceResponse{Success: true, Data: data})
}

func writeServiceError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, serviceResponse{Success: false, Error: msg})
}

// requireSecret guards a service route. On failure it writes the response
// and returns false; nothing downstream may run.
func (s *Server) requireSecret(w http.ResponseWriter, r *http.Request) bool {
	s.metrics.noteRequest()
	if !auth.CheckSharedSecret(r, s.cfg.SharedSecret) {
		s.metrics.noteAuthFailure()
		writeServiceError(w, http.StatusUnauthorized, "invalid api key")
		return false
	}
	return true
}

func (s *Server) handleAdmins(w http.ResponseWriter, r *http.Request) {
	if !s.requireSecret(w, r) {
		return
	}
	if s.ledger == nil {
		writeServiceError(w, http.StatusInternalServerError, "ledger is not configured")
		return
	}
	admins, err := s.ledger.Admins(r.Context())
	if err != nil {
		writeServiceError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeServiceOK(w, admins)
}

type slackExecuteRequest struct {
	Command string            `json:"command"`
	Args    map[string]string `json:"args"`
	UserID  string            `json:"user_id"`
	Channel string            `json:"channel,omitempty"`
}

// handleSlackExecute dispatches a command on behalf of a Slack user. The
// reply goes to Slack when a channel is given and a sink is configured,
// and always comes back in the response body.
func (s *Server) handleSlackExecute(w http.ResponseWriter, r *http.Request) {
	if !s.requireSecret(w, r) {
		return
	}
	var req slackExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Command) == "" {
		writeServiceError(w, http.StatusBadRequest, "user_id and command are required")
		return
	}

	res := s.dispatcher.Dispatch(r.Context(), commands.Invocation{
		UserID:  req.UserID,
		Command: req.Command,
		Args:    req.Args,
	})
	s.metrics.noteOutcome(res.Outcome)

	switch res.Outcome {
	case commands.OutcomeSuccess:
		if s.sink != nil && strings.TrimSpace(req.Channel) != "" {
			if _, err := s.sink.Send(r.Context(), req.Channel, res.Reply); err != nil {
				s.log.Warn("slack reply delivery failed", "channel", req.Channel, "error", err)
			}
		}
		writeServiceOK(w, res.Reply)
	case commands.OutcomeBadRequest:
		writeServiceError(w, http.StatusBadRequest, res.Message)
	case commands.OutcomeRateLimited:
		writeServiceError(w, http.StatusTooManyRequests, res.Message)
	default:
		writeServiceError(w, http.StatusInternalServerError, res.Message)
	}
}

func (s *Server) handleSlackMessages(w http.ResponseWriter, r *http.Request) {
	if !s.requireSecret(w, r) {
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeServiceError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if s.ledger == nil {
		writeServiceError(w, http.StatusInternalServerError, "ledger is not configured")
		return
	}
	msgs, err := s.ledger.GetMessages(r.Context(), userID)
	if err != nil {
		writeServiceError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeServiceOK(w, msgs)
}

type slackDashboardRequest struct {
	UserID string `json:"user_id"`
}

// handleSlackDashboard produces a dashboard login link for a Slack user by
// running the dashboard command through the normal dispatch pipeline.
func (s *Server) handleSlackDashboard(w http.ResponseWriter, r *http.Request) {
	if !s.requireSecret(w, r) {
		return
	}
	var req slackDashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeServiceError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	res := s.dispatcher.Dispatch(r.Context(), commands.Invocation{
		UserID:  req.UserID,
		Command: "dashboard",
	})
	s.metrics.noteOutcome(res.Outcome)
	if res.Outcome != commands.OutcomeSuccess {
		writeServiceError(w, http.StatusInternalServerError, res.Message)
		return
	}
	writeServiceOK(w, res.Reply)
}
