// Package handler wires voting endpoints to the voting engine.
package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"verdict/internal/voting/service"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the voting engine operations the handler depends on.
type Service interface {
	CastVote(ctx context.Context, caseID id.CaseID, choice uint8, commitment []byte) error
	RevealResults(ctx context.Context, caseID id.CaseID) (service.RevealResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts voting endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases/{caseID}/votes", h.HandleCastVote)
	r.Post("/cases/{caseID}/reveal", h.HandleReveal)
}

type castVoteRequest struct {
	Choice     int    `json:"choice"`
	Commitment string `json:"commitment,omitempty"` // hex
}

// HandleCastVote handles POST /cases/{caseID}/votes. The response never
// echoes the choice; neither do the logs.
func (h *Handler) HandleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[castVoteRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.Choice < 0 || req.Choice > 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidVote, "choice must be 0 or 1"))
		return
	}
	var commitment []byte
	if req.Commitment != "" {
		commitment, err = hex.DecodeString(req.Commitment)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "commitment must be hex-encoded"))
			return
		}
	}

	if err := h.service.CastVote(ctx, caseID, uint8(req.Choice), commitment); err != nil {
		h.logger.ErrorContext(ctx, "vote rejected",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// HandleReveal handles POST /cases/{caseID}/reveal.
func (h *Handler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.RevealResults(ctx, caseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "reveal failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
