// Package handler wires the alignment disclosure endpoint to the
// reputation service.
package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"verdict/internal/reputation/service"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

// Service defines the reputation operations the handler depends on.
type Service interface {
	DiscloseAlignment(ctx context.Context, caseID id.CaseID, choice uint8, salt []byte) (service.AlignmentResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the disclosure endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases/{caseID}/alignment", h.HandleDisclose)
}

type discloseRequest struct {
	Choice int    `json:"choice"`
	Salt   string `json:"salt"` // hex
}

// HandleDisclose handles POST /cases/{caseID}/alignment.
func (h *Handler) HandleDisclose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[discloseRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.Choice < 0 || req.Choice > 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidVote, "choice must be 0 or 1"))
		return
	}
	salt, err := hex.DecodeString(req.Salt)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "salt must be hex-encoded"))
		return
	}

	result, err := h.service.DiscloseAlignment(ctx, caseID, uint8(req.Choice), salt)
	if err != nil {
		h.logger.ErrorContext(ctx, "alignment disclosure rejected",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
