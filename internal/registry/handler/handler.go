// Package handler wires registry endpoints to the registry service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"verdict/internal/registry/models"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

// Service defines the registry operations the handler depends on.
type Service interface {
	CertifyBatch(ctx context.Context, jurors []id.JurorID) error
	AuthorizeBatch(ctx context.Context, caseID id.CaseID, jurors []id.JurorID) error
	IsAuthorized(ctx context.Context, caseID id.CaseID, juror id.JurorID) (bool, error)
	GetJuror(ctx context.Context, juror id.JurorID) (*models.Juror, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/jurors/certify", h.HandleCertify)
	r.Get("/jurors/{jurorID}/reputation", h.HandleReputation)
	r.Post("/cases/{caseID}/jurors", h.HandleAuthorize)
	r.Get("/cases/{caseID}/jurors/{jurorID}", h.HandleIsAuthorized)
}

// HandleCertify handles POST /jurors/certify. Owner only; the service
// enforces the role.
func (h *Handler) HandleCertify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[jurorsRequest](w, r, h.logger)
	if !ok {
		return
	}
	jurors, err := req.ParsedJurors()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CertifyBatch(ctx, jurors); err != nil {
		h.logger.ErrorContext(ctx, "certify failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"certified": len(jurors)})
}

// HandleAuthorize handles POST /cases/{caseID}/jurors.
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[jurorsRequest](w, r, h.logger)
	if !ok {
		return
	}
	jurors, err := req.ParsedJurors()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.AuthorizeBatch(ctx, caseID, jurors); err != nil {
		h.logger.ErrorContext(ctx, "authorize failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"authorized": len(jurors)})
}

// HandleIsAuthorized handles GET /cases/{caseID}/jurors/{jurorID}.
func (h *Handler) HandleIsAuthorized(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	jurorID, err := id.ParseJurorID(chi.URLParam(r, "jurorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	authorized, err := h.service.IsAuthorized(r.Context(), caseID, jurorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"authorized": authorized})
}

// HandleReputation handles GET /jurors/{jurorID}/reputation.
func (h *Handler) HandleReputation(w http.ResponseWriter, r *http.Request) {
	jurorID, err := id.ParseJurorID(chi.URLParam(r, "jurorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	juror, err := h.service.GetJuror(r.Context(), jurorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"juror":      juror.ID,
		"certified":  juror.Certified,
		"reputation": juror.Reputation,
	})
}
