// Package handler wires case ledger endpoints to the case service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"verdict/internal/caseledger/models"
	"verdict/internal/caseledger/service"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

// Service defines the case ledger operations the handler depends on.
type Service interface {
	CreateCase(ctx context.Context, req service.CreateCaseRequest) (id.CaseID, error)
	GetCaseInfo(ctx context.Context, caseID id.CaseID) (models.Info, error)
	CloseVoting(ctx context.Context, caseID id.CaseID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts case endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases", h.HandleCreate)
	r.Get("/cases/{caseID}", h.HandleGet)
	r.Post("/cases/{caseID}/close", h.HandleClose)
}

type createRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	EvidenceRef    string     `json:"evidence_ref"`
	RequiredJurors int        `json:"required_jurors"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// HandleCreate handles POST /cases. The authenticated caller becomes the
// case judge.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[createRequest](w, r, h.logger)
	if !ok {
		return
	}

	domainReq := service.CreateCaseRequest{
		Title:          req.Title,
		Description:    req.Description,
		EvidenceRef:    req.EvidenceRef,
		RequiredJurors: req.RequiredJurors,
	}
	if req.Deadline != nil {
		domainReq.Deadline = *req.Deadline
	}

	caseID, err := h.service.CreateCase(ctx, domainReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "case creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]id.CaseID{"case_id": caseID})
}

// HandleGet handles GET /cases/{caseID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	info, err := h.service.GetCaseInfo(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

// HandleClose handles POST /cases/{caseID}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CloseVoting(ctx, caseID); err != nil {
		h.logger.ErrorContext(ctx, "close voting failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"closed": true})
}
