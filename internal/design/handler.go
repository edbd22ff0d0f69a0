// AngelaMos | 2026
// handler.go

package design

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/middleware"
	"github.com/wegtu/wegtu-backend/internal/progression"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/designs", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.ListDesigns)
		r.Post("/", h.CreateDesign)
		r.Get("/selectable", h.ListSelectable)
		r.Get("/{designID}", h.GetDesign)
		r.Delete("/{designID}", h.DeleteDesign)
	})

	r.Route("/design-checks", func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/", h.RequestCheck)
		r.Get("/incoming", h.IncomingChecks)
		r.Get("/outgoing", h.OutgoingChecks)
		r.Post("/{requestID}/approve", h.ApproveCheck)
		r.Post("/{requestID}/reject", h.RejectCheck)
	})
}

func (h *Handler) CreateDesign(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CreateDesignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	d, err := h.service.CreateDesign(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientTier) {
			core.JSONError(
				w,
				core.InsufficientTierError(progression.CapUploadDesign.RequiredTier),
			)
			return
		}
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid design category")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToDesignResponse(d))
}

func (h *Handler) GetDesign(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDesign(r.Context(), chi.URLParam(r, "designID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "design")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToDesignResponse(d))
}

func (h *Handler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	params := ListDesignsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Category: r.URL.Query().Get("category"),
		UserID:   r.URL.Query().Get("user_id"),
	}

	designs, total, err := h.service.ListDesigns(r.Context(), params)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid design category")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToDesignResponses(designs),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	err := h.service.DeleteDesign(r.Context(), chi.URLParam(r, "designID"), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "design")
			return
		}
		if errors.Is(err, core.ErrForbidden) ||
			errors.Is(err, core.ErrInsufficientTier) {
			core.Forbidden(w, "cannot delete another member's design")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListSelectable(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	designs, err := h.service.SelectableDesigns(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToDesignResponses(designs))
}

func (h *Handler) RequestCheck(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CreateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	cr, err := h.service.RequestCheck(r.Context(), userID, req.ApproverID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfCheck):
			core.BadRequest(w, ErrSelfCheck.Error())
		case errors.Is(err, core.ErrInsufficientTier):
			core.JSONError(
				w,
				core.InsufficientTierError(progression.CapUploadDesign.RequiredTier),
			)
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "approver")
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("check request"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToCheckRequestResponse(cr))
}

func (h *Handler) IncomingChecks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	requests, err := h.service.IncomingChecks(
		r.Context(),
		userID,
		r.URL.Query().Get("status"),
	)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid status filter")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCheckRequestResponses(requests))
}

func (h *Handler) OutgoingChecks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	requests, err := h.service.OutgoingChecks(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCheckRequestResponses(requests))
}

func (h *Handler) ApproveCheck(w http.ResponseWriter, r *http.Request) {
	h.resolveCheck(w, r, true)
}

func (h *Handler) RejectCheck(w http.ResponseWriter, r *http.Request) {
	h.resolveCheck(w, r, false)
}

func (h *Handler) resolveCheck(
	w http.ResponseWriter,
	r *http.Request,
	approve bool,
) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	cr, err := h.service.ResolveCheck(
		r.Context(),
		chi.URLParam(r, "requestID"),
		userID,
		approve,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "check request")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "only the approver can resolve this request")
		case errors.Is(err, ErrAlreadyResolved):
			core.Conflict(w, ErrAlreadyResolved.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToCheckRequestResponse(cr))
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return val
}
