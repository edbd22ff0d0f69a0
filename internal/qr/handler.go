// AngelaMos | 2026
// handler.go

package qr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wegtu/wegtu-backend/internal/core"
	"github.com/wegtu/wegtu-backend/internal/middleware"
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

// RegisterRoutes wires the public scan route and the authenticated
// redeem route. Peek uses optional auth so a scanned code can be
// inspected before logging in without burning it.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/qr", func(r chi.Router) {
		r.With(optionalAuth).Get("/{hashID}", h.Peek)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/{hashID}/redeem", h.Redeem)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/qr-codes", h.GenerateBatch)
	r.Get("/qr-codes", h.ListCodes)
}

func (h *Handler) Peek(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.Peek(r.Context(), chi.URLParam(r, "hashID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "qr code")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PeekResponse{
		HashID:  code.HashID,
		XPValue: code.XPValue,
		IsUsed:  code.IsUsed,
	})
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	resp, err := h.service.Redeem(r.Context(), userID, chi.URLParam(r, "hashID"))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "qr code")
		case errors.Is(err, ErrAlreadyUsed):
			core.JSONError(w, core.ConflictError(ErrAlreadyUsed.Error()))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req GenerateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	codes, err := h.service.GenerateBatch(r.Context(), req.Count, req.XPValue)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToCodeResponses(codes))
}

func (h *Handler) ListCodes(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "page_size", 50)

	codes, total, err := h.service.ListCodes(r.Context(), page, pageSize)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToCodeResponses(codes), page, pageSize, total)
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
