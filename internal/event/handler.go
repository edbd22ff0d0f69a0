// AngelaMos | 2026
// handler.go

package event

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/events", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.ListEvents)
		r.Get("/{eventID}", h.GetEvent)
		r.Post("/{eventID}/tickets", h.BuyTicket)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/tickets/me", h.MyTickets)
	})
}

// RegisterAdminRoutes covers event lifecycle management, which is
// admin territory.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/events", h.CreateEvent)
	r.Delete("/events/{eventID}", h.DeleteEvent)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.CreateEvent(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "admin access required")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToEventResponse(e))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "event")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToEventResponse(e))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := ListEventsParams{
		Page:       parseIntQuery(r, "page", 1),
		PageSize:   parseIntQuery(r, "page_size", 20),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	events, total, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToEventResponses(events),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	err := h.service.DeleteEvent(r.Context(), chi.URLParam(r, "eventID"), userID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "event")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "admin access required")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	ticket, award, err := h.service.BuyTicket(
		r.Context(),
		userID,
		chi.URLParam(r, "eventID"),
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "event")
		case errors.Is(err, ErrEventClosed):
			core.Conflict(w, ErrEventClosed.Error())
		case errors.Is(err, ErrDuplicateTicket):
			core.JSONError(w, core.ConflictError(ErrDuplicateTicket.Error()))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, TicketResponse{
		ID:           ticket.ID,
		EventID:      ticket.EventID,
		TicketNumber: ticket.TicketNumber,
		CreatedAt:    ticket.CreatedAt,
		XPAwarded:    award.Amount,
		XP:           award.XP,
		Tier:         award.Tier,
		Promoted:     award.Promoted,
	})
}

func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	tickets, err := h.service.MyTickets(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTicketResponses(tickets))
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
