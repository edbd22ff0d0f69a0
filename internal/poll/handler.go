// AngelaMos | 2026
// handler.go

package poll

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
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/feed", h.Feed)
	})

	r.Route("/polls", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.ListPolls)
		r.Post("/", h.CreatePoll)

		r.Route("/{pollID}", func(r chi.Router) {
			r.Get("/", h.GetPoll)
			r.Delete("/", h.DeletePoll)
			r.Post("/options", h.AddOption)
			r.Get("/results", h.Results)
			r.Post("/votes", h.CastVote)
			r.Get("/comments", h.ListComments)
			r.Post("/comments", h.AddComment)
		})
	})
}

func (h *Handler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.CreatePoll(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrInsufficientTier) {
			core.JSONError(
				w,
				core.InsufficientTierError(progression.CapCreatePoll.RequiredTier),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToPollResponse(p, nil))
}

func (h *Handler) GetPoll(w http.ResponseWriter, r *http.Request) {
	p, options, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "pollID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "poll")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPollResponse(p, options))
}

func (h *Handler) ListPolls(w http.ResponseWriter, r *http.Request) {
	params := ListPollsParams{
		Page:       parseIntQuery(r, "page", 1),
		PageSize:   parseIntQuery(r, "page_size", 20),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	polls, total, err := h.service.ListPolls(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	responses := make([]PollResponse, 0, len(polls))
	for i := range polls {
		options, err := h.service.OptionsFor(r.Context(), polls[i].ID)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		responses = append(responses, ToPollResponse(&polls[i], options))
	}

	core.Paginated(w, responses, params.Page, params.PageSize, total)
}

func (h *Handler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	err := h.service.DeletePoll(r.Context(), chi.URLParam(r, "pollID"), userID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "poll")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, "admin access required")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) AddOption(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req AddOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.AddOption(
		r.Context(),
		chi.URLParam(r, "pollID"),
		userID,
		req.DesignID,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "poll")
		case errors.Is(err, core.ErrInsufficientTier):
			core.JSONError(
				w,
				core.InsufficientTierError(progression.CapManagePollItems.RequiredTier),
			)
		case errors.Is(err, ErrNotPollCreator):
			core.Forbidden(w, ErrNotPollCreator.Error())
		case errors.Is(err, ErrPollClosed):
			core.Conflict(w, ErrPollClosed.Error())
		case errors.Is(err, ErrDesignNotSelectable):
			core.Forbidden(w, ErrDesignNotSelectable.Error())
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("poll option"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, OptionResponse{
		ID:              o.ID,
		DesignID:        o.DesignID,
		DesignTitle:     o.DesignTitle,
		DesignImagePath: o.DesignImagePath,
	})
}

func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	vote, award, err := h.service.CastVote(
		r.Context(),
		userID,
		chi.URLParam(r, "pollID"),
		req.OptionID,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "poll")
		case errors.Is(err, core.ErrInsufficientTier):
			core.JSONError(
				w,
				core.InsufficientTierError(progression.CapVote.RequiredTier),
			)
		case errors.Is(err, ErrPollClosed):
			core.Conflict(w, ErrPollClosed.Error())
		case errors.Is(err, ErrDuplicateVote):
			core.JSONError(w, core.ConflictError(ErrDuplicateVote.Error()))
		case errors.Is(err, ErrOptionNotInPoll):
			core.BadRequest(w, ErrOptionNotInPoll.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, VoteResponse{
		ID:       vote.ID,
		PollID:   vote.PollID,
		OptionID: vote.OptionID,
		Weight:   vote.Weight,
		XP:       award.XP,
		Tier:     award.Tier,
		Promoted: award.Promoted,
	})
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")

	results, err := h.service.Results(r.Context(), pollID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "poll")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToResultsResponse(pollID, results))
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	comment, award, err := h.service.AddComment(
		r.Context(),
		userID,
		chi.URLParam(r, "pollID"),
		req.Body,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "poll")
		case errors.Is(err, ErrPollClosed):
			core.Conflict(w, ErrPollClosed.Error())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, CommentResponse{
		ID:        comment.ID,
		Body:      comment.Body,
		UserID:    comment.UserID,
		Username:  comment.Username,
		CreatedAt: comment.CreatedAt,
		XP:        award.XP,
		Tier:      award.Tier,
		Promoted:  award.Promoted,
	})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "page_size", 20)

	comments, total, err := h.service.ListComments(
		r.Context(),
		chi.URLParam(r, "pollID"),
		page,
		pageSize,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "poll")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	responses := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		responses = append(responses, CommentResponse{
			ID:        c.ID,
			Body:      c.Body,
			UserID:    c.UserID,
			Username:  c.Username,
			CreatedAt: c.CreatedAt,
		})
	}

	core.Paginated(w, responses, page, pageSize, total)
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	params := FeedParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 5),
		Filter:   r.URL.Query().Get("filter"),
	}

	items, total, err := h.service.Feed(
		r.Context(),
		middleware.GetUserID(r.Context()),
		params,
	)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid feed filter")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, items, params.Page, params.PageSize, total)
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
