package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sylmap/internal/config"
	"sylmap/internal/models"
	"sylmap/internal/repository"
	"sylmap/internal/service"
	"sylmap/internal/validate"
)

type SuggestionHandler struct {
	Suggestions *service.SuggestionService
	Cfg         config.MapConfig
}

func (h *SuggestionHandler) Register(r *gin.Engine) {
	r.POST("/api/suggestions", h.create)

	group := r.Group("/api/suggestions", RequireManage())
	group.GET("", h.listPending)
	group.GET("/:id", h.get)
	group.POST("/:id/approve", h.approve)
	group.POST("/:id/reject", h.reject)
}

type suggestionRequest struct {
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Icon         string     `json:"icon"`
	IconVariant  string     `json:"icon_var"`
	IconColor    string     `json:"icon_color"`
	MarkerColor  string     `json:"marker_color"`
	Type         string     `json:"type"`
	CreateThread bool       `json:"create_thread"`
	ThreadLock   bool       `json:"thread_lock"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// create accepts a visitor-submitted suggestion. Open to any identified
// request; moderation happens on review, not on intake.
func (h *SuggestionHandler) create(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}

	sugg := &models.Suggestion{
		Lat:          req.Lat,
		Lng:          req.Lng,
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		Icon:         req.Icon,
		IconVariant:  req.IconVariant,
		IconColor:    req.IconColor,
		MarkerColor:  req.MarkerColor,
		Type:         req.Type,
		UserID:       actingUser(c),
		Status:       models.SuggestionPending,
		CreateThread: req.CreateThread,
		ThreadLock:   req.ThreadLock,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}

	if err := h.Suggestions.Create(c.Request.Context(), sugg); err != nil {
		if validate.IsValidationError(err) {
			Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, sugg, nil)
}

func (h *SuggestionHandler) listPending(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", h.Cfg.PerPage)

	items, total, err := h.Suggestions.GetPending(c.Request.Context(), page, perPage)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(page, perPage, total))
}

func (h *SuggestionHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "suggestion id required", nil)
		return
	}
	sugg, err := h.Suggestions.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "suggestion not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, sugg, nil)
}

func (h *SuggestionHandler) approve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "suggestion id required", nil)
		return
	}
	if !h.Suggestions.Approve(c.Request.Context(), id, actingUser(c)) {
		Error(c, http.StatusConflict, "suggestion could not be approved", nil)
		return
	}
	Ok(c, map[string]any{"suggestion_id": id, "status": models.SuggestionApproved}, nil)
}

func (h *SuggestionHandler) reject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "suggestion id required", nil)
		return
	}
	if !h.Suggestions.Reject(c.Request.Context(), id, actingUser(c)) {
		Error(c, http.StatusConflict, "suggestion could not be rejected", nil)
		return
	}
	Ok(c, map[string]any{"suggestion_id": id, "status": models.SuggestionRejected}, nil)
}
