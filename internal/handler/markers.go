package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sylmap/internal/models"
	"sylmap/internal/repository"
	"sylmap/internal/service"
	"sylmap/internal/validate"
)

type MarkerHandler struct {
	Markers *service.MarkerService
	Threads *service.ThreadSyncService
}

func (h *MarkerHandler) Register(r *gin.Engine) {
	r.GET("/api/map", h.mapData)
	r.GET("/api/map/events", h.events)

	group := r.Group("/api/markers", RequireManage())
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.POST("", h.create)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

// mapData is the public map payload: active markers escaped for display,
// deduplicated marker types and, for managers, the raw collection.
func (h *MarkerHandler) mapData(c *gin.Context) {
	typeFilter := strings.TrimSpace(c.Query("type"))
	manage := canManage(c)

	var markers []models.Marker
	var err error
	if manage {
		// Managers see inactive markers too, so the raw collection is
		// loaded and any type filter applied here.
		markers, err = h.Markers.GetAllUnbounded(c.Request.Context())
		if err == nil && typeFilter != "" {
			filtered := markers[:0]
			for _, m := range markers {
				if m.Type == typeFilter {
					filtered = append(filtered, m)
				}
			}
			markers = filtered
		}
	} else {
		markers, err = h.Markers.GetActive(c.Request.Context(), typeFilter)
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, h.Markers.ProcessForDisplay(markers, manage), nil)
}

func (h *MarkerHandler) events(c *gin.Context) {
	limit := intQuery(c, "limit", 0)
	events, err := h.Markers.GetEventMarkers(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, events, nil)
}

func (h *MarkerHandler) list(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", h.Markers.Cfg.PerPage)

	items, total, err := h.Markers.GetAll(c.Request.Context(), page, perPage)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(page, perPage, total))
}

func (h *MarkerHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "marker id required", nil)
		return
	}
	marker, err := h.Markers.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "marker not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, marker, nil)
}

type markerRequest struct {
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Icon         string     `json:"icon"`
	IconVariant  string     `json:"icon_var"`
	IconColor    string     `json:"icon_color"`
	MarkerColor  string     `json:"marker_color"`
	Type         string     `json:"type"`
	Active       *bool      `json:"active"`
	CreateThread bool       `json:"create_thread"`
	ThreadLock   bool       `json:"thread_lock"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

func (h *MarkerHandler) create(c *gin.Context) {
	var req markerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}

	marker := &models.Marker{
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
		Active:       true,
		CreateThread: req.CreateThread,
		ThreadLock:   req.ThreadLock,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if req.Active != nil {
		marker.Active = *req.Active
	}

	if err := h.Markers.Create(c.Request.Context(), marker); err != nil {
		if validate.IsValidationError(err) {
			Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	if marker.CreateThread && h.Threads != nil {
		h.Threads.CreateThreadForMarker(c.Request.Context(), marker, "")
	}
	Ok(c, marker, nil)
}

func (h *MarkerHandler) update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "marker id required", nil)
		return
	}
	var req markerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}

	data := service.MarkerUpdate{
		Lat:          req.Lat,
		Lng:          req.Lng,
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		Icon:         req.Icon,
		IconVariant:  req.IconVariant,
		IconColor:    req.IconColor,
		MarkerColor:  req.MarkerColor,
		Type:         req.Type,
		Active:       true,
		CreateThread: req.CreateThread,
		ThreadLock:   req.ThreadLock,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if req.Active != nil {
		data.Active = *req.Active
	}

	marker := h.Markers.Update(c.Request.Context(), id, data, actingUser(c))
	if marker == nil {
		Error(c, http.StatusUnprocessableEntity, "marker update failed", nil)
		return
	}

	if h.Threads != nil {
		h.Threads.HandleMarkerThreadUpdates(c.Request.Context(), marker)
	}
	Ok(c, marker, nil)
}

func (h *MarkerHandler) delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "marker id required", nil)
		return
	}

	marker, err := h.Markers.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "marker not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	// Retitle the mirrored thread before the marker row disappears.
	if h.Threads != nil && marker.ThreadID != nil {
		h.Threads.MarkThreadAsDeleted(c.Request.Context(), marker)
	}

	if !h.Markers.Delete(c.Request.Context(), id) {
		Error(c, http.StatusBadGateway, "marker delete failed", nil)
		return
	}
	Ok(c, map[string]any{"marker_id": id}, nil)
}
