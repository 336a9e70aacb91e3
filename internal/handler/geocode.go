package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sylmap/internal/geocode"
)

type GeocodeHandler struct {
	Client *geocode.Client
}

func (h *GeocodeHandler) Register(r *gin.Engine) {
	r.GET("/api/geocode", h.lookup)
}

func (h *GeocodeHandler) lookup(c *gin.Context) {
	if h.Client == nil {
		Error(c, http.StatusServiceUnavailable, "geocoding disabled", nil)
		return
	}
	address := strings.TrimSpace(c.Query("q"))
	if address == "" {
		Error(c, http.StatusBadRequest, "address required", nil)
		return
	}

	result, err := h.Client.Geocode(c.Request.Context(), address)
	if err != nil {
		var limited *geocode.ErrRateLimited
		if errors.As(err, &limited) {
			Error(c, http.StatusTooManyRequests, limited.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if result == nil {
		Error(c, http.StatusNotFound, "no match for address", nil)
		return
	}
	Ok(c, result, nil)
}
