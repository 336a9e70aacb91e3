package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sylmap/internal/mapdata"
	"sylmap/internal/repository"
	"sylmap/internal/validate"
)

// maxImportSize caps an uploaded import file at 10 MiB.
const maxImportSize = 10 << 20

type ImportExportHandler struct {
	Repo     repository.Repository
	Importer *mapdata.Importer
}

func (h *ImportExportHandler) Register(r *gin.Engine) {
	group := r.Group("/api/data", RequireManage())
	group.GET("/export", h.export)
	group.POST("/import", h.importData)
	group.GET("/imports", h.listRuns)
}

// export streams the full dataset as a downloadable file in the requested
// format, json by default.
func (h *ImportExportHandler) export(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = mapdata.FormatJSON
	}
	if format != mapdata.FormatJSON && format != mapdata.FormatScript {
		Error(c, http.StatusBadRequest, "unsupported export format", nil)
		return
	}

	markers, err := h.Repo.ListAllMarkers(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	suggestions, err := h.Repo.ListAllSuggestions(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	now := time.Now()
	var body []byte
	if format == mapdata.FormatScript {
		body = []byte(mapdata.ExportScript(markers, suggestions, now))
	} else {
		body, err = mapdata.ExportJSON(markers, suggestions)
		if err != nil {
			Error(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}
	}

	c.Header("Content-Disposition", `attachment; filename="`+mapdata.ExportFilename(format, now)+`"`)
	c.Data(http.StatusOK, mapdata.ContentType(format), body)
}

// importData accepts a previously exported file as a multipart upload. The
// format is decided by extension; only .json and .sql are accepted.
func (h *ImportExportHandler) importData(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, "import file required", nil)
		return
	}
	if file.Size > maxImportSize {
		Error(c, http.StatusRequestEntityTooLarge, "import file too large", nil)
		return
	}

	var format string
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".json":
		format = mapdata.FormatJSON
	case ".sql":
		format = mapdata.FormatScript
	default:
		Error(c, http.StatusBadRequest, "only .json and .sql files can be imported", nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		Error(c, http.StatusBadRequest, "import file unreadable", nil)
		return
	}
	defer src.Close()
	content, err := io.ReadAll(io.LimitReader(src, maxImportSize+1))
	if err != nil {
		Error(c, http.StatusBadRequest, "import file unreadable", nil)
		return
	}

	var data *mapdata.Data
	if format == mapdata.FormatJSON {
		data, err = mapdata.ParseJSON(content)
		if err != nil {
			Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
	} else {
		data = mapdata.ParseScript(string(content))
	}

	result, err := h.Importer.Import(c.Request.Context(), data, mapdata.RunInfo{
		Filename: filepath.Base(file.Filename),
		Format:   format,
		UserID:   actingUser(c),
	})
	if err != nil {
		if validate.IsValidationError(err) {
			Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

func (h *ImportExportHandler) listRuns(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	runs, err := h.Repo.ListImportRuns(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, runs, nil)
}
