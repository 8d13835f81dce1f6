package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
	"github.com/agrocean/console/internal/core/service"
)

// PageHandler answers guarded full-page loads. With a static directory it
// serves the single page app's index; otherwise a JSON page descriptor.
type PageHandler struct {
	staticDir  string
	identities ports.IdentitySource
}

func NewPageHandler(staticDir string, identities ports.IdentitySource) *PageHandler {
	return &PageHandler{staticDir: staticDir, identities: identities}
}

type pageResponse struct {
	Path  string           `json:"path"`
	Title string           `json:"title"`
	User  *domain.Identity `json:"user"`
}

func (h *PageHandler) Serve(c echo.Context) error {
	if h.staticDir != "" {
		return c.File(filepath.Join(h.staticDir, "index.html"))
	}

	d, _ := c.Get("decision").(service.Decision)
	return c.JSON(http.StatusOK, pageResponse{
		Path:  d.Path,
		Title: d.Title,
		User:  h.identities.Current(),
	})
}
