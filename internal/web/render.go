package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// handleIndex serves the control page, pre-filled with the current snapshot.
func (s *Server) handleIndex(c *gin.Context) {
	var buf bytes.Buffer

	if err := indexTmpl.Execute(&buf, s.tracker.Snapshot()); err != nil {
		s.logger.Error().Err(err).Msg("render index page")
		c.String(http.StatusInternalServerError, fmt.Sprintf("render index page: %v", err))

		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
