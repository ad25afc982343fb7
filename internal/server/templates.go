package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/logforms/internal/templating"
)

// renderTemplate fills a template's placeholders with values. HTML templates
// are sanitized again since the caller may have edited them.
func (s *Server) renderTemplate(c *gin.Context) {
	var req renderRequest
	if !s.bind(c, &req) {
		return
	}
	tpl := req.Template
	if req.Format == templating.FormatHTML {
		tpl = templating.SanitizeHTML(tpl)
	}
	c.JSON(http.StatusOK, gin.H{"rendered": templating.Render(tpl, req.Format, req.Values)})
}
