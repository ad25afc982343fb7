package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/ingest"
)

// analyze runs one document through gate, extraction and envelope validation.
func (s *Server) analyze(c *gin.Context) {
	var req ingest.Submission
	if !s.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	start := time.Now()
	env, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}

	common.LoggerFromContext(ctx, s.logger).Info("analyze.ok",
		"mime", req.MimeType,
		"fields", len(env.DataSchema.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	c.JSON(http.StatusOK, env)
}
