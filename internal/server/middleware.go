package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/logforms/internal/common"
)

const (
	headerRequestID = "X-Request-ID"

	// defaultBodyLimit applies to every route except analyze, whose ceiling
	// follows the upload limit.
	defaultBodyLimit int64 = 1 << 20

	maxRequestIDLength = 128
)

// requestContext stores a request id and a request-scoped logger on the
// request context. A caller-supplied X-Request-ID is reused when sane.
func requestContext(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		logger := base.With("req_id", id)
		ctx := common.WithLogger(common.WithRequestID(c.Request.Context(), id), logger)
		c.Request = c.Request.WithContext(ctx)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// requestLogger logs one line per request once the handler chain is done.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"bytes", c.Writer.Size(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		}

		logger := common.LoggerFromContext(c.Request.Context(), nil)
		switch {
		case status >= 500:
			logger.Error("http.request", attrs...)
		case status >= 400:
			logger.Warn("http.request", attrs...)
		default:
			logger.Info("http.request", attrs...)
		}
	}
}

// originGate rejects cross-origin requests from origins outside the allow
// list with a JSON 403. It is a no-op outside production.
func (s *Server) originGate() gin.HandlerFunc {
	enforce := s.cfg.IsProduction()
	allowed := originSet(s.cfg.HTTP.AllowedOrigins)
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !enforce || origin == "" || sameHost(origin, c.Request.Host) || allowed[normalizeOrigin(origin)] {
			c.Next()
			return
		}
		common.LoggerFromContext(c.Request.Context(), s.logger).Warn("http.origin.rejected", "origin", origin)
		s.fail(c, common.InputError(common.CodeOriginNotAllowed, "origin "+origin+" is not allowed", nil))
	}
}

// corsMiddleware answers preflights and sets the CORS response headers.
// Production mirrors the origin gate's allow list; development allows all.
func corsMiddleware(cfg *common.Config) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", headerRequestID},
		ExposeHeaders: []string{headerRequestID, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.IsProduction() {
		allowed := originSet(cfg.HTTP.AllowedOrigins)
		conf.AllowOriginFunc = func(origin string) bool {
			return allowed[normalizeOrigin(origin)]
		}
	} else {
		conf.AllowAllOrigins = true
	}
	return cors.New(conf)
}

// bodyLimit caps the request body. Declared lengths over the limit are
// refused up front; chunked bodies fail while decoding.
func (s *Server) bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			s.fail(c, tooLarge(limit, nil))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func tooLarge(limit int64, cause error) *common.AppError {
	return common.InputError(common.CodePayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit), cause)
}

func originSet(origins []string) map[string]bool {
	set := make(map[string]bool, len(origins))
	for _, o := range origins {
		if n := normalizeOrigin(o); n != "" {
			set[n] = true
		}
	}
	return set
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host != "" && strings.EqualFold(u.Host, host)
}
