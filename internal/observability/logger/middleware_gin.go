package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/sandistd/carbon-footprint-app/internal/observability/context"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderActor     = "X-User-Id"

	requestIDKey = "request_id"
)

// MiddlewareConfig controls request logging.
type MiddlewareConfig struct {
	// Logger defaults to the global logger.
	Logger *zap.Logger
	// Debug adds the raw error text to failed requests.
	Debug bool
	// ErrorClassifier turns the last handler error into a type and a code.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware assigns each request an id, stores the id and the caller in
// the request context and writes one access log line when the request ends.
// Probes log at debug level.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := obscontext.WithRequestID(c.Request.Context(), requestID(c))
		if actor := strings.TrimSpace(c.GetHeader(HeaderActor)); actor != "" {
			ctx = obscontext.WithActor(ctx, actor)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := append(accessFields(c, route, time.Since(start)), carbonFields(c, route)...)
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, errorFields(cfg, last.Err)...)
		}

		base := cfg.Logger
		if base == nil {
			base = zap.L()
		}
		write(WithContext(c.Request.Context(), base), route, c.Writer.Status(), fields)
	}
}

// requestID reuses the caller's X-Request-Id or mints a new one, and echoes
// it on the response.
func requestID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(HeaderRequestID, id)
	return id
}

func accessFields(c *gin.Context, route string, elapsed time.Duration) []zap.Field {
	in := c.Request.ContentLength
	if in < 0 {
		in = 0
	}
	out := c.Writer.Size()
	if out < 0 {
		out = 0
	}
	return []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("route", route),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", elapsed),
		zap.Int64("bytes_in", in),
		zap.Int("bytes_out", out),
	}
}

// carbonFields adds the emission scope and entity id of the route, and the
// report selectors for dashboard requests.
func carbonFields(c *gin.Context, route string) []zap.Field {
	var fields []zap.Field
	if s := strings.TrimSpace(c.Param("scope")); s != "" {
		fields = append(fields, zap.String("scope", s))
	}
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		fields = append(fields, zap.String("entity_id", id))
	}
	if strings.HasPrefix(route, "/api/dashboard") {
		for _, key := range []string{"scope", "year", "department"} {
			if v := strings.TrimSpace(c.Query(key)); v != "" {
				fields = append(fields, zap.String("report_"+key, v))
			}
		}
	}
	return fields
}

func errorFields(cfg MiddlewareConfig, err error) []zap.Field {
	var errType, code string
	if cfg.ErrorClassifier != nil {
		errType, code = cfg.ErrorClassifier(err)
	}
	fields := []zap.Field{
		zap.String("error_type", errType),
		zap.String("error_code", code),
	}
	if cfg.Debug {
		fields = append(fields, zap.String("error_detail", err.Error()))
	}
	return fields
}

func write(log *zap.Logger, route string, status int, fields []zap.Field) {
	const msg = "http request"
	switch {
	case route == "/health" || route == "/metrics":
		log.Debug(msg, fields...)
	case status >= http.StatusInternalServerError:
		log.Error(msg, fields...)
	case status >= http.StatusBadRequest:
		log.Warn(msg, fields...)
	default:
		log.Info(msg, fields...)
	}
}
