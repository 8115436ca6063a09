package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestGinMiddlewareNamesSpanAfterRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := recordSpans(t)

	r := gin.New()
	r.Use(GinMiddleware())
	r.POST("/api/emissions/:scope", func(c *gin.Context) {
		_ = c.Error(errors.New("invalid_activity_value"))
		c.AbortWithStatus(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/emissions/scope_2", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "POST /api/emissions/:scope", span.Name())
	assert.NotEqual(t, codes.Error, span.Status().Code)

	scope, ok := attrValue(span.Attributes(), "carbon.scope")
	require.True(t, ok)
	assert.Equal(t, "scope_2", scope.AsString())

	code, ok := attrValue(span.Attributes(), "carbon.error_code")
	require.True(t, ok)
	assert.Equal(t, "invalid_activity_value", code.AsString())
}

func TestGinMiddlewareMarksServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := recordSpans(t)

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/dashboard", func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused (dial tcp 10.0.0.1:5432)"))
		c.AbortWithStatus(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard?scope=scope_1&year=2025", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)

	year, ok := attrValue(span.Attributes(), "carbon.dashboard.year")
	require.True(t, ok)
	assert.Equal(t, "2025", year.AsString())
	dept, ok := attrValue(span.Attributes(), "carbon.dashboard.department_filter")
	require.True(t, ok)
	assert.False(t, dept.AsBool())

	require.Len(t, span.Events(), 1)
	msg, ok := attrValue(span.Events()[0].Attributes, "exception.message")
	require.True(t, ok)
	assert.Equal(t, "connection refused", msg.AsString())
}

func TestGinMiddlewareUnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := recordSpans(t)

	r := gin.New()
	r.Use(GinMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET unmatched", spans[0].Name())
}
