package tracing

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/sandistd/carbon-footprint-app/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "carbon/http"

// GinMiddleware opens a server span per request. Spans are named after the
// matched route and carry the emission scope, record id and dashboard
// selectors when the request has them.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := otel.Tracer(instrumentationName)
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx = withRequestBaggage(ctx)

		ctx, span := tracer.Start(ctx, spanName(c.Request.Method, ""), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		span.SetName(spanName(c.Request.Method, route))
		span.SetAttributes(SafeAttributes(requestAttributes(c, route, status)...)...)

		switch {
		case status >= http.StatusInternalServerError:
			if last := c.Errors.Last(); last != nil {
				if err := SafeError(last.Err); err != nil {
					span.RecordError(err)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		case status >= http.StatusBadRequest:
			if last := c.Errors.Last(); last != nil {
				span.SetAttributes(attribute.String("carbon.error_code", last.Err.Error()))
			}
		}
	}
}

func spanName(method, route string) string {
	if route == "" {
		route = "unmatched"
	}
	return strings.ToUpper(method) + " " + route
}

func withRequestBaggage(ctx context.Context) context.Context {
	requestID := obscontext.RequestIDFromContext(ctx)
	if requestID == "" {
		return ctx
	}
	member, err := baggage.NewMember("request_id", requestID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.FromContext(ctx).SetMember(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

func requestAttributes(c *gin.Context, route string, status int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	}
	ctx := c.Request.Context()
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, attribute.String("request_id", requestID))
	}
	if actor := obscontext.ActorFromContext(ctx); actor != "" {
		attrs = append(attrs, attribute.String("enduser.id", actor))
	}
	if s := c.Param("scope"); s != "" {
		attrs = append(attrs, attribute.String("carbon.scope", s))
	}
	if id := c.Param("id"); id != "" {
		attrs = append(attrs, attribute.String("carbon.entity_id", id))
	}
	if strings.HasPrefix(route, "/api/dashboard") {
		if s := c.Query("scope"); s != "" {
			attrs = append(attrs, attribute.String("carbon.dashboard.scope", s))
		}
		if y := c.Query("year"); y != "" {
			attrs = append(attrs, attribute.String("carbon.dashboard.year", y))
		}
		attrs = append(attrs, attribute.Bool("carbon.dashboard.department_filter", c.Query("department") != ""))
	}
	return attrs
}
