package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"txhistory-server/internal/domain/transaction"
)

func newSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) attribute.Value {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestTracingMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    echo.HandlerFunc
		wantStatus otelcodes.Code
		wantCode   int64
		wantErr    bool
	}{
		{
			name: "正常系: 成功リクエスト",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusCreated)
			},
			wantStatus: otelcodes.Unset,
			wantCode:   http.StatusCreated,
		},
		{
			name: "正常系: 4xxはエラーにしない",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusBadRequest)
			},
			wantStatus: otelcodes.Unset,
			wantCode:   http.StatusBadRequest,
		},
		{
			name: "異常系: 5xxはエラー",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusInternalServerError)
			},
			wantStatus: otelcodes.Error,
			wantCode:   http.StatusInternalServerError,
		},
		{
			name: "異常系: ハンドラーエラーを記録",
			handler: func(c echo.Context) error {
				return errors.New("boom")
			},
			wantStatus: otelcodes.Error,
			wantCode:   http.StatusInternalServerError,
			wantErr:    true,
		},
		{
			name: "異常系: 未書き込みのドメインエラーは変換後のステータス",
			handler: func(c echo.Context) error {
				return fmt.Errorf("record: %w", transaction.ErrInvalidAmount)
			},
			wantStatus: otelcodes.Error,
			wantCode:   http.StatusBadRequest,
			wantErr:    true,
		},
		{
			name: "異常系: 未書き込みのHTTPエラーはそのコード",
			handler: func(c echo.Context) error {
				return echo.ErrStatusRequestEntityTooLarge
			},
			wantStatus: otelcodes.Error,
			wantCode:   http.StatusRequestEntityTooLarge,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := newSpanRecorder(t)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
			req.Header.Set("User-Agent", "test-agent")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/api/v1/transactions")

			err := TracingMiddleware("test")(tt.handler)(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, "POST /api/v1/transactions", span.Name())
			assert.Equal(t, trace.SpanKindServer, span.SpanKind())
			assert.Equal(t, tt.wantStatus, span.Status().Code)
			assert.Equal(t, tt.wantCode, spanAttr(span, "http.response.status_code").AsInt64())
			assert.Equal(t, "test-agent", spanAttr(span, "user_agent.original").AsString())
		})
	}
}

func TestTracingMiddleware_ExtractsTraceContext(t *testing.T) {
	recorder := newSpanRecorder(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/health")

	var inner trace.SpanContext
	handler := TracingMiddleware("test")(func(c echo.Context) error {
		inner = trace.SpanContextFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", inner.TraceID().String())
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}
