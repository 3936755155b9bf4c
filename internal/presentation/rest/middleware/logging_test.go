package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txhistory-server/internal/domain/transaction"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		handler   echo.HandlerFunc
		wantLevel string
		wantCode  int
		wantErr   bool
	}{
		{
			name: "正常系: 成功はINFO",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			},
			wantLevel: "INFO",
			wantCode:  http.StatusOK,
		},
		{
			name: "正常系: 4xxはWARN",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusBadRequest)
			},
			wantLevel: "WARN",
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "正常系: 5xxはERROR",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusServiceUnavailable)
			},
			wantLevel: "ERROR",
			wantCode:  http.StatusServiceUnavailable,
		},
		{
			name: "異常系: ハンドラーのエラーはそのまま返す",
			handler: func(c echo.Context) error {
				return errors.New("boom")
			},
			wantLevel: "ERROR",
			wantCode:  http.StatusInternalServerError,
			wantErr:   true,
		},
		{
			name: "異常系: 未書き込みの認可エラーは403で記録",
			handler: func(c echo.Context) error {
				return transaction.ErrUnauthorized
			},
			wantLevel: "ERROR",
			wantCode:  http.StatusForbidden,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := otelinfra.NewLogger(otelinfra.WithOutput(&buf))

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/api/v1/transactions")

			err := LoggingMiddleware(logger)(tt.handler)(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])

			fields, ok := entry["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, http.MethodPost, fields["method"])
			assert.Equal(t, "/api/v1/transactions", fields["route"])
			assert.Contains(t, fields, "duration_ms")
			assert.Equal(t, float64(tt.wantCode), fields["status_code"])
		})
	}
}
