package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCSP   string
		wantHSTS  bool
		wantCache string
	}{
		{
			name:      "正常系: APIパス",
			target:    "/api/v1/me/transactions",
			wantCSP:   apiCSP,
			wantCache: "no-store",
		},
		{
			name:    "正常系: Swagger UI",
			target:  "/swagger/index.html",
			wantCSP: swaggerCSP,
		},
		{
			name:    "正常系: OpenAPI定義",
			target:  "/openapi.yaml",
			wantCSP: swaggerCSP,
		},
		{
			name:      "正常系: HTTPSではHSTSを付与",
			target:    "https://example.com/api/v1/transactions/count",
			wantCSP:   apiCSP,
			wantHSTS:  true,
			wantCache: "no-store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := SecurityHeadersMiddleware()(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})
			require.NoError(t, handler(c))

			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
			assert.Equal(t, tt.wantCSP, rec.Header().Get("Content-Security-Policy"))
			assert.Equal(t, tt.wantCache, rec.Header().Get("Cache-Control"))
			if tt.wantHSTS {
				assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
			} else {
				assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
			}
		})
	}
}
