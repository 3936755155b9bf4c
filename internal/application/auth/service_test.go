package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txhistory-server/internal/domain/transaction"
	authinfra "txhistory-server/internal/infrastructure/auth"
	"txhistory-server/internal/infrastructure/config"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

func TestAuthApplicationService_GenerateToken(t *testing.T) {
	jwtConfig := &config.JWTConfig{
		Secret:     "test-secret-key",
		Issuer:     "test-issuer",
		Expiration: 24 * time.Hour,
	}

	tests := []struct {
		name      string
		req       *GenerateTokenRequest
		wantError error
	}{
		{
			name: "正常系: トークンを生成",
			req:  &GenerateTokenRequest{AccountID: "alice"},
		},
		{
			name:      "異常系: アカウントが空",
			req:       &GenerateTokenRequest{AccountID: ""},
			wantError: transaction.ErrInvalidAccountID,
		},
		{
			name:      "異常系: アカウントに不正な文字",
			req:       &GenerateTokenRequest{AccountID: "alice/bob"},
			wantError: transaction.ErrInvalidAccountID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthApplicationService(jwtConfig, otelinfra.NewLogger(otelinfra.WithOutput(io.Discard)))

			got, err := svc.GenerateToken(context.Background(), tt.req)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(86400), got.ExpiresIn) // 24時間 = 86400秒
			assert.Equal(t, "Bearer", got.TokenType)

			// 発行したトークンで本人として認証できる
			account, err := authinfra.ParseToken(jwtConfig, got.Token)
			require.NoError(t, err)
			assert.Equal(t, transaction.AccountID(tt.req.AccountID), account)
		})
	}
}
