package interceptor

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"txhistory-server/internal/domain/transaction"
	authinfra "txhistory-server/internal/infrastructure/auth"
	"txhistory-server/internal/infrastructure/config"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/txhistory.v1.TransactionHistoryService/GetTotalCount"}

func newTestLogger() *otelinfra.Logger {
	return otelinfra.NewLogger(otelinfra.WithOutput(io.Discard))
}

func TestAuthInterceptor(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "txhistory-server"}
	token, _, err := authinfra.IssueToken(cfg, "alice", time.Now())
	require.NoError(t, err)
	otherToken, _, err := authinfra.IssueToken(&config.JWTConfig{Secret: "other", Expiration: time.Hour, Issuer: cfg.Issuer}, "alice", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name     string
		md       metadata.MD
		wantCode codes.Code
	}{
		{name: "正常系: 有効なトークン", md: metadata.Pairs("authorization", "Bearer "+token), wantCode: codes.OK},
		{name: "異常系: メタデータなし", md: nil, wantCode: codes.Unauthenticated},
		{name: "異常系: authorizationなし", md: metadata.MD{}, wantCode: codes.Unauthenticated},
		{name: "異常系: Bearer形式ではない", md: metadata.Pairs("authorization", token), wantCode: codes.Unauthenticated},
		{name: "異常系: 署名鍵が異なる", md: metadata.Pairs("authorization", "Bearer "+otherToken), wantCode: codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}

			var principal transaction.AccountID
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				principal, _ = authinfra.PrincipalFrom(ctx)
				return "ok", nil
			}

			_, err := AuthInterceptor(cfg, newTestLogger())(ctx, nil, testInfo, handler)
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, transaction.AccountID("alice"), principal)
			}
		})
	}
}

func TestAPIKeyInterceptor(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.AdminAPIConfig
		md       metadata.MD
		peerIP   string
		wantCode codes.Code
	}{
		{
			name:     "正常系: 有効なAPIキー",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "admin-key"},
			md:       metadata.Pairs("x-api-key", "admin-key"),
			wantCode: codes.OK,
		},
		{
			name:     "異常系: 管理APIが無効",
			cfg:      &config.AdminAPIConfig{Enabled: false, APIKey: "admin-key"},
			md:       metadata.Pairs("x-api-key", "admin-key"),
			wantCode: codes.PermissionDenied,
		},
		{
			name:     "異常系: APIキーなし",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "admin-key"},
			md:       metadata.MD{},
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "異常系: APIキーが違う",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "admin-key"},
			md:       metadata.Pairs("x-api-key", "wrong"),
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "正常系: 転送元IPが許可リスト内",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "admin-key", AllowedIPs: []string{"10.0.0.0/8"}},
			md:       metadata.Pairs("x-api-key", "admin-key", "x-forwarded-for", "10.1.2.3, 192.0.2.1"),
			wantCode: codes.OK,
		},
		{
			name:     "正常系: 接続元IPが許可リスト内",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "admin-key", AllowedIPs: []string{"127.0.0.1"}},
			md:       metadata.Pairs("x-api-key", "admin-key"),
			peerIP:   "127.0.0.1",
			wantCode: codes.OK,
		},
		{
			name:     "異常系: 接続元IPが許可リスト外",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "admin-key", AllowedIPs: []string{"127.0.0.1"}},
			md:       metadata.Pairs("x-api-key", "admin-key"),
			peerIP:   "203.0.113.9",
			wantCode: codes.PermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), tt.md)
			if tt.peerIP != "" {
				ctx = peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP(tt.peerIP), Port: 50000}})
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return "ok", nil
			}

			_, err := APIKeyInterceptor(tt.cfg, newTestLogger())(ctx, nil, testInfo, handler)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestForMethods(t *testing.T) {
	deny := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return nil, status.Error(codes.PermissionDenied, "denied")
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	}
	selective := ForMethods(deny, "/svc/Admin")

	_, err := selective(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Admin"}, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	resp, err := selective(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Public"}, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestLoggingInterceptor(t *testing.T) {
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)
	i := LoggingInterceptor(newTestLogger(), metrics)

	resp, err := i(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = i(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
