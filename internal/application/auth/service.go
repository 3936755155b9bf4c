package auth

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"txhistory-server/internal/domain/transaction"
	authinfra "txhistory-server/internal/infrastructure/auth"
	"txhistory-server/internal/infrastructure/config"
	otelinfra "txhistory-server/internal/infrastructure/observability/otel"
)

// AuthApplicationService 認証アプリケーションサービス
// 発行したトークンのuser_idが記録時の送信者の証明になる。
type AuthApplicationService struct {
	jwtConfig *config.JWTConfig
	logger    *otelinfra.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAuthApplicationService 新しいAuthApplicationServiceを作成
func NewAuthApplicationService(jwtConfig *config.JWTConfig, logger *otelinfra.Logger) *AuthApplicationService {
	return &AuthApplicationService{
		jwtConfig: jwtConfig,
		logger:    logger,
		tracer:    otel.Tracer("auth-service"),
		now:       time.Now,
	}
}

// GenerateToken アカウントのJWTトークンを生成
func (s *AuthApplicationService) GenerateToken(ctx context.Context, req *GenerateTokenRequest) (*GenerateTokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthApplicationService.GenerateToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("account_id", req.AccountID),
	)

	account, err := transaction.NewAccountID(req.AccountID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn(ctx, "Invalid account for token", map[string]interface{}{
			"account_id": req.AccountID,
		})
		return nil, err
	}

	token, expiresAt, err := authinfra.IssueToken(s.jwtConfig, account, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "Failed to generate token", err, map[string]interface{}{
			"account_id": req.AccountID,
		})
		return nil, err
	}

	s.logger.Info(ctx, "Token generated", map[string]interface{}{
		"account_id": account.String(),
		"expires_at": expiresAt.Unix(),
	})

	return &GenerateTokenResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtConfig.Expiration.Seconds()),
		ExpiresAt: expiresAt,
		TokenType: "Bearer",
	}, nil
}
