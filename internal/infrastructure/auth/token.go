package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"txhistory-server/internal/domain/transaction"
	"txhistory-server/internal/infrastructure/config"
)

var (
	// ErrInvalidToken トークンが不正または期限切れ
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingSubject トークンにuser_idがない
	ErrMissingSubject = errors.New("missing user_id in token")
)

// IssueToken アカウントに対するHS256トークンを発行
func IssueToken(cfg *config.JWTConfig, account transaction.AccountID, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(cfg.Expiration)

	claims := jwt.MapClaims{
		"user_id": account.String(),
		"iss":     cfg.Issuer,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken トークンを検証し、呼び出し元のアカウントを返す
func ParseToken(cfg *config.JWTConfig, tokenString string) (transaction.AccountID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 署名アルゴリズムの確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", ErrMissingSubject
	}

	account, err := transaction.NewAccountID(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return account, nil
}
