package handler

// GenerateTokenResponse トークン生成レスポンス
// @Description トークン生成レスポンス
type GenerateTokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJ1c2VyX2lkIjoiYWxpY2UifQ.signature"`
	ExpiresIn int    `json:"expires_in" example:"86400"`
	ExpiresAt string `json:"expires_at" example:"2024-01-02T12:00:00Z"`
	TokenType string `json:"token_type" example:"Bearer"`
}

// ErrorResponse エラーレスポンス
// @Description エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_amount"`
	Message string `json:"message" example:"invalid amount"`
}
