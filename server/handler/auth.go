package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier は接続トークンの発行と検証を行います。
// シークレットが空の場合は認証なし（開発用）として全接続を通します。
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

func (v *TokenVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Issue は接続用の署名付きトークンを発行します。
func (v *TokenVerifier) Issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify はトークンの署名と有効期限を検証します。
func (v *TokenVerifier) Verify(tokenString string) error {
	if !v.Enabled() {
		return nil
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// AuthHandler は /auth でwebsocket接続用トークンを払い出します。
type AuthHandler struct {
	verifier *TokenVerifier
}

func NewAuthHandler(verifier *TokenVerifier) *AuthHandler {
	return &AuthHandler{verifier: verifier}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token, err := h.verifier.Issue()
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue token", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"token": token}); err != nil {
		slog.ErrorContext(ctx, "failed to write token response", "err", err)
	}
}
