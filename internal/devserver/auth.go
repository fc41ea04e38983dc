package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the access token claims. The subject is the account email.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// currentEmail returns the email of the authenticated account.
func currentEmail(ctx context.Context) string {
	email, _ := ctx.Value(ctxKey{}).(string)
	return email
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			errorResponse(w, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}
		claims, err := s.parseToken(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			}
			s.log.Debug("Rejected token", zap.Error(err))
			errorResponse(w, http.StatusUnauthorized, msg)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken extracts the token from the Authorization header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) issueToken(a *account) (string, error) {
	now := s.now()
	claims := Claims{
		Role: a.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// HashPassword hashes the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash checks if the password matches the hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
