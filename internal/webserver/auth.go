package webserver

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenTTL = 15 * time.Minute

// IssueAccessToken creates a signed HS256 JWT for the given username.
func IssueAccessToken(secret, username string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken parses and validates a JWT, returning the subject (username).
func ValidateAccessToken(secret, tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

// GenerateRefreshToken returns a cryptographically random 32-byte hex string.
func GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *Server) refreshTokenTTL() time.Duration {
	if d, err := time.ParseDuration(s.cfg.Auth.RefreshTokenTTL); err == nil && d > 0 {
		return d
	}
	return 168 * time.Hour
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	acc, err := s.store.GetAccountByUsername(body.Username)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(body.Password)) != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	access, err := IssueAccessToken(s.cfg.Auth.JWTSecret, acc.Username, accessTokenTTL)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	refresh, err := GenerateRefreshToken()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := s.store.SaveRefreshToken(refresh, acc.ID, time.Now().Add(s.refreshTokenTTL())); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	s.logger.Info("webserver: login", "user", acc.Username)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	rt, err := s.store.GetRefreshToken(body.RefreshToken)
	if err != nil || time.Now().After(rt.ExpiresAt) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	acc, err := s.store.GetAccountByID(rt.AccountID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Rotate: the presented token is single-use.
	if err := s.store.DeleteRefreshToken(rt.Token); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	access, err := IssueAccessToken(s.cfg.Auth.JWTSecret, acc.Username, accessTokenTTL)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	refresh, err := GenerateRefreshToken()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := s.store.SaveRefreshToken(refresh, acc.ID, time.Now().Add(s.refreshTokenTTL())); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := s.store.DeleteRefreshToken(body.RefreshToken); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.WriteHeader(204)
}
