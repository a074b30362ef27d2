// internal/httpserver/routes_admin.go
//
// Admin endpoints.
//   - POST /admin/login   → {password} checked against the bcrypt hash in
//                            ADMIN_PASSWORD_HASH; returns a signed HS256 JWT
//   - POST /admin/turn    → {player} hand the turn to a player   (bearer JWT)
//   - POST /admin/finish  → mark the current game finished       (bearer JWT)
//
// Login is disabled (503) while no admin password hash is configured.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/richjohnson-wwt/nat-wof/internal/game"
)

const adminSubject = "admin"

// ctxAdminKey is the context key for the verified token subject.
type ctxAdminKey struct{}

// mountAdmin registers /admin routes.
func (s *Server) mountAdmin(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handleAdminLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth())
			r.Post("/turn", s.handleSetTurn)
			r.Post("/finish", s.handleFinish)
		})
	})
}

type loginReq struct {
	Password string `json:"password"`
}

type loginRes struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	hash := s.app.Cfg.HTTP.AdminPasswordHash
	if hash == "" {
		writeErr(w, http.StatusServiceUnavailable, "admin_disabled")
		return
	}
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !checkPassword(hash, body.Password) {
		log.Warn().Str("ip", r.RemoteAddr).Msg("admin login failed")
		writeErr(w, http.StatusUnauthorized, "invalid_password")
		return
	}
	tok, exp, err := s.signJWT(adminSubject)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, loginRes{Token: tok, ExpiresAt: exp})
}

type turnReq struct {
	Player string `json:"player"`
}

func (s *Server) handleSetTurn(w http.ResponseWriter, r *http.Request) {
	var body turnReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !game.IsPlayer(body.Player) {
		writeErr(w, http.StatusBadRequest, "unknown_player")
		return
	}
	if err := s.app.State.SetTurn(r.Context(), body.Player); err != nil {
		writeActionErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"turn": body.Player})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	if err := s.app.State.SetField(r.Context(), game.FieldStatus, string(game.StatusFinished)); err != nil {
		writeActionErr(w, r, err)
		return
	}
	by, _ := r.Context().Value(ctxAdminKey{}).(string)
	log.Info().Str("by", by).Msg("game finished by admin")
	writeJSON(w, http.StatusOK, map[string]string{"status": string(game.StatusFinished)})
}

// ------------------------------ JWT ----------------------------------------

// signJWT creates an HS256 JWT for sub that expires after the configured TTL.
func (s *Server) signJWT(sub string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.app.Cfg.HTTP.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.app.Cfg.HTTP.JWTSecret))
	return ss, exp, err
}

// requireAuth enforces a valid admin bearer token.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearer(r)
			if tokenStr == "" {
				writeErr(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.app.Cfg.HTTP.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid || claims.Subject != adminSubject {
				writeErr(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxAdminKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}
