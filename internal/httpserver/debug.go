package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// debugRequested reports whether the query asks for a debug response.
func debugRequested(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("debug")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// debugAllowed reports whether r gets the debug view. With a secret
// configured the caller must present a bearer token carrying debug=true;
// anything else silently yields the normal response.
func (s *Server) debugAllowed(r *http.Request) bool {
	if !debugRequested(r) {
		return false
	}
	if s.cfg.DebugTokenSecret == "" {
		return s.cfg.OpenDebug
	}

	raw := r.Header.Get("Authorization")
	if !strings.HasPrefix(raw, "Bearer ") {
		return false
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(strings.TrimPrefix(raw, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.DebugTokenSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		log.Debug().Err(err).Msg("debug token rejected")
		return false
	}
	ok, _ := claims["debug"].(bool)
	return ok
}

// SignDebugToken issues an HS256 token that unlocks debug responses for ttl.
func SignDebugToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"debug": true,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return t.SignedString([]byte(secret))
}
