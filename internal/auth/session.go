// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// The server is the sole source of identity: a player is whatever session id
// the transport assigned on first connect. The id travels in a signed cookie
// so a reconnecting client keeps its seat; keys are generated at boot, so
// sessions do not outlive the process (nothing here persists).

const CookieName = "agonia_session"

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
)

// Init generates a fresh ed25519 key pair for signing session tokens.
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate session key pair: %w", err)
	}
	return nil
}

// createToken signs a session token with "sub" = playerID. Sessions carry no
// expiry: they live exactly as long as the process and its keys do.
func createToken(playerID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{"sub": playerID.String()}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// parseToken verifies a session token and returns the player id.
func parseToken(tokenString string) (uuid.UUID, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("session token parse error: %w", err)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return uuid.Nil, fmt.Errorf("invalid session token")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing sub in session token")
	}
	return uuid.Parse(sub)
}

// EnsureSession returns the caller's stable player id, minting a fresh
// session (and setting the cookie) when none is presented or the token does
// not verify.
func EnsureSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if playerID, err := parseToken(cookie.Value); err == nil {
			return playerID, nil
		}
	}
	playerID, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to mint session id: %w", err)
	}
	token, err := createToken(playerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return playerID, nil
}
