package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/lensloft/gallerybackend/config"
)

const sessionCookieName = "session"

type AuthHandler struct {
	Cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Login verifies admin credentials and issues the session cookie. The
// response does not distinguish a wrong username from a wrong
// password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !h.credentialsValid(req.Username, req.Password) {
		log.Warn().Str("username", req.Username).Msg("Failed login attempt")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.issueToken(req.Username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign session token")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: true})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, authStatusResponse{Authenticated: false})
}

// Status reports whether the request carries a valid session, for the
// admin UI to decide what to render.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, authStatusResponse{
		Authenticated: sessionValid(r, h.Cfg.AuthSecret),
	})
}

func (h *AuthHandler) credentialsValid(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.Cfg.AdminUsername)) == 1

	if h.Cfg.AdminPasswordHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(h.Cfg.AdminPasswordHash), []byte(password))
		return userOK && err == nil
	}
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.Cfg.AdminPassword)) == 1
	return userOK && passOK
}

func (h *AuthHandler) issueToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.Cfg.SessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Cfg.AuthSecret))
}

// sessionValid parses and verifies the session cookie.
func sessionValid(r *http.Request, secret string) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
	return err == nil && token.Valid
}
