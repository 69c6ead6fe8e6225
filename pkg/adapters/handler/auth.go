package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/gift-bundle/pkg/auth"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

const stateCookieName = "oauthstate"

type AuthHandler struct {
	provider     ports.OAuthProvider
	users        ports.UserService
	tokens       *auth.TokenManager
	logger       logging.Logger
	frontendURL  string
	isProduction bool
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

func NewAuthHandler(cfg *config.Config, provider ports.OAuthProvider, users ports.UserService, tokens *auth.TokenManager, logger logging.Logger) *AuthHandler {
	return &AuthHandler{
		provider:     provider,
		users:        users,
		tokens:       tokens,
		logger:       logger,
		frontendURL:  cfg.FrontendURL,
		isProduction: cfg.IsProduction(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := h.generateStateOauthCookie(w)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback finishes the Kakao flow. The token is set as a cookie and also
// returned in the body for clients that cannot use cookies.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie(stateCookieName)
	if err != nil || r.FormValue("state") == "" || r.FormValue("state") != oauthState.Value {
		h.logger.Warn("oauth state mismatch", map[string]interface{}{"has_cookie": err == nil})
		writeError(w, h.logger, r, domain.ErrInvalidRequest.Enrich("invalid oauth state"))
		return
	}
	h.clearCookie(w, stateCookieName)

	profile, err := h.provider.FetchProfile(r.Context(), r.FormValue("code"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	user, err := h.users.LoginWithKakao(r.Context(), profile)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login successful", map[string]interface{}{"user_id": user.ID})
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, authCookieName)
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}
