package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/services"
)

// RefreshTokenCookie is the cookie holding the refresh token.
const RefreshTokenCookie = "refreshToken"

// UserHandler implements the account, session and channel endpoints.
type UserHandler struct {
	Accounts     AccountService
	Views        ViewReader
	Uploads      Uploads
	SecureCookie bool
}

type sessionResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Register handles POST /users/register.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	f, err := h.Uploads.parse(w, r, "avatar", "coverImage")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.cleanup(r)

	user, err := h.Accounts.Register(r.Context(), services.RegisterInput{
		FullName:   f.value("fullName"),
		Email:      f.value("email"),
		Username:   f.value("username"),
		Password:   f.value("password"),
		AvatarPath: f.file("avatar"),
		CoverPath:  f.file("coverImage"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}

	user, tokens, err := h.Accounts.Login(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setSession(w, tokens)
	respond(r.Context(), w, http.StatusOK, sessionResponse{
		User: user, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken,
	}, "user logged in successfully")
}

// Logout handles POST /users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	if err := h.Accounts.Logout(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}
	h.clearSession(w)
	respond(r.Context(), w, http.StatusOK, struct{}{}, "user logged out")
}

// Refresh handles POST /users/refresh. The token comes from the cookie or the JSON body.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeJSON(r, &body, true); err != nil {
			respondError(w, r, err)
			return
		}
		token = body.RefreshToken
	}

	user, tokens, err := h.Accounts.Refresh(r.Context(), token)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setSession(w, tokens)
	respond(r.Context(), w, http.StatusOK, sessionResponse{
		User: user, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken,
	}, "access token refreshed")
}

// ChangePassword handles PUT /users/edit-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in services.ChangePasswordInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	userID, _ := currentUser(r)
	if err := h.Accounts.ChangePassword(r.Context(), userID, in); err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, struct{}{}, "password changed successfully")
}

// Me handles GET /users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	user, err := h.Accounts.Me(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, user, "current user fetched")
}

// UpdateAccount handles PUT /users/edit.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	f, err := h.Uploads.parse(w, r, "avatar", "coverImage")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.cleanup(r)

	userID, _ := currentUser(r)
	user, err := h.Accounts.UpdateAccount(r.Context(), userID, services.UpdateAccountInput{
		FullName:   f.value("fullName"),
		Email:      f.value("email"),
		AvatarPath: f.file("avatar"),
		CoverPath:  f.file("coverImage"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, user, "account details updated")
}

// Channel handles GET /users/c/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Views.ChannelProfile(r.Context(), strings.ToLower(chi.URLParam(r, "username")), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, profile, "channel fetched")
}

// History handles GET /users/history.
func (h UserHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	history, err := h.Views.WatchHistory(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, history, "watch history fetched")
}

func (h UserHandler) setSession(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func (h UserHandler) clearSession(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := h.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h UserHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
