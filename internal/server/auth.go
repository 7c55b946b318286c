package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"docsum/internal/auth"
	"docsum/internal/domain"
)

const (
	msgInvalidRequest     = "Invalid request body"
	msgMissingCredentials = "Email and password are required"
	msgInvalidCredentials = "Invalid email or password"
	msgSignInFailed       = "Failed to sign in"
	msgGoogleDisabled     = "Google sign-in is not configured"
	msgInvalidState       = "Invalid OAuth state"
	msgMissingCode        = "Missing authorization code"
	msgGoogleFailed       = "Failed to sign in with Google"
	msgUnverifiedEmail    = "Google account email is not verified"
	msgAccountNotLinked   = "This email is already registered with another sign-in method"
)

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	User *sessionUser `json:"user,omitempty"`
}

func newSessionResponse(u *domain.User) sessionResponse {
	return sessionResponse{User: &sessionUser{ID: u.ID, Email: u.Email, Name: u.Name}}
}

func (s *Server) handleCredentialsSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	user, token, err := s.auth.SignInWithCredentials(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			s.writeError(w, r, http.StatusBadRequest, msgMissingCredentials)
		case errors.Is(err, auth.ErrInvalidCredentials):
			s.writeError(w, r, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			s.log.ErrorContext(ctx, "Failed to sign in with credentials",
				"error", err)

			s.writeError(w, r, http.StatusInternalServerError, msgSignInFailed)
		}
		return
	}

	auth.SetSessionCookie(w, token, s.auth.SessionTTL(), s.opts.SecureCookies)
	s.writeJSON(w, r, http.StatusOK, newSessionResponse(user))
}

func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		s.writeError(w, r, http.StatusNotFound, msgGoogleDisabled)
		return
	}

	state, err := auth.NewState()
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to create OAuth state",
			"error", err)

		s.writeError(w, r, http.StatusInternalServerError, msgSignInFailed)
		return
	}

	auth.SetStateCookie(w, state, s.opts.SecureCookies)
	http.Redirect(w, r, s.google.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.google == nil {
		s.writeError(w, r, http.StatusNotFound, msgGoogleDisabled)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(auth.StateCookieName)
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		s.writeError(w, r, http.StatusBadRequest, msgInvalidState)
		return
	}
	auth.ClearStateCookie(w, s.opts.SecureCookies)

	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, r, http.StatusBadRequest, msgMissingCode)
		return
	}

	profile, err := s.google.FetchUser(ctx, code)
	if errors.Is(err, auth.ErrUnverifiedEmail) {
		s.writeError(w, r, http.StatusForbidden, msgUnverifiedEmail)
		return
	}
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch Google profile",
			"error", err)

		s.writeError(w, r, http.StatusBadGateway, msgGoogleFailed)
		return
	}

	user, token, err := s.auth.SignInWithOAuth(ctx, auth.ProviderGoogle, profile)
	if errors.Is(err, auth.ErrAccountNotLinked) {
		s.writeError(w, r, http.StatusConflict, msgAccountNotLinked)
		return
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to sign in with Google",
			"error", err,
			"providerUserID", profile.ProviderUserID)

		s.writeError(w, r, http.StatusInternalServerError, msgSignInFailed)
		return
	}

	s.log.InfoContext(ctx, "User is signed in",
		"userID", user.ID,
		"provider", auth.ProviderGoogle)

	auth.SetSessionCookie(w, token, s.auth.SessionTTL(), s.opts.SecureCookies)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFrom(r.Context())
	if claims == nil {
		s.writeJSON(w, r, http.StatusOK, sessionResponse{})
		return
	}

	s.writeJSON(w, r, http.StatusOK, sessionResponse{User: &sessionUser{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	}})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, s.opts.SecureCookies)
	s.writeJSON(w, r, http.StatusOK, sessionResponse{})
}
