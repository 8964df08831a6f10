package http

import (
	"net/http"
	"time"

	"appsuite-backend/internal/domain"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/registry"
	"appsuite-backend/internal/service"

	"github.com/gorilla/sessions"
)

const (
	SessionName       = "pomegrid_session"
	sessionKeyUserID  = "user_id"
	sessionKeyName    = "user_name"
	sessionMaxAgeSecs = 7 * 24 * 60 * 60
)

// NewSessionStore returns the signed cookie store used by the auth module
func NewSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAgeSecs,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

type AuthHandler struct {
	svc      service.AuthService
	sessions sessions.Store
	tokenTTL time.Duration
}

func NewAuthHandler(svc service.AuthService, store sessions.Store, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: store, tokenTTL: tokenTTL}
}

func (h *AuthHandler) Routes() []registry.Route {
	return []registry.Route{
		{Name: "auth.register", Method: http.MethodPost, Path: "/register", Handler: h.Register, Limited: true,
			Description: "Register a procurement user"},
		{Name: "auth.login", Method: http.MethodPost, Path: "/login", Handler: h.Login, Limited: true,
			Description: "Log in with email and password; starts a session and issues an access token"},
		{Name: "auth.logout", Method: http.MethodPost, Path: "/logout", Handler: h.Logout,
			Description: "End the current session"},
		{Name: "auth.me", Method: http.MethodGet, Path: "/me", Handler: h.Me,
			Description: "Return the user of the current session"},
	}
}

type registerRequest struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	CreatedBy  *int64 `json:"created_by"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Email      string `json:"email"`
}

func viewOf(u *domain.User) userView {
	return userView{ID: u.ID, Name: u.Name, Role: u.Role, Department: u.Department, Email: u.Email}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:       req.Name,
		Role:       req.Role,
		Department: req.Department,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		CreatedBy:  req.CreatedBy,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    viewOf(user),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// a stale or forged cookie yields a fresh session plus an error
	session, err := h.sessions.Get(r, SessionName)
	if err != nil {
		logger.DebugContext(r.Context(), "Replacing unreadable session", "error", err)
	}
	session.Values[sessionKeyUserID] = user.ID
	session.Values[sessionKeyName] = user.Name
	if err := session.Save(r, w); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Login successful",
		"user":         viewOf(user),
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(h.tokenTTL.Seconds()),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, SessionName)
	delete(session.Values, sessionKeyUserID)
	delete(session.Values, sessionKeyName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r, SessionName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	id, ok := session.Values[sessionKeyUserID].(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": viewOf(user)})
}
