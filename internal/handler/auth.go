package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	authpkg "github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
)

const sessionCookieName = "choreme_session"

type AuthHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	sessions   *store.SessionStore
	logger     *slog.Logger
}

func NewAuthHandler(users *store.UserStore, households *store.HouseholdStore, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		households: households,
		sessions:   sessions,
		logger:     logger.With("component", "auth"),
	}
}

// Signup registers a user. Without an invite code a new household is
// created and the user becomes its parent; with one, the user joins the
// matching household.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Role       string `json:"role"`
		InviteCode string `json:"inviteCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid Data")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.FirstName == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid Data")
		return
	}

	role := model.Role(req.Role)
	switch role {
	case model.RoleParent, model.RoleChildren, model.RoleAdmin:
	case "":
		role = model.RoleParent
	default:
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid Data")
		return
	}

	var householdID int64
	if req.InviteCode != "" {
		household, err := h.households.GetByInviteCode(req.InviteCode)
		if err != nil || household == nil {
			writeMessage(w, http.StatusUnprocessableEntity, "Invalid Data")
			return
		}
		householdID = household.ID
	} else {
		household, err := h.households.Create(req.LastName)
		if err != nil {
			h.logger.Error("create household", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		householdID = household.ID
	}

	hash, err := authpkg.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if _, err := h.users.Create(householdID, req.FirstName, req.LastName, req.Email, hash, role); err != nil {
		if store.IsDuplicateEmail(err) {
			writeMessage(w, http.StatusConflict, "User already exists")
			return
		}
		h.logger.Error("create user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeMessage(w, http.StatusCreated, "User created")
}

// Login checks credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid Data")
		return
	}

	user, err := h.users.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if user == nil || !authpkg.CheckPassword(user.PasswordHash, req.Password) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	sess, err := h.sessions.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
	})
}

// Logout deletes the session and expires the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeMessage(w, http.StatusOK, "Logged out")
}
