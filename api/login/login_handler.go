package login

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"opname/api/web"
	"opname/infrastructure/auth"
	"opname/infrastructure/cache"
	"opname/infrastructure/sqlite"
	"opname/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// LoginHandler authenticates the user and issues an opaque session token.
func LoginHandler(db *sqlite.DB, sessionCache *cache.SessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := web.Decode(r, &req); err != nil {
			web.DomainError(w, err)
			return
		}

		username := strings.TrimSpace(req.Username)
		password := strings.TrimSpace(req.Password)
		if username == "" || password == "" {
			web.Error(w, http.StatusBadRequest, "username and password are required")
			return
		}

		user, err := authenticateUser(r.Context(), db, username, password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				web.Error(w, http.StatusUnauthorized, "invalid username or password")
				return
			}
			web.Error(w, http.StatusInternalServerError, "authentication failed")
			return
		}

		session := newSession(user)
		if err := persistSession(r.Context(), db, session); err != nil {
			web.Error(w, http.StatusInternalServerError, "failed to create session")
			return
		}
		sessionCache.Add(session)

		web.JSON(w, http.StatusOK, loginResponse{
			Token:     session.ID,
			ExpiresAt: session.ExpiresAt,
			User:      user,
		})
	}
}

// LogoutHandler invalidates the presented token.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.SessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(auth.HeaderToken)
		if token == "" {
			if v := r.Header.Get("Authorization"); strings.HasPrefix(v, "Bearer ") {
				token = strings.TrimPrefix(v, "Bearer ")
			}
		}
		if token != "" {
			sessionCache.Delete(token)
			_ = DeleteSessionByToken(r.Context(), db, token)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func newSession(user models.User) models.Session {
	now := time.Now().UTC()
	return models.Session{
		ID:        newSessionToken(),
		UserID:    user.ID,
		User:      user,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
}
