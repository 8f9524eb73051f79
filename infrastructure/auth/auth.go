package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/uptrace/bun"

	"opname/infrastructure/cache"
	"opname/infrastructure/sqlite"
	"opname/models"
)

// HeaderToken is the request header carrying the opaque session token.
const HeaderToken = "X-Session-Token"

// Roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the acting user for one operation. It is resolved once per
// request and passed explicitly through every operation boundary.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// Provider resolves the acting identity from a request token.
type Provider interface {
	Identify(ctx context.Context, token string) (Identity, error)
}

// FixedProvider always returns the same identity, regardless of token. It is
// the development-mode stand-in for a real authentication backend.
type FixedProvider struct {
	Identity Identity
}

// NewFixedProvider returns a provider pinned to the default operator.
func NewFixedProvider() *FixedProvider {
	return &FixedProvider{Identity: Identity{UserID: 1, Username: "operator", Role: RoleAdmin}}
}

func (p *FixedProvider) Identify(context.Context, string) (Identity, error) {
	return p.Identity, nil
}

// TokenProvider resolves identities from persisted login sessions, with a
// cache in front of the sessions table.
type TokenProvider struct {
	DB    *sqlite.DB
	Cache *cache.SessionCache
}

func NewTokenProvider(db *sqlite.DB, sessionCache *cache.SessionCache) *TokenProvider {
	return &TokenProvider{DB: db, Cache: sessionCache}
}

func (p *TokenProvider) Identify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}

	if cached, ok := p.Cache.Find(token); ok {
		if cached.Expired() {
			p.Cache.Delete(token)
			return Identity{}, ErrUnauthenticated
		}
		return identityFromSession(cached), nil
	}

	session, err := p.loadSession(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, err
	}
	if session.Expired() {
		return Identity{}, ErrUnauthenticated
	}
	p.Cache.Add(session)
	return identityFromSession(session), nil
}

func (p *TokenProvider) loadSession(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	err := p.DB.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&session).
			Relation("User").
			Where("s.id = ?", token).
			Limit(1).
			Scan(ctx)
	})
	return session, err
}

func identityFromSession(s models.Session) Identity {
	return Identity{UserID: s.UserID, Username: s.User.Username, Role: s.User.Role}
}

type identityKey struct{}

// NewContextWithIdentity stores the resolved identity on the context.
func NewContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity placed by the middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Middleware resolves the request identity through provider and rejects the
// request with 401 when resolution fails.
func Middleware(provider Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderToken)
			if token == "" {
				if v := r.Header.Get("Authorization"); strings.HasPrefix(v, "Bearer ") {
					token = strings.TrimPrefix(v, "Bearer ")
				}
			}

			id, err := provider.Identify(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) {
					http.Error(w, "unauthenticated", http.StatusUnauthorized)
					return
				}
				http.Error(w, "auth backend failure", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin gates a route on the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || !id.IsAdmin() {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
