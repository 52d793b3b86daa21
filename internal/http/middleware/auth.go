package middleware

import (
	"context"
	"net/http"
	"strings"

	"accelerator/internal/common"
	"accelerator/internal/domain/user"
	"accelerator/internal/http/response"
	"accelerator/internal/security"
)

type contextKey string

const (
	ContextUserIDKey contextKey = "user_id"
	ContextRoleKey   contextKey = "role"
)

// UserFinder loads the account behind a token.
type UserFinder interface {
	GetByID(ctx context.Context, id common.UUID) (*user.User, error)
}

// AuthMiddleware trusts the token for the user id only. The role is read from
// the stored account on every request, so a role change applies at once.
type AuthMiddleware struct {
	tokens *security.TokenProvider
	users  UserFinder
}

func NewAuthMiddleware(tokens *security.TokenProvider, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := m.tokens.Parse(parts[1])
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		userID, err := common.ParseUUID(claims.Sub)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid user id", err))
			return
		}
		account, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if common.Is(err, common.CodeNotFound) {
				response.Error(w, common.NewError(common.CodeUnauthorized, "unknown user", err))
				return
			}
			response.Error(w, err)
			return
		}
		if !account.Role.Valid() {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid role", nil))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID, account.Role)))
	})
}

// RequireRole lets the request through when the caller holds any of roles.
func RequireRole(roles ...user.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				response.Error(w, common.NewError(common.CodeForbidden, "role not found", nil))
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
		})
	}
}

func WithIdentity(ctx context.Context, userID common.UUID, role user.Role) context.Context {
	ctx = context.WithValue(ctx, ContextUserIDKey, userID)
	return context.WithValue(ctx, ContextRoleKey, role)
}

func UserIDFromContext(ctx context.Context) (common.UUID, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(common.UUID)
	return id, ok && !id.IsZero()
}

func RoleFromContext(ctx context.Context) (user.Role, bool) {
	role, ok := ctx.Value(ContextRoleKey).(user.Role)
	return role, ok
}
