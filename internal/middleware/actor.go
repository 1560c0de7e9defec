package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/commons"
	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

type actorKey struct{}

// Actor is the authenticated caller. The ledger attributes entries to ID.
type Actor struct {
	ID   string
	Name string
	Role string
}

// ActorClaims are issued by the account service; this service only verifies
// them.
type ActorClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var knownRoles = map[string]bool{
	domain.RoleAdmin:    true,
	domain.RoleManager:  true,
	domain.RoleEmployee: true,
}

// Authenticate verifies an HS256 bearer token and stores the Actor in the
// request context.
func Authenticate(secret []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := parseBearer(r.Header.Get("Authorization"), secret)
			if err != nil {
				logger.Warn("rejected credentials", zap.String("path", r.URL.Path), zap.Error(err))
				commons.WriteError(w, uuid.New().String(), apperrors.NewUnauthorizedError("invalid or missing token"), logger)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole lets the request through only for the given roles.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				commons.WriteError(w, uuid.New().String(), apperrors.NewUnauthorizedError("missing actor"), logger)
				return
			}
			if !allowed[actor.Role] {
				commons.WriteError(w, uuid.New().String(), apperrors.NewForbiddenError(fmt.Sprintf("role %s may not access this resource", actor.Role)), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

func parseBearer(header string, secret []byte) (Actor, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Actor{}, fmt.Errorf("expected Bearer token")
	}

	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Actor{}, err
	}
	if !token.Valid {
		return Actor{}, jwt.ErrSignatureInvalid
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return Actor{}, fmt.Errorf("token has no user id")
	}
	if !knownRoles[claims.Role] {
		return Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	return Actor{ID: id, Name: claims.Name, Role: claims.Role}, nil
}

// SignToken issues a token for the given actor. Used by the seed command to
// print credentials for local testing.
func SignToken(secret []byte, actor Actor, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorClaims{
		UserID:           actor.ID,
		Name:             actor.Name,
		Role:             actor.Role,
		RegisteredClaims: claims,
	})
	return token.SignedString(secret)
}
