package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/commons"
	"stockledger/internal/dto"
)

// LimitMutations caps write requests per actor (or per client IP before
// authentication). Reads pass through unlimited.
func LimitMutations(limit int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	limiter := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(mutationKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			traceID := uuid.New().String()
			logger.Warn("rate limit exceeded", zap.String("traceId", traceID), zap.String("path", r.URL.Path))
			commons.WriteJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{
				TraceID:   traceID,
				Status:    http.StatusTooManyRequests,
				Message:   "too many requests",
				Code:      "RATE_LIMITED",
				Timestamp: time.Now().UTC(),
			}, logger)
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}

func mutationKey(r *http.Request) (string, error) {
	if actor, ok := ActorFromContext(r.Context()); ok {
		return "actor:" + actor.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

