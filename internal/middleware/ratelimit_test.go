package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"stockledger/internal/domain"
)

func TestLimitMutations(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := LimitMutations(1, time.Minute, zap.NewNop())(ok)

	send := func(method string, actorID string) int {
		req := httptest.NewRequest(method, "/inputs", nil)
		req = req.WithContext(WithActor(req.Context(), Actor{ID: actorID, Role: domain.RoleEmployee}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "u-1"))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "u-1"))
	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "u-2"), "limits are per actor")
	assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "u-1"), "reads are not limited")
}
