package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader  = "Idempotency-Key"
	idempotencyLockTTL = 30 * time.Second
)

// CachedResponse is the replayable result stored under an idempotency key.
type CachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// IdempotencyCacheKey scopes a client key to the route and the caller.
func IdempotencyCacheKey(path string, userID int64, key string) string {
	return fmt.Sprintf("idemp:%s:%s:%s", path, strconv.FormatInt(userID, 10), key)
}

// Idempotency replays the stored response of a POST that carries an
// Idempotency-Key already seen within ttl. A second request arriving while
// the first is still running gets 409.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempKey := r.Header.Get(IdempotencyHeader)
			if idempKey == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			userID, _ := jwt.UserIDFromContext(ctx)
			cacheKey := IdempotencyCacheKey(r.URL.Path, userID, idempKey)
			lockKey := cacheKey + ":lock"

			val, err := rdb.Get(ctx, cacheKey).Bytes()
			switch {
			case err == nil:
				var cached CachedResponse
				if err := json.Unmarshal(val, &cached); err == nil {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotent-Replay", "true")
					w.WriteHeader(cached.Status)
					_, _ = w.Write(cached.Body)
					return
				}
				slog.WarnContext(ctx, "discarding unreadable idempotency entry", "key", cacheKey)
			case !errors.Is(err, redis.Nil):
				// Redis being unavailable must not block payroll operations.
				slog.ErrorContext(ctx, "idempotency lookup failed", "key", cacheKey, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
			if err != nil {
				slog.ErrorContext(ctx, "idempotency lock failed", "key", lockKey, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				response.Conflict(w, "A request with this Idempotency-Key is still being processed")
				return
			}

			var body bytes.Buffer
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			// Only successful outcomes are replayed; failures may be retried.
			if status := ww.Status(); status >= 200 && status < 300 {
				payload, err := json.Marshal(CachedResponse{Status: status, Body: bytes.TrimSpace(body.Bytes())})
				if err == nil {
					err = rdb.Set(ctx, cacheKey, payload, ttl).Err()
				}
				if err != nil {
					slog.ErrorContext(ctx, "idempotency store failed", "key", cacheKey, "error", err)
				}
			}
			if err := rdb.Del(ctx, lockKey).Err(); err != nil {
				slog.ErrorContext(ctx, "idempotency unlock failed", "key", lockKey, "error", err)
			}
		})
	}
}
