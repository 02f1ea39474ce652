package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/segyhp/loan-ledger/internal/auth"
	"github.com/segyhp/loan-ledger/pkg/response"

	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// How long the in-progress marker survives if the handler never finishes.
	provisionalLockTTL = 60 * time.Second
	maxKeyLength       = 128
)

type idempEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

type bodyRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *bodyRecorder) Header() http.Header { return r.w.Header() }
func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *bodyRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// Idempotency replays the stored response of a mutating request that is
// retried with the same Idempotency-Key. The header is optional. A nil
// client or an unreachable Redis lets requests through unprotected.
func Idempotency(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if idemKey == "" || rdb == nil {
				next.ServeHTTP(w, r)
				return
			}
			if len(idemKey) > maxKeyLength {
				response.BadRequest(w, "INVALID_IDEMPOTENCY_KEY", "Idempotency-Key is too long")
				return
			}

			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(r.Body)
			}
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(r, idemKey)
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			ok, err := provisionalSet(ctx, rdb, key, idempEntry{InProgress: true, BodySHA256: bhash, CreatedAt: nowUTC()})
			if err != nil {
				logger.Warn("idempotency store unavailable", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				cur, errLoad := loadEntry(ctx, rdb, key)
				if errLoad != nil {
					logger.Warn("failed to load idempotency entry", "key", key, "error", errLoad)
				}

				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					response.Error(w, http.StatusConflict, "IDEMPOTENCY_KEY_REUSED", "Idempotency-Key reused with different body")
					return
				}
				if !cur.InProgress && cur.Code != 0 {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotent-Replayed", "true")
					w.WriteHeader(cur.Code)
					_, _ = w.Write(cur.Body)
					return
				}
				response.Error(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "request is already in progress")
				return
			}

			rec := &bodyRecorder{w: w, buf: &bytes.Buffer{}, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Server failures are not cached so the client can retry.
			if rec.code >= http.StatusInternalServerError {
				_ = rdb.Del(context.Background(), key).Err()
				return
			}

			final := idempEntry{
				Code:       rec.code,
				Body:       rec.buf.Bytes(),
				BodySHA256: bhash,
				CreatedAt:  nowUTC(),
			}
			if err := saveFinal(context.Background(), rdb, key, final, ttl); err != nil {
				logger.Warn("failed to save idempotency entry", "key", key, "error", err)
			}
		})
	}
}

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// buildKey scopes a client key by method, path and caller.
func buildKey(r *http.Request, idemKey string) string {
	caller := "anonymous"
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		caller = strconv.FormatInt(p.UserID, 10)
	}

	return "idemp:" + strings.ToLower(r.Method) + ":" + r.URL.Path + ":" + caller + ":" + idemKey
}

func provisionalSet(ctx context.Context, rdb *redis.Client, key string, entry idempEntry) (bool, error) {
	payload, _ := json.Marshal(entry)
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb *redis.Client, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	_ = json.Unmarshal(v, &e)
	return e, nil
}

func saveFinal(ctx context.Context, rdb *redis.Client, key string, entry idempEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(entry)
	return rdb.Set(ctx, key, payload, ttl).Err()
}
