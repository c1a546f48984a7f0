package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// Replays must work across app restarts but not forever; a day
	// comfortably covers client retry windows.
	idempotencyTTL  = 24 * time.Hour
	idempotencyLock = 30 * time.Second
	idempotencyNS   = "hellocabs:idem:"
)

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key instead of re-executing the handler. The booking
// service keeps its own key column as the durable source of truth;
// this layer only short-circuits retries before they hit Postgres.
type IdempotencyMiddleware struct {
	redis *redis.Client
}

func NewIdempotencyMiddleware(redisClient *redis.Client) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{redis: redisClient}
}

type storedReply struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

type replyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rr *replyRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *replyRecorder) Write(b []byte) (int, error) {
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}

func (m *IdempotencyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reads are naturally idempotent, and status updates are
		// guarded by the rides version column. Only mutating verbs
		// carrying a key get the replay treatment.
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(payload))

		ctx := r.Context()
		redisKey := idempotencyNS + key
		requestHash := hashPayload(r.Method, r.URL.Path, payload)

		if reply, err := m.lookup(ctx, redisKey); err == nil {
			if reply.RequestHash != requestHash {
				writeJSONError(w, http.StatusConflict, "idempotency_conflict",
					"idempotency key was already used with a different request")
				return
			}
			if reply.ContentType != "" {
				w.Header().Set("Content-Type", reply.ContentType)
			}
			w.WriteHeader(reply.Status)
			w.Write(reply.Body)
			return
		}

		// First writer wins; a concurrent retry with the same key
		// backs off instead of double-booking.
		lockKey := redisKey + ":lock"
		locked, err := m.redis.SetNX(ctx, lockKey, "1", idempotencyLock).Result()
		if err != nil || !locked {
			writeJSONError(w, http.StatusConflict, "request_in_progress",
				"a request with this idempotency key is still being processed")
			return
		}
		defer m.redis.Del(ctx, lockKey)

		rec := &replyRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status < 200 || rec.status >= 300 {
			return
		}

		data, err := json.Marshal(storedReply{
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
			RequestHash: requestHash,
		})
		if err == nil {
			m.redis.Set(ctx, redisKey, data, idempotencyTTL)
		}
	})
}

func (m *IdempotencyMiddleware) lookup(ctx context.Context, key string) (*storedReply, error) {
	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var reply storedReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func hashPayload(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
