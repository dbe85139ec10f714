package idempotency

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/crypto/sha3"
)

const (
	// HeaderKey is the request header naming the idempotency key.
	HeaderKey = "Idempotency-Key"
	// HeaderReplayed marks a response served from the store.
	HeaderReplayed = "Idempotent-Replayed"

	maxKeyLength = 255
)

// replayedHeaders are the response headers kept with a record.
var replayedHeaders = []string{"Content-Type", "Content-Encoding"}

// Middleware replays stored responses for POST requests carrying an
// Idempotency-Key header. Requests without the header pass through.
type Middleware struct {
	store *Store

	mu       sync.Mutex
	inflight map[string]bool

	// afterLookup runs between the first store lookup and taking the key.
	afterLookup func()
}

// NewMiddleware creates a Middleware over store.
func NewMiddleware(store *Store) *Middleware {
	return &Middleware{store: store, inflight: make(map[string]bool)}
}

// Handler wraps next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderKey)
		if key == "" || r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) > maxKeyLength {
			writeError(w, http.StatusBadRequest, "invalid_argument", "idempotency key too long")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_argument", "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		scoped := scopedKey(r, key)
		fingerprint := digest(body)

		if m.answered(w, r, scoped, fingerprint) {
			return
		}
		if m.afterLookup != nil {
			m.afterLookup()
		}

		if !m.acquire(scoped) {
			writeError(w, http.StatusConflict, "aborted", "a request with this idempotency key is in progress")
			return
		}
		defer m.release(scoped)

		// The first holder may have finished between the lookup and acquire.
		if m.answered(w, r, scoped, fingerprint) {
			return
		}

		rw := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.status != http.StatusOK {
			return
		}
		rec := &Record{
			Fingerprint: fingerprint,
			Status:      rw.status,
			Header:      http.Header{},
			Body:        rw.body.Bytes(),
		}
		for _, h := range replayedHeaders {
			if v := rw.Header().Get(h); v != "" {
				rec.Header.Set(h, v)
			}
		}
		if _, _, err := m.store.Put(scoped, rec); err != nil {
			slog.Error("Failed to store idempotent response", "path", r.URL.Path, "error", err)
		}
	})
}

// answered replays a stored response for scoped, or rejects a reused key
// with a different body. It reports whether w was written.
func (m *Middleware) answered(w http.ResponseWriter, r *http.Request, scoped, fingerprint string) bool {
	rec, err := m.store.Get(scoped)
	if err != nil {
		return false
	}
	if rec.Fingerprint != fingerprint {
		writeError(w, http.StatusBadRequest, "invalid_argument", "idempotency key reused with a different request")
		return true
	}
	slog.Info("Idempotent replay", "path", r.URL.Path, "key", r.Header.Get(HeaderKey))
	replay(w, rec)
	return true
}

func (m *Middleware) acquire(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inflight[key] {
		return false
	}
	m.inflight[key] = true
	return true
}

func (m *Middleware) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, key)
}

func scopedKey(r *http.Request, key string) string {
	return digest([]byte(r.Header.Get("Authorization"))) + ":" + r.URL.Path + ":" + key
}

func digest(b []byte) string {
	sum := sha3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, rec *Record) {
	for k, vs := range rec.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set(HeaderReplayed, "true")
	w.WriteHeader(rec.Status)
	w.Write(rec.Body)
}

// writeError answers in the connect protocol's JSON error shape so connect
// clients surface the code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}

// recorder tees the response into a buffer.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
