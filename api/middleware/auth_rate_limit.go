package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/watchengine/watch-engine-backend/api/responses"
	"github.com/watchengine/watch-engine-backend/api/validators"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

// fixedWindowStore is satisfied by pkg/redis.Client.
type fixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one credential endpoint by IP and by email.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) scope(kind, value string) string {
	return p.name + ":" + kind + ":" + value
}

// AuthRateLimit enforces the policy before the handler reads the body. The
// email is peeked from the JSON payload and hashed so raw addresses never
// reach redis.
func AuthRateLimit(policy AuthRateLimitPolicy, store fixedWindowStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		// check reports false once it has written the response.
		check := func(w http.ResponseWriter, r *http.Request, kind, key string, limit int, fields map[string]any) bool {
			if limit <= 0 || key == "" {
				return true
			}
			allowed, count, err := store.FixedWindowAllow(r.Context(), policy.scope(kind, key), int64(limit), policy.window)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return false
			}
			if !allowed {
				fields["scope"] = kind
				fields["attempts"] = count
				rejectAttempt(r.Context(), logg, w, policy, fields)
				return false
			}
			return true
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !check(w, r, "ip", ip, policy.ipLimit, map[string]any{"ip": ip}) {
				return
			}

			if policy.emailLimit > 0 && r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, validators.MaxBodyBytes+1))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				hash := ""
				if email := emailFromBody(body); email != "" {
					hash = hashValue(email)
				}
				if !check(w, r, "email", hash, policy.emailLimit, map[string]any{"email_hash": hash}) {
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectAttempt(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, fields map[string]any) {
	if logg != nil {
		fields["policy"] = policy.name
		fields["window_seconds"] = int(policy.window.Seconds())
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts, please try again later."))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
