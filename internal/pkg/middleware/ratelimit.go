package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	apperror "gopos/internal/errors"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/logger"
)

// RateLimiter limita requisições por IP numa janela fixa, com o contador no Redis.
// Se o Redis falhar a requisição segue: o limite não derruba a API.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip

			count, err := client.IncrWindow(r.Context(), key, window)
			if err != nil {
				log.Warn("Rate limiter indisponível", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeError(w, apperror.NewRateLimitError("Limite de requisições excedido."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
