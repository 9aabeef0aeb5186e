package ratelimit

import (
	"encoding/json"
	"net/http"
)

const TooManyRequestsMessage = "too many requests"

// Middleware 所有請求共用一個 bucket，config 未啟用時直接放行
func Middleware(config Config, opts ...Option) func(http.Handler) http.Handler {
	if !config.Enabled() {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	bucket := NewTokenBucket(config, opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !bucket.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"message": TooManyRequestsMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
