package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Techne-Finance/techne-sub000/internal/logger"
)

// RecoveryMiddleware ловить паніки та повертає 500 помилку
func RecoveryMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// Логуємо panic з stack trace
					log.Error("❌ PANIC: %v\n%s", err, debug.Stack())

					// Panic message не віддаємо назовні
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"Internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
