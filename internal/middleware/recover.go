package middleware

import (
	"net/http"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/hongminglow/campuslearn-be/internal/http/respond"
)

// Recover turns a panic in next into a 500 response and logs the stack.
// The request logger set by Logging is preferred when present.
func Recover(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			stack := make([]byte, 8*1024)
			stack = stack[:runtime.Stack(stack, false)]

			l := zerolog.Ctx(r.Context())
			if l.GetLevel() == zerolog.Disabled {
				l = &logger
			}
			l.Error().
				Interface("panic", rec).
				Str("path", r.URL.Path).
				Bytes("stack", stack).
				Msg("panic recovered")
			respond.Error(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
