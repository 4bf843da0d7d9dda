package middleware

import (
	"fmt"
	"net/http"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// RecoverMiddleware turns a handler panic into a generic 500 and reports it.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			utils.CapturePanic(rec)
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal,
				"An unexpected error occurred", nil,
				fmt.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec),
			)
		}()
		next.ServeHTTP(w, r)
	})
}
