package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideMiddleware lets HTML forms send PUT, PATCH and DELETE through
// a hidden _method field. Multipart bodies are left alone so uploads are not
// parsed twice.
func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Failed to parse form", http.StatusBadRequest)
				return
			}
			switch method := strings.ToUpper(r.PostForm.Get("_method")); method {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}
