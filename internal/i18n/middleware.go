package i18n

import "net/http"

// Middleware injects a localizer for the given language into every request
// context, honoring an Accept-Language override when the client sends one.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := lang
			if al := r.Header.Get("Accept-Language"); al != "" {
				requested = al
			}
			ctx := WithLocalizer(r.Context(), NewLocalizer(requested))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
