package i18n

import "net/http"

// Middleware picks a localizer per request: the "lang" query parameter first,
// then Accept-Language, then lang.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			langs := []string{r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), lang}
			ctx := WithLocalizer(r.Context(), NewLocalizer(langs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
