package middleware

import "net/http"

// tooLargeBody matches the API's error envelope for a 413.
const tooLargeBody = `{"error":{"code":"too_large","message":"request body too large"}}` + "\n"

// NewMaxBodySizeHandler caps request bodies at limit bytes. A declared
// Content-Length over the cap is answered with 413 at once; any other body is
// wrapped in http.MaxBytesReader and the handler reports the overflow when it
// reads past the cap. A non-positive limit disables the check.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Connection", "close")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(tooLargeBody))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
