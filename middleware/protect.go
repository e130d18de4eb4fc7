package middleware

import (
	"net/http"

	"github.com/MrEthical07/goGate/permission"
)

// Protect guards every request whose path matches a route in table; see
// [permission.RouteTable.Match]. Unmatched paths are public and pass
// through with the current evaluator attached.
func Protect(auth Authorizer, table *permission.RouteTable, defaultFallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, ok := table.Match(r.URL.Path)
			if !ok {
				if auth != nil {
					r = r.WithContext(WithEvaluator(r.Context(), auth.Evaluator()))
				}
				next.ServeHTTP(w, r)
				return
			}
			RequireRoute(auth, route, defaultFallback)(next).ServeHTTP(w, r)
		})
	}
}
