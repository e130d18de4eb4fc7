package middleware

import (
	"context"
	"net/http"
	"net/url"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/permission"
)

// Authorizer is the engine surface guards need.
type Authorizer interface {
	Status() goGate.Status
	Evaluator() goGate.Evaluator
}

type evaluatorContextKey struct{}

// EvaluatorFromContext returns the evaluator a guard attached to the
// request. Without one it returns the zero Evaluator, which denies.
func EvaluatorFromContext(ctx context.Context) (goGate.Evaluator, bool) {
	ev, ok := ctx.Value(evaluatorContextKey{}).(goGate.Evaluator)
	return ev, ok
}

// WithEvaluator attaches ev to ctx.
func WithEvaluator(ctx context.Context, ev goGate.Evaluator) context.Context {
	return context.WithValue(ctx, evaluatorContextKey{}, ev)
}

// RequireRoute guards next with route. Unauthenticated or denied requests
// are redirected to the route's fallback, or defaultFallback when the route
// has none. While the engine is still loading the guard answers 503.
func RequireRoute(auth Authorizer, route permission.Route, defaultFallback string) func(http.Handler) http.Handler {
	fallback := route.Fallback
	if fallback == "" {
		fallback = defaultFallback
	}
	if fallback == "" {
		fallback = permission.DefaultFallbackPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ev, ok := admit(w, auth)
			if !ok {
				return
			}
			if !ev.IsAuthenticated() || !ev.IsAllowed(route.Requirement) {
				redirect(w, r, fallback, !ev.IsAuthenticated())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEvaluator(r.Context(), ev)))
		})
	}
}

// RequireAPI guards next with req and answers 401 without a session and
// 403 when req is not met.
func RequireAPI(auth Authorizer, req goGate.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ev, ok := admit(w, auth)
			if !ok {
				return
			}
			if !ev.IsAuthenticated() {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !ev.IsAllowed(req) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEvaluator(r.Context(), ev)))
		})
	}
}

// GateHandler serves allowed when the request's evaluator satisfies req and
// denied otherwise. A nil denied answers 404, mirroring a gate that renders
// nothing.
func GateHandler(req goGate.Requirement, allowed, denied http.Handler) http.Handler {
	if denied == nil {
		denied = http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ev, _ := EvaluatorFromContext(r.Context())
		goGate.Gate(ev, req, allowed, denied).ServeHTTP(w, r)
	})
}

func admit(w http.ResponseWriter, auth Authorizer) (goGate.Evaluator, bool) {
	if auth == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return goGate.Evaluator{}, false
	}
	if auth.Status() == goGate.StatusLoading {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "session loading", http.StatusServiceUnavailable)
		return goGate.Evaluator{}, false
	}
	return auth.Evaluator(), true
}

func redirect(w http.ResponseWriter, r *http.Request, fallback string, withNext bool) {
	target := fallback
	if withNext && r.URL.Path != fallback {
		target = fallback + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}
