// Package middleware adapts goGate authorization decisions to net/http.
//
// # Guards
//
//   - [RequireRoute] guards one route and redirects to its fallback when denied.
//   - [Protect] matches each request against a [permission.RouteTable].
//   - [RequireAPI] answers 401/403 instead of redirecting, for JSON endpoints.
//   - [GateHandler] picks between two handlers, the way a render gate picks
//     between content and a fallback.
//
// Guards take an [Authorizer] (satisfied by *goGate.Engine), read one
// evaluator snapshot per request and store it in the request context for
// handlers ([EvaluatorFromContext]).
//
// # What this package must NOT do
//
//   - Mutate the session. Login and logout belong to the application.
//   - Decide access itself; every decision is Evaluator.IsAllowed.
package middleware
