package permission

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultFallbackPath is where denied route guards redirect when a route
// does not name its own fallback.
const DefaultFallbackPath = "/login"

// Route binds a path to the requirement a route guard enforces. Routes in a
// table are protected: an unauthenticated caller is always sent to the
// fallback, even when the requirement is empty.
type Route struct {
	Path        string `yaml:"path" json:"path"`
	Requirement `yaml:",inline"`
	Fallback    string `yaml:"fallback,omitempty" json:"fallback,omitempty"`
}

// RouteTable resolves request paths to protected routes.
type RouteTable struct {
	routes []Route
	byPath map[string]Route
}

// NewRouteTable validates paths and builds a lookup table.
func NewRouteTable(routes ...Route) (*RouteTable, error) {
	t := &RouteTable{
		routes: make([]Route, 0, len(routes)),
		byPath: make(map[string]Route, len(routes)),
	}

	for _, route := range routes {
		path := normalizePath(route.Path)
		if path == "" {
			return nil, fmt.Errorf("%w: path %q", ErrInvalidRoute, route.Path)
		}
		if _, exists := t.byPath[path]; exists {
			return nil, fmt.Errorf("%w: duplicate path %q", ErrInvalidRoute, path)
		}
		if route.Fallback != "" && !strings.HasPrefix(route.Fallback, "/") {
			return nil, fmt.Errorf("%w: fallback %q for %q", ErrInvalidRoute, route.Fallback, path)
		}
		route.Path = path
		t.routes = append(t.routes, route)
		t.byPath[path] = route
	}

	return t, nil
}

// Match returns the route for path: an exact entry if present, otherwise the
// longest registered ancestor ("/admin/users/7" matches "/admin/users").
func (t *RouteTable) Match(path string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}
	path = normalizePath(path)
	if path == "" {
		return Route{}, false
	}

	for {
		if route, ok := t.byPath[path]; ok {
			return route, true
		}
		idx := strings.LastIndex(path, "/")
		if idx <= 0 {
			return Route{}, false
		}
		path = path[:idx]
	}
}

// Routes returns the table entries sorted by path.
func (t *RouteTable) Routes() []Route {
	if t == nil {
		return nil
	}
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Validate checks every route requirement against policy.
func (t *RouteTable) Validate(policy *Policy) error {
	for _, route := range t.Routes() {
		if err := route.Validate(policy); err != nil {
			return fmt.Errorf("route %s: %w", route.Path, err)
		}
	}
	return nil
}

// DefaultRoutes returns the built-in protected routes.
func DefaultRoutes() []Route {
	staff := []Role{RoleUser, RoleAdmin}
	admin := []Role{RoleAdmin}

	return []Route{
		{Path: "/dashboard", Requirement: RequireAllPermissions(ReadContent), Fallback: DefaultFallbackPath},
		{Path: "/profile", Requirement: RequireAnyRole(staff...), Fallback: DefaultFallbackPath},
		{Path: "/admin", Requirement: RequireAnyRole(admin...), Fallback: DefaultFallbackPath},
		{Path: "/admin/users", Requirement: RequireAnyRole(admin...), Fallback: DefaultFallbackPath},
		{Path: "/admin/settings", Requirement: RequireAnyRole(admin...), Fallback: DefaultFallbackPath},
		{Path: "/create", Requirement: RequireAnyRole(staff...), Fallback: DefaultFallbackPath},
		{Path: "/edit", Requirement: RequireAnyRole(staff...), Fallback: DefaultFallbackPath},
	}
}

// DefaultRouteTable returns [DefaultRoutes] as a table.
func DefaultRouteTable() *RouteTable {
	t, err := NewRouteTable(DefaultRoutes()...)
	if err != nil {
		panic(fmt.Sprintf("permission: default routes: %v", err))
	}
	return t
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		return ""
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
