package goGate

import (
	"testing"

	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

func evaluatorFor(role permission.Role) Evaluator {
	policy := permission.Default()
	user := session.User{ID: 42, Email: "x@example.com", Name: "X", Role: role}
	return NewEvaluator(newSessionState(user, "tok", policy.PermissionsFor(role)))
}

func TestEvaluatorUnauthenticatedDeniesEverything(t *testing.T) {
	evs := map[string]Evaluator{
		"zero":      {},
		"nil state": NewEvaluator(nil),
		"anonymous": NewEvaluator(anonymousState),
	}

	for name, ev := range evs {
		t.Run(name, func(t *testing.T) {
			for _, p := range permission.AllPermissions() {
				if ev.HasPermission(p) {
					t.Fatalf("unauthenticated evaluator granted %s", p)
				}
			}
			if ev.HasRole(permission.RoleGuest) || ev.HasAnyRole(permission.RoleGuest, permission.RoleUser) {
				t.Fatal("unauthenticated evaluator matched a role")
			}
			if ev.HasAllPermissions() {
				t.Fatal("unauthenticated evaluator must not satisfy even an empty all-of")
			}
			if ev.HasAnyPermission(permission.ReadContent) {
				t.Fatal("unauthenticated evaluator matched any-of")
			}
			if !ev.IsAllowed(Requirement{}) {
				t.Fatal("empty requirement must always be allowed")
			}
			if ev.IsAuthenticated() {
				t.Fatal("expected unauthenticated")
			}
		})
	}
}

func TestEvaluatorQueries(t *testing.T) {
	user := evaluatorFor(permission.RoleUser)

	if !user.HasRole(permission.RoleUser) || user.HasRole(permission.RoleAdmin) || user.HasRole("") {
		t.Fatal("HasRole mismatch")
	}
	if !user.HasAnyRole(permission.RoleAdmin, permission.RoleUser) || user.HasAnyRole() {
		t.Fatal("HasAnyRole mismatch")
	}
	if !user.HasAllPermissions(permission.ReadContent, permission.EditProfile) {
		t.Fatal("user must hold read_content and edit_profile")
	}
	if user.HasAllPermissions(permission.ReadContent, permission.DeleteContent) {
		t.Fatal("user must not hold delete_content")
	}
	if !user.HasAllPermissions() {
		t.Fatal("authenticated session satisfies an empty all-of")
	}
	if !user.HasAnyPermission(permission.DeleteContent, permission.UpdateContent) {
		t.Fatal("user holds update_content")
	}
	if user.HasAnyPermission() {
		t.Fatal("empty any-of is never satisfied")
	}
	if user.HasPermission("teleport") {
		t.Fatal("unknown permission must be denied")
	}
}

func TestIsAllowed(t *testing.T) {
	admin := evaluatorFor(permission.RoleAdmin)
	user := evaluatorFor(permission.RoleUser)
	guest := evaluatorFor(permission.RoleGuest)

	tests := []struct {
		name string
		ev   Evaluator
		req  Requirement
		want bool
	}{
		{"empty", guest, Requirement{}, true},
		{"permission held", user, Requirement{Permission: permission.CreateContent}, true},
		{"permission missing", guest, Requirement{Permission: permission.CreateContent}, false},
		{"any-of default", guest, Requirement{Permissions: []permission.Permission{permission.DeleteUser, permission.ReadContent}}, true},
		{"all-of", guest, Requirement{Permissions: []permission.Permission{permission.DeleteUser, permission.ReadContent}, RequireAll: true}, false},
		{"all-of held", admin, Requirement{Permissions: []permission.Permission{permission.DeleteUser, permission.ReadContent}, RequireAll: true}, true},
		{"role match", admin, Requirement{Role: permission.RoleAdmin}, true},
		{"role mismatch", user, Requirement{Role: permission.RoleAdmin}, false},
		{"roles any", user, Requirement{Roles: []permission.Role{permission.RoleUser, permission.RoleAdmin}}, true},
		{"roles none", guest, Requirement{Roles: []permission.Role{permission.RoleUser, permission.RoleAdmin}}, false},
		// Clauses combine with AND: a held permission does not rescue a failed role clause.
		{"role clause dominates", user, Requirement{Roles: []permission.Role{permission.RoleAdmin}, Permission: permission.CreateContent}, false},
		{"permission clause dominates", admin, Requirement{Role: permission.RoleAdmin, Permission: "teleport"}, false},
		{"unknown role", admin, Requirement{Role: "superuser"}, false},
		{"every clause", admin, Requirement{
			Permission:  permission.ManageRoles,
			Permissions: []permission.Permission{permission.ViewAnalytics},
			Role:        permission.RoleAdmin,
			Roles:       []permission.Role{permission.RoleAdmin},
		}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ev.IsAllowed(tc.req); got != tc.want {
				t.Fatalf("IsAllowed(%+v) = %v, want %v", tc.req, got, tc.want)
			}
		})
	}
}

func TestGate(t *testing.T) {
	guest := evaluatorFor(permission.RoleGuest)
	req := permission.RequirePermission(permission.DeleteContent)

	if got := Gate(guest, req, "delete button"); got != "" {
		t.Fatalf("expected zero value, got %q", got)
	}
	if got := Gate(guest, req, "delete button", "read-only"); got != "read-only" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := Gate(evaluatorFor(permission.RoleAdmin), req, "delete button", "read-only"); got != "delete button" {
		t.Fatalf("expected content, got %q", got)
	}
}

func TestPermissionsForIsDeterministic(t *testing.T) {
	policy := permission.Default()
	for _, role := range policy.Roles() {
		first := policy.PermissionsFor(role)
		for i := 0; i < 10; i++ {
			if !policy.PermissionsFor(role).Equal(first) {
				t.Fatalf("permissionsFor(%s) changed between calls", role)
			}
		}
	}
}
