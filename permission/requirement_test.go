package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementValidate(t *testing.T) {
	policy := Default()

	tests := []struct {
		name    string
		req     Requirement
		wantErr error
	}{
		{name: "empty", req: Requirement{}},
		{name: "known permission", req: RequirePermission(ManageRoles)},
		{name: "known roles", req: RequireAnyRole(RoleAdmin, RoleUser)},
		{name: "unknown permission", req: RequirePermission("fly"), wantErr: ErrPermissionNotRegistered},
		{name: "unknown role in list", req: RequireAnyRole(RoleAdmin, "owner"), wantErr: ErrRoleNotRegistered},
		{name: "empty permission in list", req: Requirement{Permissions: []Permission{""}}, wantErr: ErrEmptyPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(policy)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequirementIsEmpty(t *testing.T) {
	assert.True(t, Requirement{}.IsEmpty())
	assert.True(t, Requirement{RequireAll: true}.IsEmpty())
	assert.False(t, RequireAnyRole(RoleGuest).IsEmpty())
}

func TestRouteTableMatch(t *testing.T) {
	table := DefaultRouteTable()

	route, ok := table.Match("/admin/users/42")
	require.True(t, ok)
	assert.Equal(t, "/admin/users", route.Path)

	route, ok = table.Match("/admin/")
	require.True(t, ok)
	assert.Equal(t, "/admin", route.Path)

	route, ok = table.Match("/dashboard")
	require.True(t, ok)
	assert.Equal(t, []Permission{ReadContent}, route.Permissions)
	assert.Equal(t, DefaultFallbackPath, route.Fallback)

	_, ok = table.Match("/")
	assert.False(t, ok)
	_, ok = table.Match("/administrator")
	assert.False(t, ok)
	_, ok = table.Match("relative")
	assert.False(t, ok)
}

func TestRouteTableRejectsDuplicates(t *testing.T) {
	_, err := NewRouteTable(
		Route{Path: "/admin"},
		Route{Path: "/admin/"},
	)
	require.ErrorIs(t, err, ErrInvalidRoute)

	_, err = NewRouteTable(Route{Path: "/x", Fallback: "login"})
	require.ErrorIs(t, err, ErrInvalidRoute)
}

func TestDefaultRoutesValidateAgainstDefaultPolicy(t *testing.T) {
	require.NoError(t, DefaultRouteTable().Validate(Default()))
}
