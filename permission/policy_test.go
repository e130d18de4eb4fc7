package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyRoleSets(t *testing.T) {
	policy := Default()

	admin := policy.PermissionsFor(RoleAdmin)
	assert.Equal(t, len(AllPermissions()), admin.Len())
	assert.True(t, admin.HasAll(AllPermissions()...))

	user := policy.PermissionsFor(RoleUser)
	assert.ElementsMatch(t,
		[]Permission{ReadContent, CreateContent, UpdateContent, ViewProfile, EditProfile},
		user.Permissions(),
	)
	assert.False(t, user.Has(ManageRoles))
	assert.False(t, user.Has(DeleteContent))

	guest := policy.PermissionsFor(RoleGuest)
	assert.ElementsMatch(t, []Permission{ReadContent, ViewProfile}, guest.Permissions())
	assert.False(t, guest.Has(CreateContent))
}

func TestPermissionsForIsStable(t *testing.T) {
	policy := Default()
	for _, role := range policy.Roles() {
		first := policy.PermissionsFor(role)
		for i := 0; i < 5; i++ {
			assert.True(t, first.Equal(policy.PermissionsFor(role)), "role %s", role)
		}
	}
}

func TestPermissionsForUnknownRoleIsEmpty(t *testing.T) {
	policy := Default()

	set := policy.PermissionsFor("superuser")
	assert.True(t, set.IsEmpty())
	assert.False(t, set.Has(ReadContent))
	assert.Empty(t, set.Permissions())

	var nilPolicy *Policy
	assert.True(t, nilPolicy.PermissionsFor(RoleAdmin).IsEmpty())
}

func TestPolicyFrozenAfterBuild(t *testing.T) {
	policy := Default()

	err := policy.RegisterRole("auditor", []Permission{ReadUser})
	require.ErrorIs(t, err, ErrPolicyFrozen)

	_, err = policy.Registry().Register("export_data")
	require.ErrorIs(t, err, ErrRegistryFrozen)
	assert.False(t, policy.HasRole("auditor"))
}

func TestBuildRejectsUnregisteredPermission(t *testing.T) {
	_, err := Build([]Permission{ReadContent}, map[Role][]Permission{
		"viewer": {ReadContent, "export_data"},
	})
	require.ErrorIs(t, err, ErrPermissionNotRegistered)
}

func TestBuildAllowsRoleWithNoPermissions(t *testing.T) {
	policy, err := Build([]Permission{ReadContent}, map[Role][]Permission{
		"banned": nil,
	})
	require.NoError(t, err)
	assert.True(t, policy.HasRole("banned"))
	assert.True(t, policy.PermissionsFor("banned").IsEmpty())
}

func TestRegistryLimitsAndDuplicates(t *testing.T) {
	registry := NewRegistry()

	bit, err := registry.Register(ReadContent)
	require.NoError(t, err)
	assert.Equal(t, 0, bit)

	_, err = registry.Register(ReadContent)
	require.ErrorIs(t, err, ErrPermissionExists)

	_, err = registry.Register("")
	require.ErrorIs(t, err, ErrEmptyPermission)

	for i := 1; i < MaxPermissions; i++ {
		_, err := registry.Register(Permission("p" + string(rune('A'+i%26)) + string(rune('a'+i/26))))
		require.NoError(t, err)
	}
	_, err = registry.Register("one_too_many")
	require.ErrorIs(t, err, ErrPermissionLimit)
	assert.Equal(t, MaxPermissions, registry.Count())
}

func TestSetEqualityAcrossRegistries(t *testing.T) {
	a := Default()
	b := Default()

	assert.False(t, a.PermissionsFor(RoleGuest).Equal(b.PermissionsFor(RoleGuest)))
	assert.True(t, a.PermissionsFor("nobody").Equal(b.PermissionsFor("nobody")))
}
