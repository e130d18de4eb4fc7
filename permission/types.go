package permission

// Role is a coarse-grained identity category. A user carries exactly one.
type Role string

// Permission is a fine-grained capability identifier.
type Permission string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

const (
	CreateUser Permission = "create_user"
	ReadUser   Permission = "read_user"
	UpdateUser Permission = "update_user"
	DeleteUser Permission = "delete_user"

	CreateContent Permission = "create_content"
	ReadContent   Permission = "read_content"
	UpdateContent Permission = "update_content"
	DeleteContent Permission = "delete_content"

	ManageRoles    Permission = "manage_roles"
	ViewAnalytics  Permission = "view_analytics"
	SystemSettings Permission = "system_settings"

	ViewProfile Permission = "view_profile"
	EditProfile Permission = "edit_profile"
)

// AllPermissions lists the built-in permissions in registration order.
// The order fixes bit positions in the default [Registry].
func AllPermissions() []Permission {
	return []Permission{
		CreateUser,
		ReadUser,
		UpdateUser,
		DeleteUser,
		CreateContent,
		ReadContent,
		UpdateContent,
		DeleteContent,
		ManageRoles,
		ViewAnalytics,
		SystemSettings,
		ViewProfile,
		EditProfile,
	}
}

// DefaultRolePermissions returns the built-in role map. The returned map is a
// fresh copy on every call.
func DefaultRolePermissions() map[Role][]Permission {
	return map[Role][]Permission{
		RoleAdmin: AllPermissions(),
		RoleUser: {
			ReadContent,
			CreateContent,
			UpdateContent,
			ViewProfile,
			EditProfile,
		},
		RoleGuest: {
			ReadContent,
			ViewProfile,
		},
	}
}
