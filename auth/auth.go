package auth

import (
	"fmt"
	"path"
)

// Privilege is a bit set of capabilities on a resource.
type Privilege uint

const (
	NoPrivileges Privilege = 1 << iota

	// AuditPrivilege allows reading an entity.
	AuditPrivilege
	// UsePrivilege allows targeting an entity, e.g. sending test notifications.
	UsePrivilege
	// ModifyPrivilege allows creating, updating and deleting an entity.
	ModifyPrivilege

	AllPrivileges
)

// PrivilegeList is every single privilege in ascending order.
var PrivilegeList = []Privilege{NoPrivileges, AuditPrivilege, UsePrivilege, ModifyPrivilege, AllPrivileges}

func (p Privilege) String() string {
	switch p {
	case NoPrivileges:
		return "none"
	case AuditPrivilege:
		return "audit"
	case UsePrivilege:
		return "use"
	case ModifyPrivilege:
		return "modify"
	case AllPrivileges:
		return "all"
	default:
		return "unknown"
	}
}

// NotificationRoot is the resource under which all notification entities live.
const NotificationRoot = "/mapping/notification"

// NotificationResource returns the resource path of a named notification entity.
func NotificationResource(name string) string {
	return path.Join(NotificationRoot, name)
}

type Action struct {
	Resource  string
	Privilege Privilege
}

// This structure is designed to be immutable, to avoid bugs/exploits where
// the user could be modified by external code.
// For this reason all fields are private and methods are value receivers.
type User struct {
	name  string
	admin bool
	// Map of resource -> Bitmask of Privileges
	privileges map[string]Privilege
}

// NewUser creates a user with the given privileges per resource path.
func NewUser(name string, admin bool, privileges map[string][]Privilege) User {
	ps := make(map[string]Privilege, len(privileges))
	for resource, privileges := range privileges {
		clean := path.Clean(resource)
		mask := Privilege(0)
		for _, p := range privileges {
			mask |= p
		}
		ps[clean] = mask
	}
	return User{
		name:       name,
		admin:      admin,
		privileges: ps,
	}
}

// This user has all privileges for all resources.
var AdminUser = NewUser("ADMIN_USER", true, nil)

func (u User) Name() string {
	return u.name
}

// Privileges returns a copy of the user's privileges.
func (u User) Privileges() map[string][]Privilege {
	privileges := make(map[string][]Privilege)
	for r, ps := range u.privileges {
		for _, p := range PrivilegeList {
			if ps&p != 0 {
				privileges[r] = append(privileges[r], p)
			}
		}
	}
	return privileges
}

// AuthorizeAction returns nil if the action is authorized, otherwise an error describing the needed privilege.
// A privilege granted on /a/b also applies to /a/b/c.
func (u User) AuthorizeAction(action Action) error {
	if action.Privilege == NoPrivileges || u.admin {
		return nil
	}
	if !path.IsAbs(action.Resource) {
		return fmt.Errorf("invalid action resource: %q, must be an absolute path", action.Resource)
	}
	if len(u.privileges) > 0 {
		// Clean path to prevent path traversal like /a/b/../d when user has access to /a/b
		resource := path.Clean(action.Resource)
		for {
			if p, ok := u.privileges[resource]; ok {
				if p&action.Privilege != 0 || p&AllPrivileges != 0 {
					return nil
				}
				break
			}
			if resource == "/" {
				break
			}
			resource = path.Dir(resource)
		}
	}
	return fmt.Errorf("user %s does not have \"%v\" privilege for resource %q", u.name, action.Privilege, action.Resource)
}

// CheckFunc reports whether the caller holds a capability on the named entity.
type CheckFunc func(name string) bool

// Check returns a CheckFunc for the privilege on notification entities.
func (u User) Check(p Privilege) CheckFunc {
	return func(name string) bool {
		return u.AuthorizeAction(Action{Resource: NotificationResource(name), Privilege: p}) == nil
	}
}
