package identity

// RoleResolver answers role-membership questions for task authorization and
// role-based task listing. The identity subsystem owns the real
// implementation; the engine only consumes this boundary.
type RoleResolver interface {
	HasRole(userId string, role string) (bool, error)
}

// StaticResolver resolves roles from a fixed user->roles map. Used in tests
// and single-node deployments without an identity service.
type StaticResolver struct {
	roles map[string][]string
}

var _ RoleResolver = new(StaticResolver)

func NewStaticResolver(roles map[string][]string) *StaticResolver {
	return &StaticResolver{roles: roles}
}

func (r *StaticResolver) HasRole(userId string, role string) (bool, error) {
	for _, have := range r.roles[userId] {
		if have == role {
			return true, nil
		}
	}
	return false, nil
}
