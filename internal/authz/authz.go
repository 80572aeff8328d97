// Package authz maps an authenticated role set to task capabilities.
//
// Two tiers exist: manage (create, edit and view every task) and
// act-on-assigned, which every authenticated user holds and which only
// reaches tasks the user is assigned to.
package authz

// Principal is the already-authenticated caller
type Principal struct {
	UserID uint64
	Roles  []string
}

// Gate knows which roles grant the manage capability
type Gate struct {
	manageRoles map[string]struct{}
}

func NewGate(manageRoles []string) *Gate {
	roles := make(map[string]struct{}, len(manageRoles))
	for _, r := range manageRoles {
		roles[r] = struct{}{}
	}
	return &Gate{manageRoles: roles}
}

// Capabilities resolves the capabilities of a principal
func (g *Gate) Capabilities(p Principal) Capabilities {
	caps := Capabilities{UserID: p.UserID}
	if p.UserID == 0 {
		return caps
	}
	for _, r := range p.Roles {
		if _, ok := g.manageRoles[r]; ok {
			caps.manage = true
			break
		}
	}
	return caps
}

// Capabilities is passed explicitly to every service call
type Capabilities struct {
	UserID uint64
	manage bool
}

// Authenticated reports whether an identity backs these capabilities
func (c Capabilities) Authenticated() bool {
	return c.UserID != 0
}

// CanManage reports the manage capability
func (c Capabilities) CanManage() bool {
	return c.Authenticated() && c.manage
}

// Manager returns manage capabilities for userID. Used by seeding and tests.
func Manager(userID uint64) Capabilities {
	return Capabilities{UserID: userID, manage: true}
}

// Member returns act-on-assigned capabilities for userID
func Member(userID uint64) Capabilities {
	return Capabilities{UserID: userID}
}
