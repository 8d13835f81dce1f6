package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role is one of the closed set of labels the backend assigns to a user.
// Labels are case-sensitive on the wire.
type Role string

const (
	RoleAdministrator    Role = "Administrateur"
	RoleCommercial       Role = "Commercial"
	RoleStockManager     Role = "GestionnaireStock"
	RoleAccountant       Role = "Comptable"
	RoleProcurementAgent Role = "AgentApprovisionnement"
)

// AllRoles lists every known role in declaration order.
var AllRoles = []Role{
	RoleAdministrator,
	RoleCommercial,
	RoleStockManager,
	RoleAccountant,
	RoleProcurementAgent,
}

var roleDisplayNames = map[Role]string{
	RoleAdministrator:    "Administrateur",
	RoleCommercial:       "Commercial",
	RoleStockManager:     "Gestionnaire de Stock",
	RoleAccountant:       "Comptable",
	RoleProcurementAgent: "Agent d'Approvisionnement",
}

// Valid reports whether r is one of the five wire labels.
func (r Role) Valid() bool {
	_, ok := roleDisplayNames[r]
	return ok
}

// DisplayName is the label shown in the console header.
func (r Role) DisplayName() string {
	if name, ok := roleDisplayNames[r]; ok {
		return name
	}
	return string(r)
}

func (r Role) String() string { return string(r) }

// UnmarshalText rejects labels outside the closed set.
func (r *Role) UnmarshalText(text []byte) error {
	candidate := Role(text)
	if !candidate.Valid() {
		return fmt.Errorf("unknown role %q", string(text))
	}
	*r = candidate
	return nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// ParseRole converts a wire label to a Role.
func ParseRole(s string) (Role, error) {
	var r Role
	if err := r.UnmarshalText([]byte(s)); err != nil {
		return "", err
	}
	return r, nil
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// RoleSetOf builds a set from the given roles.
func RoleSetOf(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s RoleSet) Len() int { return len(s) }

// SubsetOf reports whether every member of s is in other.
func (s RoleSet) SubsetOf(other RoleSet) bool {
	for r := range s {
		if !other.Contains(r) {
			return false
		}
	}
	return true
}

// Sorted returns the members in AllRoles order.
func (s RoleSet) Sorted() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return roleIndex(out[i]) < roleIndex(out[j]) })
	return out
}

func (s RoleSet) String() string {
	sorted := s.Sorted()
	labels := make([]string, len(sorted))
	for i, r := range sorted {
		labels[i] = string(r)
	}
	return "{" + strings.Join(labels, ",") + "}"
}

func roleIndex(r Role) int {
	for i, known := range AllRoles {
		if known == r {
			return i
		}
	}
	return len(AllRoles)
}
