package service

import "github.com/agrocean/console/internal/core/domain"

// HasAnyRole reports whether identity holds one of roles. A nil identity or
// an empty set never matches; "no requirement" is handled by the callers.
func HasAnyRole(identity *domain.Identity, roles domain.RoleSet) bool {
	if identity == nil {
		return false
	}
	return roles.Contains(identity.Role)
}

func IsAdministrator(identity *domain.Identity) bool {
	return HasAnyRole(identity, domain.RoleSetOf(domain.RoleAdministrator))
}

func IsCommercial(identity *domain.Identity) bool {
	return HasAnyRole(identity, domain.RoleSetOf(domain.RoleCommercial))
}

func IsStockManager(identity *domain.Identity) bool {
	return HasAnyRole(identity, domain.RoleSetOf(domain.RoleStockManager))
}

func IsAccountant(identity *domain.Identity) bool {
	return HasAnyRole(identity, domain.RoleSetOf(domain.RoleAccountant))
}

func IsProcurementAgent(identity *domain.Identity) bool {
	return HasAnyRole(identity, domain.RoleSetOf(domain.RoleProcurementAgent))
}

var (
	alertViewers  = domain.RoleSetOf(domain.RoleAdministrator, domain.RoleStockManager)
	supplyViewers = domain.RoleSetOf(domain.RoleAdministrator, domain.RoleStockManager, domain.RoleProcurementAgent)
)

// CanViewAlerts gates the unread alert badge.
func CanViewAlerts(identity *domain.Identity) bool {
	return HasAnyRole(identity, alertViewers)
}

// CanViewSupplyRequests gates the pending supply request counter.
func CanViewSupplyRequests(identity *domain.Identity) bool {
	return HasAnyRole(identity, supplyViewers)
}

// Satisfies applies a route requirement: an unrestricted requirement admits
// any identity, a restricted one defers to HasAnyRole.
func Satisfies(identity *domain.Identity, req domain.RoleRequirement) bool {
	if identity == nil {
		return false
	}
	if !req.Restricted() {
		return true
	}
	return HasAnyRole(identity, req.Roles)
}
