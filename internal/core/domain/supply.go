package domain

// SupplyRequestStatus is the backend's statut for a demande d'approvisionnement.
type SupplyRequestStatus string

const (
	SupplyDraft      SupplyRequestStatus = "Brouillon"
	SupplySent       SupplyRequestStatus = "Envoyée"
	SupplyInProgress SupplyRequestStatus = "EnCours"
	SupplyProcessed  SupplyRequestStatus = "Traitée"
	SupplyRejected   SupplyRequestStatus = "Rejetée"
	SupplyCancelled  SupplyRequestStatus = "Annulée"
)

// Closed reports whether no further action applies.
func (s SupplyRequestStatus) Closed() bool {
	return s == SupplyProcessed || s == SupplyRejected || s == SupplyCancelled
}

// SupplyAction is a nested action endpoint on /demandes-approvisionnement/{id}.
type SupplyAction string

const (
	ActionSend    SupplyAction = "envoyer"
	ActionCancel  SupplyAction = "annuler"
	ActionTakeOn  SupplyAction = "prendre-en-charge"
	ActionProcess SupplyAction = "traiter"
	ActionReject  SupplyAction = "rejeter"
)

// SupplyActions lists every action in display order.
var SupplyActions = []SupplyAction{ActionSend, ActionCancel, ActionTakeOn, ActionProcess, ActionReject}

// SupplyActionAllowed mirrors the backend's workflow so the console can grey
// out buttons. The backend still decides.
func SupplyActionAllowed(role Role, status SupplyRequestStatus, action SupplyAction) bool {
	switch action {
	case ActionSend:
		return role == RoleStockManager && status == SupplyDraft
	case ActionCancel:
		return role == RoleStockManager && !status.Closed()
	case ActionTakeOn:
		return role == RoleProcurementAgent && status == SupplySent
	case ActionProcess, ActionReject:
		return role == RoleProcurementAgent && (status == SupplySent || status == SupplyInProgress)
	default:
		return false
	}
}

// AllowedSupplyActions returns the actions available to role, in display order.
func AllowedSupplyActions(role Role, status SupplyRequestStatus) []SupplyAction {
	out := make([]SupplyAction, 0, len(SupplyActions))
	for _, a := range SupplyActions {
		if SupplyActionAllowed(role, status, a) {
			out = append(out, a)
		}
	}
	return out
}
