package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DashboardStats is the backend's /rapports/dashboard payload.
type DashboardStats struct {
	VentesJour       decimal.Decimal `json:"ventes_jour"`
	VentesMois       decimal.Decimal `json:"ventes_mois"`
	CommandesAttente int             `json:"commandes_attente"`
	AlertesActives   int             `json:"alertes_actives"`
	ProduitsRupture  int             `json:"produits_rupture"`
	ValeurStock      decimal.Decimal `json:"valeur_stock"`
	TopProduits      json.RawMessage `json:"top_produits,omitempty"`
	EvolutionVentes  json.RawMessage `json:"evolution_ventes,omitempty"`
}

// Dashboard is what the console renders on its home page. Counters the
// identity may not see are left nil.
type Dashboard struct {
	Stats                 *DashboardStats `json:"stats"`
	UnreadAlerts          *int            `json:"unread_alerts,omitempty"`
	PendingSupplyRequests *int            `json:"pending_supply_requests,omitempty"`
}
