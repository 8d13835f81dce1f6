package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

// Catalog groups the typed clients of every backend collection.
type Catalog struct {
	c *Client

	Clients              *Resource[ClientRecord]
	Stocks               *Resource[Stock]
	Ventes               *Resource[Vente]
	CommandesAchat       *Resource[CommandeAchat]
	Fournisseurs         *Resource[Fournisseur]
	Categories           *Resource[Categorie]
	Entrepots            *Resource[Entrepot]
	Livraisons           *Resource[Livraison]
	Factures             *Resource[Facture]
	FacturesFournisseurs *Resource[FactureFournisseur]
	Paiements            *Resource[Paiement]
	Alertes              *Resource[Alerte]
	Utilisateurs         *Resource[Utilisateur]
	Bilans               *Resource[BilanFinancier]
	Produits             *Resource[Produit]
	Demandes             *Resource[DemandeApprovisionnement]
}

func NewCatalog(c *Client) *Catalog {
	return &Catalog{
		c:                    c,
		Clients:              NewResource[ClientRecord](c, "/clients"),
		Stocks:               NewResource[Stock](c, "/stocks"),
		Ventes:               NewResource[Vente](c, "/ventes"),
		CommandesAchat:       NewResource[CommandeAchat](c, "/commandes-achat"),
		Fournisseurs:         NewResource[Fournisseur](c, "/fournisseurs"),
		Categories:           NewResource[Categorie](c, "/categories"),
		Entrepots:            NewResource[Entrepot](c, "/entrepots"),
		Livraisons:           NewResource[Livraison](c, "/livraisons"),
		Factures:             NewResource[Facture](c, "/factures"),
		FacturesFournisseurs: NewResource[FactureFournisseur](c, "/factures-fournisseurs"),
		Paiements:            NewResource[Paiement](c, "/paiements"),
		Alertes:              NewResource[Alerte](c, "/alertes"),
		Utilisateurs:         NewResource[Utilisateur](c, "/users"),
		Bilans:               NewResource[BilanFinancier](c, "/bilans"),
		Produits:             NewResource[Produit](c, "/produits"),
		Demandes:             NewResource[DemandeApprovisionnement](c, "/demandes-approvisionnement"),
	}
}

var _ ports.DashboardAPI = (*Catalog)(nil)

// DashboardStats reads /rapports/dashboard.
func (k *Catalog) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := k.c.do(ctx, request{method: http.MethodGet, path: "/rapports/dashboard", out: &stats}); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}

// Report reads one of the /rapports views (financier, stocks, ventes,
// performances) with optional date bounds.
func (k *Catalog) Report(ctx context.Context, kind string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	if err := k.c.do(ctx, request{method: http.MethodGet, path: "/rapports/" + kind, query: query, out: &out}); err != nil {
		return nil, fmt.Errorf("report %s: %w", kind, err)
	}
	return out, nil
}

func (k *Catalog) UnreadAlertCount(ctx context.Context) (int, error) {
	var out countResponse
	if err := k.Alertes.Query(ctx, "non-lues/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (k *Catalog) MarkAlertRead(ctx context.Context, id int64) error {
	return k.Alertes.Action(ctx, id, "lire", nil, nil)
}

func (k *Catalog) MarkAllAlertsRead(ctx context.Context) error {
	return k.Alertes.Collection(ctx, "tout-lire", nil, nil)
}

func (k *Catalog) PendingSupplyRequestCount(ctx context.Context) (int, error) {
	var out countResponse
	if err := k.Demandes.Query(ctx, "count/en-attente", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// SupplyRequestAction runs a workflow step on a demande. destinataire is
// only read by envoyer, commentaire by traiter and rejeter.
func (k *Catalog) SupplyRequestAction(ctx context.Context, id int64, action domain.SupplyAction, destinataire int64, commentaire string) error {
	var body any
	switch action {
	case domain.ActionSend:
		body = map[string]int64{"destinataire_id": destinataire}
	case domain.ActionProcess, domain.ActionReject:
		body = map[string]string{"commentaire": commentaire}
	case domain.ActionCancel, domain.ActionTakeOn:
	default:
		return fmt.Errorf("supply request: unknown action %q", action)
	}
	return k.Demandes.Action(ctx, id, string(action), body, nil)
}

// SupplyAgents lists the procurement agents a demande can be sent to.
func (k *Catalog) SupplyAgents(ctx context.Context) ([]Utilisateur, error) {
	var raw json.RawMessage
	if err := k.Demandes.Query(ctx, "agents/liste", nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Utilisateur](raw)
}

// AdjustStock posts a signed quantity correction with its reason.
func (k *Catalog) AdjustStock(ctx context.Context, id int64, delta decimal.Decimal, motif string) error {
	body := struct {
		Ajustement decimal.Decimal `json:"ajustement"`
		Motif      string          `json:"motif"`
	}{delta, motif}
	return k.Stocks.Action(ctx, id, "ajuster", body, nil)
}

func (k *Catalog) ReceivePurchaseOrder(ctx context.Context, id int64, reception any) error {
	return k.CommandesAchat.Action(ctx, id, "receptionner", reception, nil)
}

func (k *Catalog) CancelPurchaseOrder(ctx context.Context, id int64, motif string) error {
	return k.CommandesAchat.Action(ctx, id, "annuler", map[string]string{"motif": motif}, nil)
}

func (k *Catalog) AssignRole(ctx context.Context, userID int64, role domain.Role) error {
	return k.Utilisateurs.Action(ctx, userID, "assign-role", map[string]domain.Role{"role": role}, nil)
}

func (k *Catalog) ToggleUserActive(ctx context.Context, userID int64) error {
	return k.Utilisateurs.Action(ctx, userID, "toggle-active", nil, nil)
}
