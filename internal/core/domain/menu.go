package domain

import "fmt"

// MenuItem is one rendered navigation entry.
type MenuItem struct {
	Label      string     `json:"label"`
	Icon       string     `json:"icon"`
	RouterLink string     `json:"routerLink,omitempty"`
	Items      []MenuItem `json:"items,omitempty"`
}

// MenuEntry is the static declaration behind a MenuItem. Only narrows the
// section's requirement for this entry alone.
type MenuEntry struct {
	Label      string
	Icon       string
	RouterLink string
	Only       RoleSet
	Children   []MenuEntry
}

// MenuSection groups entries behind the requirement of its gate area.
type MenuSection struct {
	Name    string
	Gate    string
	Entries []MenuEntry
}

// Requirement is the gate area's route requirement.
func (s MenuSection) Requirement() RoleRequirement {
	r, _ := RouteFor(s.Gate)
	return r.Requirement
}

// HomeEntry is always rendered first.
var HomeEntry = MenuEntry{Label: "Dashboard", Icon: "pi pi-home", RouterLink: HomePath}

// MenuSections is rendered in this order.
var MenuSections = []MenuSection{
	{
		Name: "administration",
		Gate: "utilisateurs",
		Entries: []MenuEntry{
			{Label: "Utilisateurs", Icon: "pi pi-users", RouterLink: "/utilisateurs"},
			{Label: "Rapports", Icon: "pi pi-chart-bar", Children: []MenuEntry{
				{Label: "Rapport Financier", Icon: "pi pi-dollar", RouterLink: "/rapports/financier"},
				{Label: "Rapport Stocks", Icon: "pi pi-box", RouterLink: "/rapports/stocks"},
				{Label: "Rapport Ventes", Icon: "pi pi-shopping-cart", RouterLink: "/rapports/ventes"},
				{Label: "Performances", Icon: "pi pi-chart-line", RouterLink: "/rapports/performances"},
			}},
		},
	},
	{
		Name: "commercial",
		Gate: "clients",
		Entries: []MenuEntry{
			{Label: "Clients", Icon: "pi pi-users", RouterLink: "/clients"},
			{Label: "Ventes", Icon: "pi pi-shopping-cart", Children: []MenuEntry{
				{Label: "Liste des ventes", Icon: "pi pi-list", RouterLink: "/ventes"},
				{Label: "Nouvelle vente", Icon: "pi pi-plus", RouterLink: "/ventes/create"},
				{Label: "Devis", Icon: "pi pi-file", RouterLink: "/ventes/devis"},
			}},
		},
	},
	{
		Name: "stock",
		Gate: "stocks",
		Entries: []MenuEntry{
			{Label: "Produits", Icon: "pi pi-tag", RouterLink: "/produits"},
			{Label: "Stocks", Icon: "pi pi-box", Children: []MenuEntry{
				{Label: "Vue des stocks", Icon: "pi pi-eye", RouterLink: "/stocks"},
				{Label: "Entrées/Sorties", Icon: "pi pi-arrow-right-arrow-left", RouterLink: "/stocks/mouvements"},
				{Label: "Inventaire", Icon: "pi pi-list-check", RouterLink: "/stocks/inventaire"},
				{Label: "Alertes", Icon: "pi pi-bell", RouterLink: "/stocks/alertes"},
			}},
			{Label: "Catégories", Icon: "pi pi-th-large", RouterLink: "/categories"},
			{Label: "Entrepôts", Icon: "pi pi-building", RouterLink: "/entrepots"},
			{Label: "Demandes d'Approvisionnement", Icon: "pi pi-inbox", RouterLink: "/demandes-approvisionnement"},
		},
	},
	{
		Name: "procurement",
		Gate: "fournisseurs",
		Entries: []MenuEntry{
			{Label: "Fournisseurs", Icon: "pi pi-truck", RouterLink: "/fournisseurs"},
			{Label: "Commandes Achat", Icon: "pi pi-shopping-bag", Children: []MenuEntry{
				{Label: "Liste des commandes", Icon: "pi pi-list", RouterLink: "/commandes-achat"},
				{Label: "Nouvelle commande", Icon: "pi pi-plus", RouterLink: "/commandes-achat/create"},
				{Label: "Réceptions", Icon: "pi pi-inbox", RouterLink: "/commandes-achat/receptions"},
			}},
			// Administrators reach the same page through the stock section.
			{Label: "Reception demande Appro", Icon: "pi pi-inbox", RouterLink: "/demandes-approvisionnement",
				Only: RoleSetOf(RoleProcurementAgent)},
		},
	},
	{
		Name: "finance",
		Gate: "finances",
		Entries: []MenuEntry{
			{Label: "Finances", Icon: "pi pi-dollar", Children: []MenuEntry{
				{Label: "Paiements", Icon: "pi pi-money-bill", RouterLink: "/finances/paiements"},
				{Label: "Factures", Icon: "pi pi-file", RouterLink: "/finances/factures"},
				{Label: "Créances", Icon: "pi pi-clock", RouterLink: "/finances/creances"},
				{Label: "Factures fournisseurs", Icon: "pi pi-file", RouterLink: "/finances/factures-fournisseurs"},
				{Label: "Trésorerie", Icon: "pi pi-wallet", RouterLink: "/finances/tresorerie"},
			}},
		},
	},
	{
		Name: "deliveries",
		Gate: "livraisons",
		Entries: []MenuEntry{
			{Label: "Livraisons", Icon: "pi pi-car", RouterLink: "/livraisons"},
		},
	},
}

// ValidateMenu checks the menu declaration against the route table: every
// gate and link resolves, overrides only narrow, and no entry is shown to a
// role the page guard would turn away.
func ValidateMenu(sections []MenuSection) error {
	for _, s := range sections {
		gate, ok := RouteFor(s.Gate)
		if !ok {
			return fmt.Errorf("menu section %q: unknown gate area %q", s.Name, s.Gate)
		}
		if !gate.Requirement.Restricted() {
			return fmt.Errorf("menu section %q: gate area %q is not role restricted", s.Name, s.Gate)
		}
		for _, e := range s.Entries {
			if err := validateEntry(s, gate.Requirement.Roles, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateEntry(s MenuSection, parent RoleSet, e MenuEntry) error {
	effective := parent
	if e.Only != nil {
		if e.Only.Len() == 0 {
			return fmt.Errorf("menu %s/%s: empty override", s.Name, e.Label)
		}
		if !e.Only.SubsetOf(parent) {
			return fmt.Errorf("menu %s/%s: override %s widens %s", s.Name, e.Label, e.Only, parent)
		}
		effective = e.Only
	}
	if e.RouterLink == "" && len(e.Children) == 0 {
		return fmt.Errorf("menu %s/%s: neither link nor children", s.Name, e.Label)
	}
	if e.RouterLink != "" {
		target, ok := ResolveRoute(e.RouterLink)
		if !ok {
			return fmt.Errorf("menu %s/%s: link %q matches no route", s.Name, e.Label, e.RouterLink)
		}
		if target.Requirement.Restricted() && !effective.SubsetOf(target.Requirement.Roles) {
			return fmt.Errorf("menu %s/%s: shown to %s but %s requires %s",
				s.Name, e.Label, effective, target.Path(), target.Requirement.Roles)
		}
	}
	for _, child := range e.Children {
		if err := validateEntry(s, effective, child); err != nil {
			return err
		}
	}
	return nil
}
