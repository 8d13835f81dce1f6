package domain

import "strings"

const (
	HomePath  = "/dashboard"
	LoginPath = "/login"
)

// RoleRequirement gates a route or menu entry. An empty set means any
// authenticated identity may pass.
type RoleRequirement struct {
	Roles RoleSet
}

// Restricted reports whether the requirement names at least one role.
func (r RoleRequirement) Restricted() bool {
	return r.Roles.Len() > 0
}

// Route is one top-level feature area of the console.
type Route struct {
	Area        string
	Title       string
	Public      bool
	Requirement RoleRequirement
}

// Path is the area's root path, e.g. "/ventes".
func (r Route) Path() string {
	return "/" + r.Area
}

func requires(roles ...Role) RoleRequirement {
	return RoleRequirement{Roles: RoleSetOf(roles...)}
}

// Routes is the only declaration of which roles reach which area. The page
// guard, the API proxy and the menu all read it.
var Routes = []Route{
	{Area: "login", Title: "Connexion", Public: true},
	{Area: "dashboard", Title: "Tableau de bord"},
	{Area: "utilisateurs", Title: "Utilisateurs", Requirement: requires(RoleAdministrator)},
	{Area: "clients", Title: "Clients", Requirement: requires(RoleAdministrator, RoleCommercial)},
	{Area: "produits", Title: "Produits"},
	{Area: "stocks", Title: "Stocks", Requirement: requires(RoleAdministrator, RoleStockManager)},
	{Area: "ventes", Title: "Ventes", Requirement: requires(RoleAdministrator, RoleCommercial)},
	{Area: "commandes-achat", Title: "Commandes d'achat", Requirement: requires(RoleAdministrator, RoleProcurementAgent)},
	{Area: "fournisseurs", Title: "Fournisseurs", Requirement: requires(RoleAdministrator, RoleProcurementAgent)},
	{Area: "finances", Title: "Finances", Requirement: requires(RoleAdministrator, RoleAccountant)},
	{Area: "rapports", Title: "Rapports", Requirement: requires(RoleAdministrator)},
	{Area: "entrepots", Title: "Entrepôts", Requirement: requires(RoleAdministrator, RoleStockManager)},
	{Area: "categories", Title: "Catégories", Requirement: requires(RoleAdministrator, RoleStockManager)},
	{Area: "demandes-approvisionnement", Title: "Demandes d'approvisionnement", Requirement: requires(RoleAdministrator, RoleStockManager, RoleProcurementAgent)},
	{Area: "livraisons", Title: "Livraisons", Requirement: requires(RoleAdministrator, RoleCommercial)},
	{Area: "profile", Title: "Mon profil"},
}

var routesByArea = func() map[string]Route {
	m := make(map[string]Route, len(Routes))
	for _, r := range Routes {
		m[r.Area] = r
	}
	return m
}()

// RouteFor returns the route declared for an area.
func RouteFor(area string) (Route, bool) {
	r, ok := routesByArea[area]
	return r, ok
}

// AreaOf extracts the first path segment: "/ventes/create?x=1" -> "ventes".
func AreaOf(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

// ResolveRoute matches a path against the table. A false result means the
// path should fall back to HomePath.
func ResolveRoute(path string) (Route, bool) {
	return RouteFor(AreaOf(path))
}
