package backend

import (
	"github.com/shopspring/decimal"

	"github.com/agrocean/console/internal/core/domain"
)

// Wire models of the AGROCEAN REST API. Amounts are decimals; dates stay in
// the backend's string form.

type ClientRecord struct {
	ID        int64           `json:"id,omitempty"`
	Nom       string          `json:"nom"`
	Email     string          `json:"email,omitempty"`
	Telephone string          `json:"telephone"`
	Adresse   string          `json:"adresse"`
	Type      string          `json:"type"`
	CreditMax decimal.Decimal `json:"credit_max"`
	Solde     decimal.Decimal `json:"solde"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

type Fournisseur struct {
	ID         int64           `json:"id,omitempty"`
	Nom        string          `json:"nom"`
	Contact    string          `json:"contact"`
	Telephone  string          `json:"telephone"`
	Adresse    string          `json:"adresse"`
	Evaluation decimal.Decimal `json:"evaluation"`
	Conditions string          `json:"conditions,omitempty"`
	CreatedAt  string          `json:"created_at,omitempty"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
}

type Categorie struct {
	ID            int64  `json:"id,omitempty"`
	Nom           string `json:"nom"`
	Description   string `json:"description,omitempty"`
	TypeStockage  string `json:"type_stockage"`
	ProduitsCount int    `json:"produits_count,omitempty"`
}

type Produit struct {
	ID           int64           `json:"id,omitempty"`
	Code         string          `json:"code"`
	Nom          string          `json:"nom"`
	Description  string          `json:"description,omitempty"`
	CategorieID  int64           `json:"categorie_id"`
	Categorie    *Categorie      `json:"categorie,omitempty"`
	PrixAchat    decimal.Decimal `json:"prix_achat"`
	PrixVente    decimal.Decimal `json:"prix_vente"`
	SeuilMinimum decimal.Decimal `json:"seuil_minimum"`
	Peremption   bool            `json:"peremption"`
	StockTotal   decimal.Decimal `json:"stock_total"`
	Marge        decimal.Decimal `json:"marge"`
}

// ReorderSuggestion applies the console's reorder rule to this product.
func (p Produit) ReorderSuggestion() (decimal.Decimal, bool) {
	return domain.ReorderSuggestion(p.StockTotal, p.SeuilMinimum)
}

type Entrepot struct {
	ID                 int64           `json:"id,omitempty"`
	Nom                string          `json:"nom"`
	Adresse            string          `json:"adresse"`
	Capacite           decimal.Decimal `json:"capacite"`
	TypeFroid          string          `json:"type_froid"`
	CapaciteDisponible decimal.Decimal `json:"capacite_disponible"`
	StocksCount        int             `json:"stocks_count,omitempty"`
}

type Stock struct {
	ID             int64           `json:"id,omitempty"`
	ProduitID      int64           `json:"produit_id"`
	Produit        *Produit        `json:"produit,omitempty"`
	EntrepotID     int64           `json:"entrepot_id"`
	Entrepot       *Entrepot       `json:"entrepot,omitempty"`
	Quantite       decimal.Decimal `json:"quantite"`
	Emplacement    string          `json:"emplacement"`
	DateEntree     string          `json:"date_entree"`
	NumeroLot      string          `json:"numero_lot,omitempty"`
	DatePeremption string          `json:"date_peremption,omitempty"`
	Statut         string          `json:"statut"`
	Valeur         decimal.Decimal `json:"valeur"`
	EtatPeremption string          `json:"etat_peremption,omitempty"`
}

type LigneDetail struct {
	ID           int64           `json:"id,omitempty"`
	ProduitID    int64           `json:"produit_id"`
	Produit      *Produit        `json:"produit,omitempty"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
	SousTotal    decimal.Decimal `json:"sous_total"`
}

type Vente struct {
	ID           int64           `json:"id,omitempty"`
	Numero       string          `json:"numero"`
	ClientID     int64           `json:"client_id"`
	Client       *ClientRecord   `json:"client,omitempty"`
	UserID       int64           `json:"user_id"`
	DateVente    string          `json:"date_vente"`
	MontantHT    decimal.Decimal `json:"montant_ht"`
	MontantTTC   decimal.Decimal `json:"montant_ttc"`
	Remise       decimal.Decimal `json:"remise"`
	Statut       string          `json:"statut"`
	DetailVentes []LigneDetail   `json:"detail_ventes,omitempty"`
	Facture      *Facture        `json:"facture,omitempty"`
	Livraison    *Livraison      `json:"livraison,omitempty"`
}

type CommandeAchat struct {
	ID                  int64           `json:"id,omitempty"`
	Numero              string          `json:"numero"`
	FournisseurID       int64           `json:"fournisseur_id"`
	Fournisseur         *Fournisseur    `json:"fournisseur,omitempty"`
	UserID              int64           `json:"user_id"`
	DateCommande        string          `json:"date_commande"`
	DateLivraisonPrevue string          `json:"date_livraison_prevue,omitempty"`
	Statut              string          `json:"statut"`
	MontantTotal        decimal.Decimal `json:"montant_total"`
	Details             []LigneDetail   `json:"detail_commande_achats,omitempty"`
}

type Livraison struct {
	ID            int64  `json:"id,omitempty"`
	VenteID       int64  `json:"vente_id"`
	DatePrevue    string `json:"date_prevue"`
	DateEffective string `json:"date_effective,omitempty"`
	Adresse       string `json:"adresse"`
	Statut        string `json:"statut"`
	Livreur       string `json:"livreur,omitempty"`
}

type Facture struct {
	ID             int64           `json:"id,omitempty"`
	Numero         string          `json:"numero"`
	VenteID        int64           `json:"vente_id"`
	DateEmission   string          `json:"date_emission"`
	DateEcheance   string          `json:"date_echeance"`
	MontantTTC     decimal.Decimal `json:"montant_ttc"`
	Statut         string          `json:"statut"`
	Paiements      []Paiement      `json:"paiements,omitempty"`
	MontantPaye    decimal.Decimal `json:"montant_paye"`
	MontantRestant decimal.Decimal `json:"montant_restant"`
	JoursRetard    int             `json:"jours_retard,omitempty"`
}

type FactureFournisseur struct {
	ID              int64           `json:"id,omitempty"`
	Numero          string          `json:"numero"`
	CommandeAchatID int64           `json:"commande_achat_id"`
	FournisseurID   int64           `json:"fournisseur_id"`
	Fournisseur     *Fournisseur    `json:"fournisseur,omitempty"`
	DateEmission    string          `json:"date_emission"`
	DateEcheance    string          `json:"date_echeance"`
	MontantTotal    decimal.Decimal `json:"montant_total"`
	Statut          string          `json:"statut"`
	MontantPaye     decimal.Decimal `json:"montant_paye"`
	MontantRestant  decimal.Decimal `json:"montant_restant"`
	JoursRetard     int             `json:"jours_retard,omitempty"`
}

type Paiement struct {
	ID                   int64           `json:"id,omitempty"`
	FactureID            int64           `json:"facture_id,omitempty"`
	FactureFournisseurID int64           `json:"facture_fournisseur_id,omitempty"`
	ClientID             int64           `json:"client_id,omitempty"`
	FournisseurID        int64           `json:"fournisseur_id,omitempty"`
	Montant              decimal.Decimal `json:"montant"`
	DatePaiement         string          `json:"date_paiement"`
	ModePaiement         string          `json:"mode_paiement"`
	Reference            string          `json:"reference,omitempty"`
}

type Alerte struct {
	ID        int64  `json:"id,omitempty"`
	Type      string `json:"type"`
	ProduitID int64  `json:"produit_id,omitempty"`
	Message   string `json:"message"`
	Lue       bool   `json:"lue"`
	CreatedAt string `json:"created_at,omitempty"`
}

type BilanFinancier struct {
	ID                  int64           `json:"id,omitempty"`
	Periode             string          `json:"periode"`
	DateDebut           string          `json:"date_debut"`
	DateFin             string          `json:"date_fin"`
	ChiffreAffaires     decimal.Decimal `json:"chiffre_affaires"`
	ChargesExploitation decimal.Decimal `json:"charges_exploitation"`
	BeneficeNet         decimal.Decimal `json:"benefice_net"`
	MargeGlobale        decimal.Decimal `json:"marge_globale"`
}

// Utilisateur is a user as managed by administrators. It is distinct from
// the session identity so an unknown role in a listing does not fail it.
type Utilisateur struct {
	ID        int64  `json:"id,omitempty"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone,omitempty"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
}

type DemandeApprovisionnement struct {
	ID                    int64                      `json:"id,omitempty"`
	Numero                string                     `json:"numero"`
	DemandeurID           int64                      `json:"demandeur_id"`
	DestinataireID        int64                      `json:"destinataire_id,omitempty"`
	DateDemande           string                     `json:"date_demande"`
	Motif                 string                     `json:"motif,omitempty"`
	Priorite              string                     `json:"priorite"`
	Statut                domain.SupplyRequestStatus `json:"statut"`
	DateTraitement        string                     `json:"date_traitement,omitempty"`
	CommentaireTraitement string                     `json:"commentaire_traitement,omitempty"`
	Details               []DetailDemande            `json:"detail_demandes,omitempty"`
}

type DetailDemande struct {
	ID               int64           `json:"id,omitempty"`
	ProduitID        int64           `json:"produit_id"`
	Produit          *Produit        `json:"produit,omitempty"`
	QuantiteDemandee decimal.Decimal `json:"quantite_demandee"`
	QuantiteActuelle decimal.Decimal `json:"quantite_actuelle"`
	SeuilMinimum     decimal.Decimal `json:"seuil_minimum"`
	Justification    string          `json:"justification,omitempty"`
}

// countResponse is the {"count": n} shape of the badge endpoints.
type countResponse struct {
	Count int `json:"count"`
}
