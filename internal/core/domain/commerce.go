package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderLine is one line of a purchase order or sale being composed.
type OrderLine struct {
	ProduitID    int64           `json:"produit_id" validate:"required,gt=0"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
}

// SousTotal is quantite * prix_unitaire.
func (l OrderLine) SousTotal() decimal.Decimal {
	return l.Quantite.Mul(l.PrixUnitaire)
}

// OrderTotal sums the line sub-totals.
func OrderTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.SousTotal())
	}
	return total
}

// ValidateOrderLines rejects negative quantities and prices.
func ValidateOrderLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return &ValidationError{Message: "au moins une ligne est requise", Fields: map[string][]string{
			"lignes": {"au moins une ligne est requise"},
		}}
	}
	fields := map[string][]string{}
	for i, l := range lines {
		if !l.Quantite.IsPositive() {
			fields[lineField(i, "quantite")] = []string{"la quantité doit être supérieure à 0"}
		}
		if l.PrixUnitaire.IsNegative() {
			fields[lineField(i, "prix_unitaire")] = []string{"le prix unitaire ne peut pas être négatif"}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func lineField(i int, name string) string {
	return fmt.Sprintf("lignes.%d.%s", i, name)
}

// ReorderSuggestion proposes a quantity when stock is below threshold:
// max(seuil - stock, seuil). It returns false when no reorder is needed.
func ReorderSuggestion(stock, seuil decimal.Decimal) (decimal.Decimal, bool) {
	if !stock.LessThan(seuil) {
		return decimal.Zero, false
	}
	return decimal.Max(seuil.Sub(stock), seuil), true
}
