package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRole_UnmarshalRejectsUnknownLabel(t *testing.T) {
	var id Identity
	if err := json.Unmarshal([]byte(`{"id":1,"role":"administrateur"}`), &id); err == nil {
		t.Fatalf("expected lowercase label to be rejected")
	}
	if err := json.Unmarshal([]byte(`{"id":1,"role":"GestionnaireStock"}`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != RoleStockManager {
		t.Fatalf("unexpected role: %s", id.Role)
	}
}

func TestRole_DisplayName(t *testing.T) {
	if got := RoleProcurementAgent.DisplayName(); got != "Agent d'Approvisionnement" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := RoleStockManager.DisplayName(); got != "Gestionnaire de Stock" {
		t.Fatalf("unexpected display name: %q", got)
	}
}

func TestRoleSet_SubsetOf(t *testing.T) {
	narrow := RoleSetOf(RoleProcurementAgent)
	wide := RoleSetOf(RoleAdministrator, RoleProcurementAgent)
	if !narrow.SubsetOf(wide) {
		t.Fatalf("expected subset")
	}
	if wide.SubsetOf(narrow) {
		t.Fatalf("expected not subset")
	}
	if got := wide.String(); got != "{Administrateur,AgentApprovisionnement}" {
		t.Fatalf("unexpected string: %s", got)
	}
}

func TestAreaOf(t *testing.T) {
	cases := map[string]string{
		"/ventes/create":       "ventes",
		"/ventes":              "ventes",
		"/stocks?page=2":       "stocks",
		"/":                    "",
		"":                     "",
		"/finances/factures#x": "finances",
	}
	for in, want := range cases {
		if got := AreaOf(in); got != want {
			t.Errorf("AreaOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoutes_Requirements(t *testing.T) {
	r, ok := ResolveRoute("/utilisateurs/12/edit")
	if !ok || !r.Requirement.Roles.Contains(RoleAdministrator) || r.Requirement.Roles.Len() != 1 {
		t.Fatalf("unexpected utilisateurs route: %+v", r)
	}
	r, ok = ResolveRoute("/produits")
	if !ok || r.Requirement.Restricted() {
		t.Fatalf("produits should be open to any authenticated identity")
	}
	if _, ok := ResolveRoute("/nowhere"); ok {
		t.Fatalf("unknown area should not resolve")
	}
	login, _ := RouteFor("login")
	if !login.Public {
		t.Fatalf("login must be public")
	}
}

func TestValidateMenu_Declared(t *testing.T) {
	if err := ValidateMenu(MenuSections); err != nil {
		t.Fatalf("declared menu is invalid: %v", err)
	}
}

func TestValidateMenu_RejectsWideningOverride(t *testing.T) {
	sections := []MenuSection{{
		Name: "procurement",
		Gate: "fournisseurs",
		Entries: []MenuEntry{
			{Label: "x", RouterLink: "/fournisseurs", Only: RoleSetOf(RoleAccountant)},
		},
	}}
	if err := ValidateMenu(sections); err == nil {
		t.Fatalf("expected override outside the section to be rejected")
	}
}

func TestValidateMenu_RejectsLinkGuardWouldDeny(t *testing.T) {
	sections := []MenuSection{{
		Name: "commercial",
		Gate: "clients",
		Entries: []MenuEntry{
			{Label: "Finances", RouterLink: "/finances"},
		},
	}}
	if err := ValidateMenu(sections); err == nil {
		t.Fatalf("expected link to a stricter route to be rejected")
	}
}

func TestSupplyActionAllowed(t *testing.T) {
	tests := []struct {
		role   Role
		status SupplyRequestStatus
		want   []SupplyAction
	}{
		{RoleStockManager, SupplyDraft, []SupplyAction{ActionSend, ActionCancel}},
		{RoleStockManager, SupplySent, []SupplyAction{ActionCancel}},
		{RoleStockManager, SupplyProcessed, []SupplyAction{}},
		{RoleProcurementAgent, SupplySent, []SupplyAction{ActionTakeOn, ActionProcess, ActionReject}},
		{RoleProcurementAgent, SupplyInProgress, []SupplyAction{ActionProcess, ActionReject}},
		{RoleProcurementAgent, SupplyDraft, []SupplyAction{}},
		{RoleAdministrator, SupplySent, []SupplyAction{}},
	}
	for _, tt := range tests {
		got := AllowedSupplyActions(tt.role, tt.status)
		if len(got) != len(tt.want) {
			t.Errorf("%s/%s: got %v, want %v", tt.role, tt.status, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s/%s: got %v, want %v", tt.role, tt.status, got, tt.want)
				break
			}
		}
	}
}

func TestOrderTotal(t *testing.T) {
	lines := []OrderLine{
		{ProduitID: 1, Quantite: decimal.NewFromInt(3), PrixUnitaire: decimal.RequireFromString("2500.50")},
		{ProduitID: 2, Quantite: decimal.RequireFromString("1.5"), PrixUnitaire: decimal.NewFromInt(1000)},
	}
	if got := lines[0].SousTotal(); !got.Equal(decimal.RequireFromString("7501.50")) {
		t.Fatalf("unexpected sous_total: %s", got)
	}
	if got := OrderTotal(lines); !got.Equal(decimal.RequireFromString("9001.50")) {
		t.Fatalf("unexpected total: %s", got)
	}
}

func TestValidateOrderLines(t *testing.T) {
	err := ValidateOrderLines([]OrderLine{{ProduitID: 1, Quantite: decimal.Zero, PrixUnitaire: decimal.NewFromInt(-1)}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", ve.Fields)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected errors.Is(ErrValidation)")
	}
	if err := ValidateOrderLines(nil); err == nil {
		t.Fatalf("expected error for empty order")
	}
}

func TestReorderSuggestion(t *testing.T) {
	q, ok := ReorderSuggestion(decimal.NewFromInt(4), decimal.NewFromInt(10))
	if !ok || !q.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10, got %s (%v)", q, ok)
	}
	q, ok = ReorderSuggestion(decimal.NewFromInt(-5), decimal.NewFromInt(10))
	if !ok || !q.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15, got %s (%v)", q, ok)
	}
	if _, ok := ReorderSuggestion(decimal.NewFromInt(10), decimal.NewFromInt(10)); ok {
		t.Fatalf("no reorder expected at threshold")
	}
}

func TestBackendError_Is(t *testing.T) {
	err := &BackendError{Kind: ErrSessionExpired, Status: 401}
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired")
	}
	if errors.Is(err, ErrServer) {
		t.Fatalf("did not expect ErrServer")
	}
	msg := UserMessage(&BackendError{Kind: ErrInvalidCredentials, Status: 401, Message: "Compte désactivé"})
	if msg != "Compte désactivé" {
		t.Fatalf("expected backend message to surface, got %q", msg)
	}
}
