package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/infrastructure/backend"
)

type supplyRequestReader interface {
	Get(ctx context.Context, id int64) (*backend.DemandeApprovisionnement, error)
}

type supplyRequestActor interface {
	SupplyRequestAction(ctx context.Context, id int64, action domain.SupplyAction, destinataire int64, commentaire string) error
}

type productReader interface {
	Get(ctx context.Context, id int64) (*backend.Produit, error)
}

type referenceLookup interface {
	Lookup(ctx context.Context, kind string) (any, error)
}

// UIHandler serves the small computations the feature screens need: which
// workflow buttons are live, purchase order totals, reorder hints and the
// cached lookup lists.
type UIHandler struct {
	demandes supplyRequestReader
	actions  supplyRequestActor
	produits productReader
	refs     referenceLookup
}

func NewUIHandler(demandes supplyRequestReader, actions supplyRequestActor, produits productReader, refs referenceLookup) *UIHandler {
	return &UIHandler{demandes: demandes, actions: actions, produits: produits, refs: refs}
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type supplyRequestView struct {
	Demande *backend.DemandeApprovisionnement `json:"demande"`
	Actions []domain.SupplyAction             `json:"actions"`
}

// SupplyRequest returns a demande with the actions the current role may run.
//
// @Summary      Supply request with allowed actions
// @Tags         ui
// @Produce      json
// @Param        id   path      int  true  "Demande ID"
// @Success      200  {object}  supplyRequestView
// @Failure      404  {object}  map[string]string
// @Router       /ui/supply-requests/{id} [get]
func (h *UIHandler) SupplyRequest(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	d, err := h.demandes.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, supplyRequestView{
		Demande: d,
		Actions: domain.AllowedSupplyActions(identity.Role, d.Statut),
	})
}

type supplyActionRequest struct {
	DestinataireID int64  `json:"destinataire_id"`
	Commentaire    string `json:"commentaire" validate:"max=1000"`
}

// SupplyRequestAction runs one workflow step after checking it is available.
//
// @Summary      Run a supply request action
// @Tags         ui
// @Accept       json
// @Produce      json
// @Param        id      path      int                  true  "Demande ID"
// @Param        action  path      string               true  "envoyer, annuler, prendre-en-charge, traiter or rejeter"
// @Param        body    body      supplyActionRequest  false "Action parameters"
// @Success      200     {object}  supplyRequestView
// @Failure      403     {object}  map[string]string
// @Failure      422     {object}  map[string]any
// @Router       /ui/supply-requests/{id}/{action} [post]
func (h *UIHandler) SupplyRequestAction(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	action := domain.SupplyAction(c.Param("action"))

	var req supplyActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if action == domain.ActionSend && req.DestinataireID <= 0 {
		return &domain.ValidationError{Fields: map[string][]string{
			"destinataire_id": {"Choisissez un agent d'approvisionnement"},
		}}
	}

	ctx := c.Request().Context()
	d, err := h.demandes.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.SupplyActionAllowed(identity.Role, d.Statut, action) {
		return domain.ErrForbidden
	}

	if err := h.actions.SupplyRequestAction(ctx, id, action, req.DestinataireID, req.Commentaire); err != nil {
		return err
	}

	d, err = h.demandes.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, supplyRequestView{
		Demande: d,
		Actions: domain.AllowedSupplyActions(identity.Role, d.Statut),
	})
}

type quoteRequest struct {
	Lignes []domain.OrderLine `json:"lignes" validate:"dive"`
}

type quoteLine struct {
	domain.OrderLine
	SousTotal decimal.Decimal `json:"sous_total"`
}

type quoteResponse struct {
	Lignes       []quoteLine     `json:"lignes"`
	MontantTotal decimal.Decimal `json:"montant_total"`
}

// QuotePurchaseOrder computes line sub-totals and the order total.
//
// @Summary      Purchase order totals
// @Tags         ui
// @Accept       json
// @Produce      json
// @Param        body  body      quoteRequest  true  "Order lines"
// @Success      200   {object}  quoteResponse
// @Failure      422   {object}  map[string]any
// @Router       /ui/purchase-orders/quote [post]
func (h *UIHandler) QuotePurchaseOrder(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := domain.ValidateOrderLines(req.Lignes); err != nil {
		return err
	}

	resp := quoteResponse{Lignes: make([]quoteLine, 0, len(req.Lignes))}
	for _, l := range req.Lignes {
		resp.Lignes = append(resp.Lignes, quoteLine{OrderLine: l, SousTotal: l.SousTotal()})
	}
	resp.MontantTotal = domain.OrderTotal(req.Lignes)
	return c.JSON(http.StatusOK, resp)
}

type reorderResponse struct {
	ProduitID int64           `json:"produit_id"`
	Stock     decimal.Decimal `json:"stock"`
	Seuil     decimal.Decimal `json:"seuil_minimum"`
	Needed    bool            `json:"reorder"`
	Suggested decimal.Decimal `json:"quantite_suggeree"`
}

// ReorderSuggestion proposes a purchase quantity for a product below its
// threshold.
//
// @Summary      Reorder suggestion
// @Tags         ui
// @Produce      json
// @Param        id   path      int  true  "Produit ID"
// @Success      200  {object}  reorderResponse
// @Router       /ui/products/{id}/reorder [get]
func (h *UIHandler) ReorderSuggestion(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.produits.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	qty, needed := p.ReorderSuggestion()
	return c.JSON(http.StatusOK, reorderResponse{
		ProduitID: p.ID,
		Stock:     p.StockTotal,
		Seuil:     p.SeuilMinimum,
		Needed:    needed,
		Suggested: qty,
	})
}

// Reference returns a cached lookup list.
//
// @Summary      Reference data
// @Tags         ui
// @Produce      json
// @Param        kind  path  string  true  "categories or entrepots"
// @Success      200   {array}   any
// @Failure      404   {object}  map[string]string
// @Router       /ui/reference/{kind} [get]
func (h *UIHandler) Reference(c echo.Context) error {
	items, err := h.refs.Lookup(c.Request().Context(), c.Param("kind"))
	if errors.Is(err, backend.ErrUnknownReference) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown reference list")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
