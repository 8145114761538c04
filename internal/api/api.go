package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joe-hadchity/lescale-pos/internal/auth"
	"github.com/joe-hadchity/lescale-pos/internal/cart"
	"github.com/joe-hadchity/lescale-pos/internal/catalog"
	"github.com/joe-hadchity/lescale-pos/internal/checkout"
	"github.com/joe-hadchity/lescale-pos/internal/entity"
	"github.com/joe-hadchity/lescale-pos/internal/orders"
	"github.com/joe-hadchity/lescale-pos/internal/printing"
	"github.com/joe-hadchity/lescale-pos/internal/receipt"
	"github.com/joe-hadchity/lescale-pos/internal/remote"
	"github.com/joe-hadchity/lescale-pos/internal/session"
)

// Handler wires the terminal's HTTP routes to the session registry and the
// remote collaborators.
type Handler struct {
	sessions *session.Manager
	catalog  *catalog.Adapter
	orders   *orders.Service
	bridge   *printing.Bridge
	auth     *auth.Service
	checkPin checkout.PinChecker
	header   entity.ReceiptHeader
}

func NewHandler(sessions *session.Manager, cat *catalog.Adapter, ord *orders.Service, bridge *printing.Bridge, authSvc *auth.Service, checkPin checkout.PinChecker, header entity.ReceiptHeader) *Handler {
	return &Handler{
		sessions: sessions,
		catalog:  cat,
		orders:   ord,
		bridge:   bridge,
		auth:     authSvc,
		checkPin: checkPin,
		header:   header,
	}
}

// Login issues a terminal session token --> /login
func (h *Handler) Login(c echo.Context) error {
	login := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&login); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	token, err := h.auth.Login(login.Username, login.Password)
	if err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]string{"token": token})
}

// Categories lists menu categories --> /catalog/categories
func (h *Handler) Categories(c echo.Context) error {
	categories, opErr := h.catalog.Categories(c.Request().Context())
	if opErr != nil {
		return c.JSON(502, opErr)
	}
	return c.JSON(200, categories)
}

// Items lists the items of one category --> /catalog/categories/:id/items
func (h *Handler) Items(c echo.Context) error {
	items, opErr := h.catalog.ItemsByCategory(c.Request().Context(), c.Param("id"))
	if opErr != nil {
		return c.JSON(502, opErr)
	}
	return c.JSON(200, items)
}

// Ingredients lists the add-on catalog --> /catalog/ingredients
func (h *Handler) Ingredients(c echo.Context) error {
	ingredients, opErr := h.catalog.Ingredients(c.Request().Context())
	if opErr != nil {
		return c.JSON(502, opErr)
	}
	return c.JSON(200, ingredients)
}

// OpenSession starts a new order --> POST /sessions
func (h *Handler) OpenSession(c echo.Context) error {
	req := struct {
		Type        entity.OrderType `json:"type"`
		TableNumber string           `json:"table_number"`
		Note        string           `json:"note"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	s, err := h.sessions.Open(req.Type, req.TableNumber, req.Note)
	if err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, h.sessionView(s))
}

// GetSession returns the current order --> GET /sessions/:id
func (h *Handler) GetSession(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.sessionView(s))
}

// CancelSession discards an order --> DELETE /sessions/:id
func (h *Handler) CancelSession(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	s.Machine.Cancel()
	s.Cart.Clear()
	h.sessions.Close(s.ID)
	return c.JSON(200, map[string]string{"message": "Session cancelled"})
}

// HoldSession parks the cart --> POST /sessions/:id/hold
func (h *Handler) HoldSession(c echo.Context) error {
	if err := h.sessions.Hold(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return c.JSON(404, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, map[string]string{"message": "Cart held"})
}

// ResumeSession restores a held cart --> POST /sessions/resume/:id
func (h *Handler) ResumeSession(c echo.Context) error {
	s, err := h.sessions.Resume(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return c.JSON(404, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.sessionView(s))
}

// AddLine builds a configured line and appends it --> POST /sessions/:id/lines
func (h *Handler) AddLine(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}

	req := struct {
		CategoryID string   `json:"category_id"`
		ItemID     string   `json:"item_id"`
		Removals   []string `json:"removals"`
		AddOnIDs   []string `json:"add_on_ids"`
		Note       string   `json:"note"`
		OnTheHouse bool     `json:"on_the_house"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	item, opErr := h.lookupItem(c, req.CategoryID, req.ItemID)
	if opErr != nil {
		return c.JSON(502, opErr)
	}
	if item == nil {
		return c.JSON(404, map[string]string{"error": "Menu item not found"})
	}

	addOns, opErr := h.resolveAddOns(c, req.AddOnIDs)
	if opErr != nil {
		return c.JSON(502, opErr)
	}

	line, err := cart.BuildLine(*item, req.Removals, addOns, req.Note, req.OnTheHouse)
	if err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}
	s.Cart.AddLine(line)

	return c.JSON(200, h.sessionView(s))
}

// ChangeQuantity bumps a line up or down --> POST /sessions/:id/lines/:index/quantity
func (h *Handler) ChangeQuantity(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid line index"})
	}

	req := struct {
		Delta int `json:"delta"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	switch req.Delta {
	case 1:
		err = s.Cart.IncreaseQuantity(index)
	case -1:
		err = s.Cart.DecreaseQuantity(index)
	default:
		return c.JSON(400, map[string]string{"error": "Delta must be 1 or -1"})
	}
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			return c.JSON(404, map[string]string{"error": err.Error()})
		}
		return c.JSON(409, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, h.sessionView(s))
}

// RemoveLine deletes a line; submitted lines need a manager PIN
// --> DELETE /sessions/:id/lines/:index
func (h *Handler) RemoveLine(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid line index"})
	}

	// One-shot authorization grant: the PIN is checked here and the
	// resulting boolean is consumed by this single removal.
	authorized := false
	if pin := c.QueryParam("pin"); pin != "" {
		authorized = h.checkPin(pin)
	}

	if err := s.Cart.RemoveLine(index, authorized); err != nil {
		if errors.Is(err, cart.ErrUnauthorized) {
			return c.JSON(403, map[string]string{"error": err.Error()})
		}
		return c.JSON(404, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, h.sessionView(s))
}

// BeginCheckout opens method selection --> POST /sessions/:id/checkout
func (h *Handler) BeginCheckout(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	if err := s.Machine.Begin(s.Cart.Total()); err != nil {
		return c.JSON(409, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.checkoutView(s))
}

// SelectMethod picks the payment method --> POST /sessions/:id/checkout/method
func (h *Handler) SelectMethod(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}

	req := struct {
		Method entity.PaymentMethod `json:"method"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	if err := s.Machine.SelectMethod(req.Method); err != nil {
		return c.JSON(409, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.checkoutView(s))
}

// Keypad routes one keypad press to the tendered/PIN/percent accumulator
// --> POST /sessions/:id/checkout/keypad
func (h *Handler) Keypad(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}

	req := struct {
		Target string `json:"target"` // tendered, pin, percent
		Action string `json:"action"` // digit, clear, backspace
		Digit  string `json:"digit"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	var pad *checkout.Keypad
	switch req.Target {
	case "tendered":
		pad = &s.Machine.Tendered
	case "pin":
		pad = &s.Machine.Pin
	case "percent":
		pad = &s.Machine.Percent
	default:
		return c.JSON(400, map[string]string{"error": "Unknown keypad target"})
	}

	switch req.Action {
	case "digit":
		if len(req.Digit) != 1 {
			return c.JSON(400, map[string]string{"error": "Digit must be a single character"})
		}
		pad.Press(rune(req.Digit[0]))
	case "clear":
		pad.Clear()
	case "backspace":
		pad.Backspace()
	default:
		return c.JSON(400, map[string]string{"error": "Unknown keypad action"})
	}

	return c.JSON(200, h.checkoutView(s))
}

// BeginDiscount opens the manager authorization dialog
// --> POST /sessions/:id/checkout/discount
func (h *Handler) BeginDiscount(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	if err := s.Machine.BeginDiscount(); err != nil {
		return c.JSON(409, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.checkoutView(s))
}

// SubmitDiscountPin checks the accumulated PIN
// --> POST /sessions/:id/checkout/discount/pin
func (h *Handler) SubmitDiscountPin(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	if err := s.Machine.SubmitPin(); err != nil {
		if errors.Is(err, checkout.ErrPinMismatch) {
			return c.JSON(403, map[string]string{"error": err.Error()})
		}
		return c.JSON(409, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.checkoutView(s))
}

// SubmitDiscountPercent applies the accumulated percentage
// --> POST /sessions/:id/checkout/discount/percent
func (h *Handler) SubmitDiscountPercent(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	if err := s.Machine.SubmitPercent(); err != nil {
		if errors.Is(err, checkout.ErrInvalidPercent) {
			return c.JSON(400, map[string]string{"error": err.Error()})
		}
		return c.JSON(409, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.checkoutView(s))
}

// CancelDiscount abandons the dialog --> DELETE /sessions/:id/checkout/discount
func (h *Handler) CancelDiscount(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	if err := s.Machine.CancelDiscount(); err != nil {
		return c.JSON(409, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.checkoutView(s))
}

// ConfirmCash closes the cash tendering step
// --> POST /sessions/:id/checkout/confirm-cash
func (h *Handler) ConfirmCash(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	if err := s.Machine.ConfirmCash(); err != nil {
		return c.JSON(409, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, h.checkoutView(s))
}

// CancelCheckout returns the machine to idle --> DELETE /sessions/:id/checkout
func (h *Handler) CancelCheckout(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	s.Machine.Cancel()
	return c.JSON(200, h.checkoutView(s))
}

// Finalize submits a confirmed order --> POST /sessions/:id/finalize
func (h *Handler) Finalize(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	if s.Machine.State() != checkout.StateConfirmed {
		return c.JSON(409, map[string]string{"error": "Checkout not confirmed"})
	}

	order := s.Order()
	if _, err := h.orders.Submit(c.Request().Context(), order, s.ID); err != nil {
		var opErr *remote.OpError
		if errors.As(err, &opErr) {
			// The session stays intact; the operator retries.
			return c.JSON(502, opErr)
		}
		if errors.Is(err, orders.ErrDuplicateSubmission) {
			return c.JSON(409, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}

	s.Cart.Clear()
	h.sessions.Close(s.ID)

	return c.JSON(200, order)
}

// PreviewThermal renders the thermal receipt for the current order
// --> GET /sessions/:id/receipt/thermal
func (h *Handler) PreviewThermal(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	blocks := receipt.Thermal(h.header, s.Order(), time.Now())
	return c.JSON(200, blocks)
}

// PreviewInvoice renders the invoice document for the current order
// --> GET /sessions/:id/receipt/invoice
func (h *Handler) PreviewInvoice(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return c.JSON(404, map[string]string{"error": err.Error()})
	}
	doc, err := receipt.Invoice(h.header, s.Order(), time.Now())
	if err != nil {
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	return c.HTML(200, doc)
}

// Printers lists available printers --> GET /printers
func (h *Handler) Printers(c echo.Context) error {
	names, opErr := h.bridge.Printers(c.Request().Context())
	if opErr != nil {
		return c.JSON(502, opErr)
	}
	return c.JSON(200, names)
}

// Print renders a finalized order and dispatches it to a printer
// --> POST /print
func (h *Handler) Print(c echo.Context) error {
	req := struct {
		PrinterName string       `json:"printer_name"`
		Format      string       `json:"format"`
		Copies      int          `json:"copies"`
		Order       entity.Order `json:"order"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	job := entity.PrintJob{
		PrinterName: req.PrinterName,
		Format:      req.Format,
		Copies:      req.Copies,
	}
	switch req.Format {
	case "thermal":
		blocks := receipt.Thermal(h.header, &req.Order, time.Now())
		raw := ""
		for _, b := range blocks {
			raw += b.Text + "\n"
		}
		job.Document = raw
	case "invoice":
		doc, err := receipt.Invoice(h.header, &req.Order, time.Now())
		if err != nil {
			return c.JSON(500, map[string]string{"error": err.Error()})
		}
		job.Document = doc
	default:
		return c.JSON(400, map[string]string{"error": "Unknown document format"})
	}

	if opErr := h.bridge.Print(c.Request().Context(), job); opErr != nil {
		return c.JSON(502, opErr)
	}
	return c.JSON(200, map[string]string{"message": "Printed"})
}

func (h *Handler) lookupItem(c echo.Context, categoryID, itemID string) (*entity.MenuItem, *remote.OpError) {
	items, opErr := h.catalog.ItemsByCategory(c.Request().Context(), categoryID)
	if opErr != nil {
		return nil, opErr
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (h *Handler) resolveAddOns(c echo.Context, ids []string) ([]entity.Ingredient, *remote.OpError) {
	if len(ids) == 0 {
		return nil, nil
	}
	all, opErr := h.catalog.Ingredients(c.Request().Context())
	if opErr != nil {
		return nil, opErr
	}
	byID := make(map[string]entity.Ingredient, len(all))
	for _, ing := range all {
		byID[ing.ID] = ing
	}
	// Duplicates are kept: the same add-on twice counts twice.
	var addOns []entity.Ingredient
	for _, id := range ids {
		if ing, ok := byID[id]; ok {
			addOns = append(addOns, ing)
		}
	}
	return addOns, nil
}

func (h *Handler) sessionView(s *session.Session) map[string]interface{} {
	return map[string]interface{}{
		"id":           s.ID,
		"type":         s.Type,
		"table_number": s.TableNumber,
		"note":         s.Note,
		"lines":        s.Cart.Lines(),
		"raw_total":    entity.Round2(s.Cart.Total()),
		"state":        s.Machine.State(),
	}
}

func (h *Handler) checkoutView(s *session.Session) map[string]interface{} {
	return map[string]interface{}{
		"state":            s.Machine.State(),
		"stage":            s.Machine.Stage(),
		"method":           s.Machine.Method(),
		"discount_percent": s.Machine.DiscountPercent(),
		"total":            s.Machine.Total(),
		"tendered":         s.Machine.Tendered.Value(),
		"change_due":       s.Machine.ChangeDue(),
		"can_confirm_cash": s.Machine.CanConfirmCash(),
	}
}
