package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ticket-ledger/internal/ledger"
	"ticket-ledger/internal/model"
	"ticket-ledger/internal/monitoring"
	"ticket-ledger/internal/queue"
)

// LedgerHandler exposes the ticketing ledger over HTTP.  The ledger
// itself guarantees atomicity and ordering; handlers only translate
// between HTTP and ledger operations, emit broker notifications for
// committed mutations, and record metrics.
type LedgerHandler struct {
	Ledger *ledger.Ledger
}

func NewLedgerHandler(l *ledger.Ledger) *LedgerHandler {
	if l == nil {
		panic("nil ledger passed to NewLedgerHandler")
	}
	return &LedgerHandler{Ledger: l}
}

// ----- DTOs -----

type createEventReq struct {
	Name       string     `json:"name"`
	Date       *time.Time `json:"date"` // optional, advisory only
	PriceCents uint64     `json:"price_cents"`
	Capacity   uint32     `json:"capacity"`
}

type buyTicketReq struct {
	AmountCents uint64 `json:"amount_cents"`
}

type transferReq struct {
	To string `json:"to"`
}

type eventResp struct {
	ID           uint64     `json:"id"`
	Organizer    string     `json:"organizer"`
	Name         string     `json:"name"`
	Date         *time.Time `json:"date,omitempty"`
	PriceCents   uint64     `json:"price_cents"`
	Capacity     uint32     `json:"capacity"`
	Sold         uint32     `json:"sold"`
	BalanceCents uint64     `json:"balance_cents"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ticketResp struct {
	ID          uint64    `json:"id"`
	EventID     uint64    `json:"event_id"`
	Owner       string    `json:"owner"`
	PurchasedAt time.Time `json:"purchased_at"`
}

func toEventResp(ev model.Event) eventResp {
	return eventResp{
		ID:           ev.ID,
		Organizer:    ev.Organizer,
		Name:         ev.Name,
		Date:         ev.Date,
		PriceCents:   ev.PriceCents,
		Capacity:     ev.Capacity,
		Sold:         ev.Sold,
		BalanceCents: ev.BalanceCents,
		Active:       ev.Active,
		CreatedAt:    ev.CreatedAt,
	}
}

func toTicketResp(t model.Ticket) ticketResp {
	return ticketResp{ID: t.ID, EventID: t.EventID, Owner: t.Owner, PurchasedAt: t.PurchasedAt}
}

// notify publishes a notification for a committed mutation.  Fire and
// forget with a fresh context: the request may complete (and its
// context be cancelled) before the broker round trip finishes, and a
// broker outage must never fail an already-committed operation.
func notify(kind string, data interface{}) {
	go func() { _ = queue.Publish(context.Background(), kind, data) }()
}

// CreateEvent handles POST /v1/events.  The caller becomes the
// organizer.  Capacity must be positive; the date is stored unvalidated.
func (h *LedgerHandler) CreateEvent(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ev, err := h.Ledger.CreateEvent(c.Request().Context(), caller, req.Name, req.Date, req.PriceCents, req.Capacity)
	if err != nil {
		monitoring.RecordOperation("create_event", "rejected")
		return ledgerErrorJSON(c, err)
	}
	monitoring.RecordOperation("create_event", "ok")
	notify(queue.KindEventCreated, queue.EventCreatedNotice{
		EventID:    ev.ID,
		Organizer:  ev.Organizer,
		Name:       ev.Name,
		PriceCents: ev.PriceCents,
		Capacity:   ev.Capacity,
	})
	return c.JSON(http.StatusCreated, toEventResp(ev))
}

// BuyTicket handles POST /v1/events/:id/tickets.  The attached payment
// is the amount_cents field and must equal the event price exactly.
func (h *LedgerHandler) BuyTicket(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req buyTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	t, err := h.Ledger.BuyTicket(c.Request().Context(), caller, eventID, req.AmountCents)
	if err != nil {
		monitoring.RecordOperation("buy_ticket", "rejected")
		return ledgerErrorJSON(c, err)
	}
	monitoring.RecordOperation("buy_ticket", "ok")
	monitoring.RecordSale()
	notify(queue.KindTicketPurchased, queue.TicketPurchasedNotice{
		EventID:     t.EventID,
		TicketID:    t.ID,
		Buyer:       t.Owner,
		AmountCents: req.AmountCents,
	})
	return c.JSON(http.StatusCreated, toTicketResp(t))
}

// TransferTicket handles POST /v1/tickets/:id/transfer.  Only the
// current owner may transfer; the recipient must be a non-empty
// identity.
func (h *LedgerHandler) TransferTicket(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	t, err := h.Ledger.TransferTicket(c.Request().Context(), caller, ticketID, req.To)
	if err != nil {
		monitoring.RecordOperation("transfer_ticket", "rejected")
		return ledgerErrorJSON(c, err)
	}
	monitoring.RecordOperation("transfer_ticket", "ok")
	notify(queue.KindTicketTransferred, queue.TicketTransferredNotice{
		TicketID: t.ID,
		From:     caller,
		To:       t.Owner,
	})
	return c.JSON(http.StatusOK, toTicketResp(t))
}

// WithdrawFunds handles POST /v1/events/:id/withdraw.  Organizer only.
// On success the response carries the exact amount paid out.
func (h *LedgerHandler) WithdrawFunds(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	amount, err := h.Ledger.WithdrawFunds(c.Request().Context(), caller, eventID)
	if err != nil {
		monitoring.RecordOperation("withdraw_funds", "rejected")
		return ledgerErrorJSON(c, err)
	}
	monitoring.RecordOperation("withdraw_funds", "ok")
	monitoring.RecordWithdrawal(amount)
	notify(queue.KindFundsWithdrawn, queue.FundsWithdrawnNotice{
		EventID:     eventID,
		Organizer:   caller,
		AmountCents: amount,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"event_id":     eventID,
		"amount_cents": amount,
	})
}

// CloseEvent handles POST /v1/events/:id/close.  Organizer only;
// irreversible.
func (h *LedgerHandler) CloseEvent(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ev, err := h.Ledger.CloseEvent(c.Request().Context(), caller, eventID)
	if err != nil {
		monitoring.RecordOperation("close_event", "rejected")
		return ledgerErrorJSON(c, err)
	}
	monitoring.RecordOperation("close_event", "ok")
	notify(queue.KindEventClosed, queue.EventClosedNotice{EventID: ev.ID})
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// GetEvent handles GET /v1/events/:id.
func (h *LedgerHandler) GetEvent(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Ledger.GetEvent(eventID)
	if err != nil {
		return ledgerErrorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// GetTicket handles GET /v1/tickets/:id.
func (h *LedgerHandler) GetTicket(c echo.Context) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.Ledger.GetTicket(ticketID)
	if err != nil {
		return ledgerErrorJSON(c, err)
	}
	return c.JSON(http.StatusOK, toTicketResp(t))
}

// TicketsOf handles GET /v1/owners/:identity/tickets.  The returned
// sequence is the historical owner index: it may contain stale and
// duplicate ids, and an unknown identity yields an empty list.
func (h *LedgerHandler) TicketsOf(c echo.Context) error {
	who := c.Param("identity")
	if who == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identity is required"})
	}
	ids := h.Ledger.TicketsOf(who)
	return c.JSON(http.StatusOK, echo.Map{
		"identity":   who,
		"ticket_ids": ids,
	})
}

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
