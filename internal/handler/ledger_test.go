package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-ledger/internal/ledger"
)

// stubGateway fails payouts on demand.
type stubGateway struct{ fail bool }

func (g *stubGateway) Transfer(ctx context.Context, to string, amountCents uint64, ref string) error {
	if g.fail {
		return errors.New("provider unavailable")
	}
	return nil
}

type env struct {
	e  *echo.Echo
	h  *LedgerHandler
	gw *stubGateway
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gw := &stubGateway{}
	return &env{
		e:  echo.New(),
		h:  NewLedgerHandler(ledger.New(ledger.NopStore{}, gw)),
		gw: gw,
	}
}

// call invokes an echo.HandlerFunc directly with the given identity,
// path params and JSON body, bypassing the JWT middleware the same way
// it would have populated the context.
func (te *env) call(t *testing.T, fn echo.HandlerFunc, method, path, caller, body string, names []string, values []string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := te.e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if caller != "" {
		c.Set("identity", caller)
	}
	require.NoError(t, fn(c))
	return rec
}

func (te *env) createEvent(t *testing.T, organizer, body string) uint64 {
	t.Helper()
	rec := te.call(t, te.h.CreateEvent, http.MethodPost, "/v1/events", organizer, body, nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func TestCreateEventHandler(t *testing.T) {
	te := newEnv(t)

	rec := te.call(t, te.h.CreateEvent, http.MethodPost, "/v1/events", "alice",
		`{"name":"Show","price_cents":100,"capacity":2}`, nil, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp eventResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, "alice", resp.Organizer)
	assert.True(t, resp.Active)
}

func TestCreateEventHandlerRejections(t *testing.T) {
	te := newEnv(t)

	// No authenticated identity.
	rec := te.call(t, te.h.CreateEvent, http.MethodPost, "/v1/events", "",
		`{"name":"Show","price_cents":100,"capacity":2}`, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing name.
	rec = te.call(t, te.h.CreateEvent, http.MethodPost, "/v1/events", "alice",
		`{"price_cents":100,"capacity":2}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Zero capacity maps to 400.
	rec = te.call(t, te.h.CreateEvent, http.MethodPost, "/v1/events", "alice",
		`{"name":"Show","price_cents":100,"capacity":0}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuyTicketHandler(t *testing.T) {
	te := newEnv(t)
	te.createEvent(t, "alice", `{"name":"Show","price_cents":100,"capacity":1}`)

	rec := te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "bob",
		`{"amount_cents":100}`, []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp ticketResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.ID)
	assert.Equal(t, "bob", resp.Owner)

	// Incorrect payment maps to 402.
	rec = te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "carol",
		`{"amount_cents":150}`, []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	// Sold out maps to 409.
	rec = te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "carol",
		`{"amount_cents":100}`, []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown event maps to 404.
	rec = te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/9/tickets", "carol",
		`{"amount_cents":100}`, []string{"id"}, []string{"9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed id maps to 400.
	rec = te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/x/tickets", "carol",
		`{"amount_cents":100}`, []string{"id"}, []string{"x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuyTicketClosedEventHandler(t *testing.T) {
	te := newEnv(t)
	te.createEvent(t, "alice", `{"name":"Show","price_cents":100,"capacity":5}`)

	rec := te.call(t, te.h.CloseEvent, http.MethodPost, "/v1/events/1/close", "alice",
		"", []string{"id"}, []string{"1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "bob",
		`{"amount_cents":100}`, []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransferTicketHandler(t *testing.T) {
	te := newEnv(t)
	te.createEvent(t, "alice", `{"name":"Show","price_cents":100,"capacity":5}`)
	rec := te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "bob",
		`{"amount_cents":100}`, []string{"id"}, []string{"1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Non-owner maps to 403.
	rec = te.call(t, te.h.TransferTicket, http.MethodPost, "/v1/tickets/1/transfer", "mallory",
		`{"to":"carol"}`, []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Empty recipient maps to 400.
	rec = te.call(t, te.h.TransferTicket, http.MethodPost, "/v1/tickets/1/transfer", "bob",
		`{"to":""}`, []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = te.call(t, te.h.TransferTicket, http.MethodPost, "/v1/tickets/1/transfer", "bob",
		`{"to":"carol"}`, []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ticketResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "carol", resp.Owner)
}

func TestWithdrawFundsHandler(t *testing.T) {
	te := newEnv(t)
	te.createEvent(t, "alice", `{"name":"Show","price_cents":100,"capacity":5}`)
	rec := te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "bob",
		`{"amount_cents":100}`, []string{"id"}, []string{"1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Non-organizer maps to 403.
	rec = te.call(t, te.h.WithdrawFunds, http.MethodPost, "/v1/events/1/withdraw", "bob",
		"", []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = te.call(t, te.h.WithdrawFunds, http.MethodPost, "/v1/events/1/withdraw", "alice",
		"", []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AmountCents uint64 `json:"amount_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(100), resp.AmountCents)

	// Nothing left maps to 409.
	rec = te.call(t, te.h.WithdrawFunds, http.MethodPost, "/v1/events/1/withdraw", "alice",
		"", []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWithdrawFundsPayoutFailureHandler(t *testing.T) {
	te := newEnv(t)
	te.createEvent(t, "alice", `{"name":"Show","price_cents":100,"capacity":5}`)
	rec := te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "bob",
		`{"amount_cents":100}`, []string{"id"}, []string{"1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	te.gw.fail = true
	rec = te.call(t, te.h.WithdrawFunds, http.MethodPost, "/v1/events/1/withdraw", "alice",
		"", []string{"id"}, []string{"1"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// The balance survives the failed payout.
	rec = te.call(t, te.h.GetEvent, http.MethodGet, "/v1/events/1", "",
		"", []string{"id"}, []string{"1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp eventResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(100), resp.BalanceCents)
}

func TestReadHandlers(t *testing.T) {
	te := newEnv(t)

	rec := te.call(t, te.h.GetEvent, http.MethodGet, "/v1/events/9", "",
		"", []string{"id"}, []string{"9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = te.call(t, te.h.GetTicket, http.MethodGet, "/v1/tickets/9", "",
		"", []string{"id"}, []string{"9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	te.createEvent(t, "alice", `{"name":"Show","price_cents":100,"capacity":5}`)
	rec = te.call(t, te.h.BuyTicket, http.MethodPost, "/v1/events/1/tickets", "bob",
		`{"amount_cents":100}`, []string{"id"}, []string{"1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = te.call(t, te.h.TransferTicket, http.MethodPost, "/v1/tickets/1/transfer", "bob",
		`{"to":"carol"}`, []string{"id"}, []string{"1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The owner index keeps bob's stale entry after the transfer.
	rec = te.call(t, te.h.TicketsOf, http.MethodGet, "/v1/owners/bob/tickets", "",
		"", []string{"identity"}, []string{"bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	var idx struct {
		TicketIDs []uint64 `json:"ticket_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idx))
	assert.Equal(t, []uint64{1}, idx.TicketIDs)

	// An unknown identity yields an empty list, not an error.
	rec = te.call(t, te.h.TicketsOf, http.MethodGet, "/v1/owners/nobody/tickets", "",
		"", []string{"identity"}, []string{"nobody"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &idx))
	assert.Empty(t, idx.TicketIDs)
}

func TestRejectDirectPayment(t *testing.T) {
	e := echo.New()
	for _, body := range []string{"", `{"amount_cents":100}`, `{"event_id":1}`} {
		req := httptest.NewRequest(http.MethodPost, "/v1/payments", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, RejectDirectPayment(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}
