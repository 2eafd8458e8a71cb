package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"ticket-ledger/internal/ledger"
)

// identity extracts the authenticated caller identity placed in the
// context by the JWTAuth middleware.
func identity(c echo.Context) (string, error) {
	id, ok := c.Get("identity").(string)
	if !ok || id == "" {
		return "", errors.New("no identity in context")
	}
	return id, nil
}

// ledgerErrorStatus maps ledger sentinel errors to HTTP status codes:
// missing records are 404, authority failures 403, bad arguments 400,
// closed/sold-out/empty-balance conflicts 409, wrong payment 402, and
// a failed external payout 502.  Anything else is a storage failure.
func ledgerErrorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrEventNotFound), errors.Is(err, ledger.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNotOrganizer), errors.Is(err, ledger.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInvalidCapacity), errors.Is(err, ledger.ErrEmptyRecipient):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrEventClosed), errors.Is(err, ledger.ErrSoldOut),
		errors.Is(err, ledger.ErrNothingToWithdraw):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrIncorrectPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrPayoutFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ledgerErrorJSON writes the standard error body for a failed ledger
// operation.  Storage failures are not echoed to the client.
func ledgerErrorJSON(c echo.Context, err error) error {
	status := ledgerErrorStatus(err)
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "storage error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
