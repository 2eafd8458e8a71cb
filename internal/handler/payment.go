package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RejectDirectPayment handles POST /v1/payments.  Value can enter the
// ledger only through a successful ticket purchase, so any payment
// sent directly is rejected unconditionally, whatever the body says.
func RejectDirectPayment(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error": "unsolicited payment: use the buy-ticket endpoint",
	})
}
