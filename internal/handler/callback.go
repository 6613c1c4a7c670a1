package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lahray/ticket-payments/internal/gateway"
)

// CallbackHandler receives the provider's payment notifications and
// resolves the session awaiting them.  The provider calls this endpoint
// once per session, with either a completion or a dismissal.
type CallbackHandler struct {
	Gateway *gateway.Client
}

func NewCallbackHandler(g *gateway.Client) *CallbackHandler {
	return &CallbackHandler{Gateway: g}
}

type callbackReq struct {
	PaymentReference     string `json:"paymentReference"`
	TransactionReference string `json:"transactionReference"`
	PaymentStatus        string `json:"paymentStatus"`
}

// Notify resolves the checkout session named by the provider's payment
// reference.  PAID-family statuses complete the session; everything else
// closes it, with the provider's transaction reference (if any) deciding
// whether a cancellation record is written downstream.  An unknown
// reference yields 404 so the provider retries against the right
// instance.
func (h *CallbackHandler) Notify(c echo.Context) error {
	var req callbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.PaymentReference) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "paymentReference required"})
	}

	completed := false
	switch strings.ToUpper(strings.TrimSpace(req.PaymentStatus)) {
	case "PAID", "COMPLETED", "SUCCESS":
		completed = true
	}

	if !h.Gateway.Resolve(req.PaymentReference, completed, strings.TrimSpace(req.TransactionReference)) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown payment reference"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
