package handler

import (
	"context"  // context with timeout for the initiation call
	"errors"   // sentinel error matching
	"net/http" // HTTP status codes
	"regexp"   // email format validation
	"strings"  // input trimming
	"time"     // request timeouts

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/lahray/ticket-payments/internal/workflow" // payment workflow
)

// emailPattern accepts the general text@text.text shape.  Anything
// stricter rejects real addresses; anything looser lets through strings
// the provider cannot deliver receipts to.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// CheckoutHandler owns the buyer-facing checkout submission.
type CheckoutHandler struct {
	Workflow *workflow.Workflow
}

func NewCheckoutHandler(w *workflow.Workflow) *CheckoutHandler {
	return &CheckoutHandler{Workflow: w}
}

// ----- DTOs -----

type checkoutReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type checkoutResp struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Processing  bool   `json:"processing"`
}

// validate applies the form rules in order; the first failing rule wins
// and the rest are skipped, so only one error is ever shown at a time.
func validate(req checkoutReq) string {
	if req.Name == "" {
		return "Name is required"
	}
	if req.Email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(req.Email) {
		return "Please enter a valid email address"
	}
	return ""
}

// Submit validates the buyer input and initiates a checkout attempt.  A
// validation failure is user-correctable and has no side effects.  An
// unavailable provider aborts before any record exists and maps to 503.
// On success the response carries the generated reference and the
// provider's checkout URL; the payment itself completes out-of-band.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if msg := validate(req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	attempt, err := h.Workflow.Initiate(ctx, workflow.Buyer{Name: req.Name, Email: req.Email})
	if err != nil {
		if errors.Is(err, workflow.ErrGatewayUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payment service is not ready, please try again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment initialization failed, please try again"})
	}

	return c.JSON(http.StatusAccepted, checkoutResp{
		Reference:   attempt.Reference,
		CheckoutURL: attempt.CheckoutURL,
		Processing:  h.Workflow.Processing(),
	})
}
