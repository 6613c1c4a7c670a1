package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lahray/ticket-payments/internal/dashboard"
	"github.com/lahray/ticket-payments/internal/model"
)

// DashboardHandler serves the payment-records dashboard: the filtered,
// searchable list and the aggregate stat cards.
type DashboardHandler struct {
	Engine *dashboard.Engine
}

func NewDashboardHandler(e *dashboard.Engine) *DashboardHandler {
	return &DashboardHandler{Engine: e}
}

type listMeta struct {
	Showing int    `json:"showing"`
	Total   int    `json:"total"`
	Filter  string `json:"filter"`
	Search  string `json:"search,omitempty"`
}

type listResp struct {
	Payments []model.PaymentRecord `json:"payments"`
	Meta     listMeta              `json:"meta"`
}

// List returns all payment records newest first, optionally narrowed by
// ?status= and ?search=.  A load failure leaves the list empty and maps
// to a generic loading error; there is nothing the caller can correct.
func (h *DashboardHandler) List(c echo.Context) error {
	statusFilter := c.QueryParam("status")
	if statusFilter == "" {
		statusFilter = "all"
	}
	searchTerm := c.QueryParam("search")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	records, err := h.Engine.Load(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error loading payments data"})
	}
	filtered := dashboard.Filter(records, statusFilter, searchTerm)

	return c.JSON(http.StatusOK, listResp{
		Payments: filtered,
		Meta: listMeta{
			Showing: len(filtered),
			Total:   len(records),
			Filter:  statusFilter,
			Search:  searchTerm,
		},
	})
}

// Stats returns the aggregate counters for the stat cards.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	records, err := h.Engine.Load(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error loading payments data"})
	}
	return c.JSON(http.StatusOK, dashboard.Aggregate(records))
}
