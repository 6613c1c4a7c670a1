package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

var startedAt = time.Now().UTC()

// Health reports liveness for load balancers and uptime monitors.  It
// deliberately checks nothing downstream: the checkout endpoint already
// degrades per-dependency (503 when the provider is unreachable), so a
// slow store or broker should not take the whole instance out of
// rotation.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
}
