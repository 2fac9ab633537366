package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// HTTPMiddleware records request count, latency and in-flight requests. The
// route label is the registered path pattern so ids do not explode
// cardinality.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if httpRequests == nil {
				return next(c)
			}
			httpInFlight.Inc()
			start := time.Now()

			err := next(c)

			httpInFlight.Dec()
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
