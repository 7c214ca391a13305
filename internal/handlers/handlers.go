// Package handlers serves the HTML dashboard: uploads, report pages,
// exports, charts, the product catalog and the OIDC login flow.
package handlers

import (
	"html"
	"net/url"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/analysis"
)

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="notice notice-error">` + html.EscapeString(message) + `</div>`,
	)
}

func isHTMX(c fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// parseView reads the filter and sort parameters of the request.
func parseView(c fiber.Ctx) (analysis.View, error) {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return analysis.View{}, fiber.NewError(fiber.StatusBadRequest, "invalid query string")
	}
	view, err := analysis.ParseView(values)
	if err != nil {
		return view, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return view, nil
}
