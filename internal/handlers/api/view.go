package api

import (
	"net/url"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/analysis"
)

// parseView reads filter and sort parameters. The returned error is
// already written to the response.
func parseView(c fiber.Ctx) (analysis.View, bool, error) {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return analysis.View{}, false, jsonError(c, fiber.StatusBadRequest, "invalid query string")
	}
	view, err := analysis.ParseView(values)
	if err != nil {
		return view, false, jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return view, true, nil
}
