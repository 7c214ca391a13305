package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/catalog"
	"adreport/internal/config"
	"adreport/internal/db"
	"adreport/internal/extract"
	"adreport/internal/middleware"
	"adreport/internal/models"
	"adreport/internal/validation"
)

// ProductStore persists catalog products.
type ProductStore interface {
	UpsertProduct(ctx context.Context, p *models.Product, updatedBy string) error
	DeleteProduct(ctx context.Context, code string) error
}

// CatalogHandler lists and edits catalog products.
type CatalogHandler struct {
	catalog   *catalog.Catalog
	store     ProductStore
	cfg       *config.Config
	maxTarget float64
}

// NewCatalogHandler creates a catalog handler. store may be nil, in which
// case the catalog is read-only.
func NewCatalogHandler(cat *catalog.Catalog, store ProductStore, cfg *config.Config, rules *config.Rules) *CatalogHandler {
	return &CatalogHandler{catalog: cat, store: store, cfg: cfg, maxTarget: rules.Thresholds.MaxTarget}
}

// Index renders the catalog page.
func (h *CatalogHandler) Index(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.Render("catalog", MergeBranding(fiber.Map{
		"Title":    "Catalog",
		"User":     user,
		"Products": h.catalog.List(),
		"LoadedAt": h.catalog.LoadedAt(),
		"CanEdit":  h.store != nil && user != nil && user.CanEditCatalog(),
		"CanAdmin": h.store != nil && user != nil && user.IsAdmin(),
	}, h.cfg))
}

// Save creates or updates a product from form fields code, name and target.
func (h *CatalogHandler) Save(c fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusNotFound, "Catalog editing requires a database")
	}

	p := &models.Product{
		Code: extract.NormalizeCode(c.FormValue("code")),
		Name: strings.TrimSpace(c.FormValue("name")),
	}
	if !validation.ValidateProductCode(p.Code) {
		return h.fail(c, "Product code must be 2-20 letters or digits")
	}
	if raw := strings.TrimSpace(c.FormValue("target")); raw != "" {
		target, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return h.fail(c, "Target ROAS must be a number")
		}
		if ok, msg := validation.ValidateTarget(target, h.maxTarget); !ok {
			return h.fail(c, msg)
		}
		p.Target = target
	}

	var updatedBy string
	if u := middleware.CurrentUser(c); u != nil {
		updatedBy = u.DisplayName()
	}
	if err := h.store.UpsertProduct(c.Context(), p, updatedBy); err != nil {
		if errors.Is(err, db.ErrInvalidProduct) {
			return h.fail(c, "Product was rejected by the database")
		}
		return err
	}
	h.catalog.Put(*p)
	slog.Info("catalog product saved", "code", p.Code, "target", p.Target, "by", updatedBy)

	if isHTMX(c) {
		c.Set("HX-Redirect", "/catalog")
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect().To("/catalog")
}

// Delete removes a product.
func (h *CatalogHandler) Delete(c fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusNotFound, "Catalog editing requires a database")
	}

	code := extract.NormalizeCode(c.Params("code"))
	if err := h.store.DeleteProduct(c.Context(), code); err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}
	h.catalog.Delete(code)
	slog.Info("catalog product deleted", "code", code)

	// HTMX swaps the row with the empty body
	return c.SendString("")
}

func (h *CatalogHandler) fail(c fiber.Ctx, message string) error {
	if isHTMX(c) {
		return htmxError(c, message)
	}
	return fiber.NewError(fiber.StatusBadRequest, message)
}
