package jobs

import (
	"context"
	"log/slog"
	"time"

	"adreport/internal/catalog"
	"adreport/internal/models"
)

// ProductSource lists the stored catalog products.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// CatalogRefresher periodically reloads the in-memory catalog from the
// database so edits made on another replica show up.
type CatalogRefresher struct {
	source   ProductSource
	catalog  *catalog.Catalog
	interval time.Duration
	logger   *slog.Logger
}

// NewCatalogRefresher creates a new catalog refresher.
func NewCatalogRefresher(source ProductSource, cat *catalog.Catalog, interval time.Duration, logger *slog.Logger) *CatalogRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogRefresher{
		source:   source,
		catalog:  cat,
		interval: interval,
		logger:   logger.With("job", "catalog_refresher"),
	}
}

// Start begins the refresh loop. It blocks until ctx is cancelled.
func (r *CatalogRefresher) Start(ctx context.Context) {
	r.logger.Info("catalog refresher started", "interval", r.interval)

	// Run immediately on start
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("catalog refresher stopped")
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh reloads the catalog once. On error the previous contents are kept.
func (r *CatalogRefresher) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	products, err := r.source.ListProducts(ctx)
	if err != nil {
		r.logger.Error("failed to load products", "error", err)
		return
	}
	r.catalog.Replace(products)
	r.logger.Debug("catalog refreshed", "products", len(products))
}
