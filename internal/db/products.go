package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"adreport/internal/models"
)

// ListProducts returns every catalog product ordered by code.
func (d *DB) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := d.Pool.Query(ctx, `SELECT code, name, target, updated_at FROM products ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.Code, &p.Name, &p.Target, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpsertProduct creates or updates a product and sets UpdatedAt.
func (d *DB) UpsertProduct(ctx context.Context, p *models.Product, updatedBy string) error {
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO products (code, name, target, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, target = EXCLUDED.target,
		    updated_by = EXCLUDED.updated_by, updated_at = NOW()
		RETURNING updated_at
	`, p.Code, p.Name, p.Target, updatedBy).Scan(&p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return fmt.Errorf("%w: %s", ErrInvalidProduct, pgErr.ConstraintName)
		}
		return err
	}
	return nil
}

// DeleteProduct removes a product.
func (d *DB) DeleteProduct(ctx context.Context, code string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM products WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
