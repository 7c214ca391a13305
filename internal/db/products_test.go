package db

import (
	"context"
	"errors"
	"testing"

	"adreport/internal/models"
)

func TestUpsertProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	p := &models.Product{Code: "A123", Name: "텀블러", Target: 300}
	if err := db.UpsertProduct(ctx, p, "tester"); err != nil {
		t.Fatalf("UpsertProduct() create error = %v", err)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("UpsertProduct() did not set UpdatedAt")
	}

	p.Name = "텀블러 500ml"
	p.Target = 350
	if err := db.UpsertProduct(ctx, p, "tester"); err != nil {
		t.Fatalf("UpsertProduct() update error = %v", err)
	}

	products, err := db.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("ListProducts() returned %d products, want 1", len(products))
	}
	if got := products[0]; got.Name != "텀블러 500ml" || got.Target != 350 {
		t.Errorf("ListProducts()[0] = %+v, want updated values", got)
	}
}

func TestUpsertProduct_NegativeTarget(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := db.UpsertProduct(context.Background(), &models.Product{Code: "BAD1", Target: -1}, "tester")
	if !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("UpsertProduct() error = %v, want ErrInvalidProduct", err)
	}
}

func TestListAndDeleteProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	seed := []models.Product{
		{Code: "B456", Name: "보온병", Target: 250},
		{Code: "A123", Name: "텀블러", Target: 300},
	}
	if err := db.SeedProducts(ctx, seed); err != nil {
		t.Fatalf("SeedProducts() error = %v", err)
	}
	// Seeding again must not overwrite edits.
	if err := db.UpsertProduct(ctx, &models.Product{Code: "A123", Name: "edited", Target: 300}, "tester"); err != nil {
		t.Fatalf("UpsertProduct() error = %v", err)
	}
	if err := db.SeedProducts(ctx, seed); err != nil {
		t.Fatalf("SeedProducts() second run error = %v", err)
	}

	products, err := db.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("ListProducts() returned %d products, want 2", len(products))
	}
	if products[0].Code != "A123" || products[0].Name != "edited" {
		t.Errorf("ListProducts()[0] = %+v, want edited A123 first", products[0])
	}

	if err := db.DeleteProduct(ctx, "A123"); err != nil {
		t.Fatalf("DeleteProduct() error = %v", err)
	}
	if err := db.DeleteProduct(ctx, "A123"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("DeleteProduct() twice error = %v, want ErrProductNotFound", err)
	}
}
