package services

import (
	"context"
	"fmt"
	"log/slog"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

// CatalogEntry is one default category.
type CatalogEntry struct {
	Name string
	Kind core.Kind
	Icon string
}

// DefaultCatalog is the category set a fresh installation starts with.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{"Food sales", core.KindIncome, "bi-egg-fried"},
		{"Beverage sales", core.KindIncome, "bi-cup"},
		{"Dessert sales", core.KindIncome, "bi-cake"},
		{"Snack sales", core.KindIncome, "bi-bag"},
		{"Catering services", core.KindIncome, "bi-calendar-event"},
		{"Other income", core.KindIncome, "bi-wallet"},

		{"Food ingredients", core.KindExpense, "bi-basket"},
		{"Beverage ingredients", core.KindExpense, "bi-cup-straw"},
		{"Staff wages", core.KindExpense, "bi-people"},
		{"Rent", core.KindExpense, "bi-building"},
		{"Water & electricity", core.KindExpense, "bi-lightning"},
		{"Gas", core.KindExpense, "bi-fire"},
		{"Kitchen equipment", core.KindExpense, "bi-tools"},
		{"Packaging", core.KindExpense, "bi-box"},
		{"Advertising", core.KindExpense, "bi-megaphone"},
		{"Maintenance & repairs", core.KindExpense, "bi-wrench"},
		{"Transport", core.KindExpense, "bi-truck"},
		{"Taxes", core.KindExpense, "bi-receipt"},
		{"Other expenses", core.KindExpense, "bi-cash-stack"},
	}
}

type CatalogStore interface {
	EnsureCategory(ctx context.Context, c core.Category) (bool, error)
}

// Seeder installs the default catalog. Running it again only adds entries
// that are missing; existing rows, including disabled ones, are untouched.
type Seeder struct {
	store   CatalogStore
	catalog []CatalogEntry
}

func NewSeeder(store CatalogStore) *Seeder {
	return &Seeder{store: store, catalog: DefaultCatalog()}
}

// Seed returns how many categories were created.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, e := range s.catalog {
		c := core.Category{Name: e.Name, Kind: e.Kind, Icon: e.Icon, Active: true}
		if err := c.Validate(); err != nil {
			return created, fmt.Errorf("catalog entry %q: %w", e.Name, err)
		}
		ok, err := s.store.EnsureCategory(ctx, c)
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", e.Name, err)
		}
		if ok {
			created++
		}
	}

	slog.InfoContext(ctx, "Category catalog seeded",
		log.FieldComponent, log.ComponentCategory,
		log.FieldOperation, log.OpSeed,
		"created", created,
		"catalog_size", len(s.catalog))
	return created, nil
}
