package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	EnsureCategory(ctx context.Context, c core.Category) (bool, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, kind *core.Kind, activeOnly bool) ([]core.Category, error)
	SetCategoryActive(ctx context.Context, id int64, active bool) error
	CountTransactionsByCategory(ctx context.Context, id int64) (int64, error)
	DeleteCategoryIfUnused(ctx context.Context, id int64) (int64, error)
}

// CategoryService manages the shared category catalog.
type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// List returns categories ordered by kind then name. A nil kind lists both.
func (s *CategoryService) List(ctx context.Context, kind *core.Kind, activeOnly bool) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, kind, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Create validates the form and stores a new active category. A duplicate
// (name, kind) pair is reported on the name field.
func (s *CategoryService) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	c, err := in.ToCategory()
	if err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateCategory) {
			return core.Category{}, core.ValidationErrors{
				"name": fmt.Sprintf("an %s category named %q already exists", c.Kind, c.Name),
			}
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		log.FieldComponent, log.ComponentCategory,
		log.FieldCategoryID, created.ID,
		log.FieldKind, created.Kind)
	return created, nil
}

// Toggle flips the active flag and returns the updated category.
func (s *CategoryService) Toggle(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	if err := s.store.SetCategoryActive(ctx, id, !c.Active); err != nil {
		return core.Category{}, fmt.Errorf("set category active: %w", err)
	}
	c.Active = !c.Active
	return c, nil
}

// Usage counts the transactions, of any user, that reference the category.
func (s *CategoryService) Usage(ctx context.Context, id int64) (int64, error) {
	n, err := s.store.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count category usage: %w", err)
	}
	return n, nil
}

// Delete removes a category nobody references. When transactions still
// point at it a *core.CategoryInUseError carrying their count is returned
// and nothing is deleted.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}

	blocking, err := s.store.DeleteCategoryIfUnused(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if blocking > 0 {
		return &core.CategoryInUseError{Name: c.Name, Count: blocking}
	}
	return nil
}
