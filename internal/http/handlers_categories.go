package http

import (
	"errors"
	"fmt"
	"net/http"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

type categoriesPage struct {
	Page
	Income  []core.Category
	Expense []core.Category
	Form    core.CategoryInput
	Errors  core.ValidationErrors
}

type categoryDeletePage struct {
	Page
	Category core.Category
	Usage    int64
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.renderCategories(w, r, http.StatusOK, core.CategoryInput{Kind: string(core.KindExpense)}, nil)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w, r)
		return
	}
	in := CategoryInputFromForm(r)

	c, err := s.deps.Categories.Create(r.Context(), in)
	if err != nil {
		if v, ok := core.AsValidation(err); ok {
			s.renderCategories(w, r, http.StatusUnprocessableEntity, in, v)
			return
		}
		s.serverError(w, r, log.OpCreate, err)
		return
	}

	NewResponse().
		Success(fmt.Sprintf("%s category %q created.", c.Kind.Label(), c.Name)).
		Redirect("/categories").
		Write(w, r)
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	c, err := s.deps.Categories.Toggle(r.Context(), id)
	if err != nil {
		s.failure(w, r, log.OpToggle, err)
		return
	}

	state := "disabled"
	if c.Active {
		state = "enabled"
	}
	NewResponse().
		Success(fmt.Sprintf("Category %q %s.", c.Name, state)).
		Redirect("/categories").
		Write(w, r)
}

func (s *Server) handleDeleteCategoryForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	c, err := s.deps.Categories.Get(r.Context(), id)
	if err != nil {
		s.failure(w, r, log.OpRead, err)
		return
	}
	usage, err := s.deps.Categories.Usage(r.Context(), id)
	if err != nil {
		s.serverError(w, r, log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "category_delete.html", categoryDeletePage{
		Page:     s.newPage(w, r, "Delete category", "categories"),
		Category: c,
		Usage:    usage,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}

	err := s.deps.Categories.Delete(r.Context(), id)
	var inUse *core.CategoryInUseError
	switch {
	case errors.As(err, &inUse):
		NewResponse().Error(inUse.Error()).Redirect("/categories").Write(w, r)
	case err != nil:
		s.failure(w, r, log.OpDelete, err)
	default:
		NewResponse().Success("Category deleted.").Redirect("/categories").Write(w, r)
	}
}

func (s *Server) renderCategories(w http.ResponseWriter, r *http.Request, status int, form core.CategoryInput, errs core.ValidationErrors) {
	all, err := s.deps.Categories.List(r.Context(), nil, false)
	if err != nil {
		s.serverError(w, r, log.OpList, err)
		return
	}

	p := categoriesPage{
		Page:   s.newPage(w, r, "Categories", "categories"),
		Form:   form,
		Errors: errs,
	}
	for _, c := range all {
		if c.Kind == core.KindIncome {
			p.Income = append(p.Income, c)
		} else {
			p.Expense = append(p.Expense, c)
		}
	}
	s.render(w, r, status, "categories.html", p)
}
