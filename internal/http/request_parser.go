// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for reading form submissions into the
// domain's raw input types.

package http

import (
	"net/http"
	"strconv"

	"moneytracker/internal/core"
)

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *ResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// TransactionInputFromForm reads the transaction form fields. Values are
// sanitized here and validated by the service.
func TransactionInputFromForm(r *http.Request) core.TransactionInput {
	return core.TransactionInput{
		Title:       sanitizeInput(r.PostForm.Get("title")),
		Amount:      sanitizeInput(r.PostForm.Get("amount")),
		Kind:        sanitizeInput(r.PostForm.Get("type")),
		Category:    sanitizeInput(r.PostForm.Get("category")),
		Description: sanitizeInput(r.PostForm.Get("description")),
		Date:        sanitizeInput(r.PostForm.Get("date")),
	}
}

// TransactionInputOf fills the edit form from a stored transaction.
func TransactionInputOf(t core.Transaction) core.TransactionInput {
	in := core.TransactionInput{
		Title:       t.Title,
		Amount:      t.Amount.String(),
		Kind:        string(t.Kind),
		Description: t.Description,
		Date:        core.FormatDate(t.Date),
	}
	if t.CategoryID != nil {
		in.Category = strconv.FormatInt(*t.CategoryID, 10)
	}
	return in
}

func CategoryInputFromForm(r *http.Request) core.CategoryInput {
	return core.CategoryInput{
		Name:        sanitizeInput(r.PostForm.Get("name")),
		Kind:        sanitizeInput(r.PostForm.Get("type")),
		Description: sanitizeInput(r.PostForm.Get("description")),
		Icon:        sanitizeInput(r.PostForm.Get("icon")),
	}
}
