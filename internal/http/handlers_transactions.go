package http

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/report"
)

type transactionsPage struct {
	Page
	Criteria     report.Criteria
	Start, End   *time.Time
	Transactions []core.Transaction
	Summary      core.Summary
	Categories   []core.Category
}

type transactionFormPage struct {
	Page
	Action     string
	Editing    bool
	Form       core.TransactionInput
	Errors     core.ValidationErrors
	Categories []core.Category
}

type transactionDeletePage struct {
	Page
	Transaction core.Transaction
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := currentUserID(r)
	p := s.newPage(w, r, "Transactions", "transactions")

	c := report.ParseCriteria(r.URL.Query(), report.PresetAll)
	txs, err := s.deps.Transactions.List(ctx, uid, c)
	if err != nil {
		s.serverError(w, r, log.OpList, err)
		return
	}

	summary, err := s.deps.Reports.Summarize(ctx, uid, c.Filter(s.today()))
	if err != nil {
		s.logReportFailure(r, "transactions", err)
		p.Notice = partialDataNotice
	}

	categories, err := s.deps.Categories.List(ctx, c.Kind, false)
	if err != nil {
		s.serverError(w, r, log.OpList, err)
		return
	}

	start, end := c.Period(s.today())
	s.render(w, r, http.StatusOK, "transactions.html", transactionsPage{
		Page:         p,
		Criteria:     c,
		Start:        start,
		End:          end,
		Transactions: txs,
		Summary:      summary,
		Categories:   categories,
	})
}

func (s *Server) handleAddTransactionForm(w http.ResponseWriter, r *http.Request) {
	kind := core.KindExpense
	if k, err := core.ParseKind(r.URL.Query().Get("type")); err == nil {
		kind = k
	}
	form := core.TransactionInput{Kind: string(kind), Date: core.FormatDate(s.today())}
	s.renderTransactionForm(w, r, http.StatusOK, 0, form, nil)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w, r)
		return
	}
	in := TransactionInputFromForm(r)

	t, err := s.deps.Transactions.Create(r.Context(), currentUserID(r), in)
	if err != nil {
		if v, ok := core.AsValidation(err); ok {
			s.renderTransactionForm(w, r, http.StatusUnprocessableEntity, 0, in, v)
			return
		}
		s.serverError(w, r, log.OpCreate, err)
		return
	}

	NewResponse().
		Success(fmt.Sprintf("%s %q of %s recorded.", t.Kind.Label(), t.Title, t.Amount.Format())).
		Redirect("/transactions").
		Write(w, r)
}

func (s *Server) handleEditTransactionForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	t, err := s.deps.Transactions.Get(r.Context(), currentUserID(r), id)
	if err != nil {
		s.failure(w, r, log.OpRead, err)
		return
	}
	s.renderTransactionForm(w, r, http.StatusOK, id, TransactionInputOf(t), nil)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w, r)
		return
	}
	in := TransactionInputFromForm(r)

	t, err := s.deps.Transactions.Update(r.Context(), currentUserID(r), id, in)
	if err != nil {
		if v, ok := core.AsValidation(err); ok {
			s.renderTransactionForm(w, r, http.StatusUnprocessableEntity, id, in, v)
			return
		}
		s.failure(w, r, log.OpUpdate, err)
		return
	}

	NewResponse().
		Success(fmt.Sprintf("Transaction %q updated.", t.Title)).
		Redirect("/transactions").
		Write(w, r)
}

func (s *Server) handleDeleteTransactionForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	t, err := s.deps.Transactions.Get(r.Context(), currentUserID(r), id)
	if err != nil {
		s.failure(w, r, log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "transaction_delete.html", transactionDeletePage{
		Page:        s.newPage(w, r, "Delete transaction", "transactions"),
		Transaction: t,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.notFound(w, r)
		return
	}
	if err := s.deps.Transactions.Delete(r.Context(), currentUserID(r), id); err != nil {
		s.failure(w, r, log.OpDelete, err)
		return
	}
	NewResponse().Success("Transaction deleted.").Redirect("/transactions").Write(w, r)
}

// renderTransactionForm shows the add form when id is 0 and the edit form
// otherwise. The category choices are the active ones, plus the currently
// selected category if it has since been disabled.
func (s *Server) renderTransactionForm(w http.ResponseWriter, r *http.Request, status int, id int64, form core.TransactionInput, errs core.ValidationErrors) {
	ctx := r.Context()
	categories, err := s.deps.Categories.List(ctx, nil, true)
	if err != nil {
		s.serverError(w, r, log.OpList, err)
		return
	}

	if cid, err := strconv.ParseInt(form.Category, 10, 64); err == nil {
		known := slices.ContainsFunc(categories, func(c core.Category) bool { return c.ID == cid })
		if !known {
			if c, err := s.deps.Categories.Get(ctx, cid); err == nil {
				categories = append(categories, c)
			}
		}
	}

	p := formPageFor(id)
	p.Page = s.newPage(w, r, p.Page.Title, "transactions")
	p.Form = form
	p.Errors = errs
	p.Categories = categories
	s.render(w, r, status, "transaction_form.html", p)
}

func formPageFor(id int64) transactionFormPage {
	if id == 0 {
		return transactionFormPage{Page: Page{Title: "Add transaction"}, Action: "/transactions/add"}
	}
	return transactionFormPage{
		Page:    Page{Title: "Edit transaction"},
		Action:  "/transactions/" + url.PathEscape(strconv.FormatInt(id, 10)) + "/edit",
		Editing: true,
	}
}
