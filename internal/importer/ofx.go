// Package importer reads bank and credit-card statements and records their
// entries as transactions.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes formatting issues common in bank-exported SGML files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// ParseOFX extracts every bank and credit-card statement line from r.
// Credits become income and debits expenses, with the absolute amount.
func ParseOFX(r io.Reader) ([]core.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parse OFX file: %w", err)
	}

	var out []core.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			out = appendEntries(out, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			out = appendEntries(out, stmt.BankTranList.Transactions)
		}
	}
	return out, nil
}

func appendEntries(out []core.Transaction, txs []ofxgo.Transaction) []core.Transaction {
	for _, tx := range txs {
		t, ok := convert(tx)
		if !ok {
			slog.Warn("Skipping statement line with zero or unreadable amount",
				log.FieldComponent, log.ComponentImport,
				"fitid", string(tx.FiTID))
			continue
		}
		out = append(out, t)
	}
	return out
}

// statementDigits is enough to carry any statement amount exactly.
const statementDigits = 8

func convert(tx ofxgo.Transaction) (core.Transaction, bool) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(statementDigits))
	if err != nil || amount.IsZero() {
		return core.Transaction{}, false
	}

	kind := core.KindExpense
	if amount.IsPositive() {
		kind = core.KindIncome
	}

	title := strings.TrimSpace(string(tx.Name))
	if tx.Payee != nil && strings.TrimSpace(string(tx.Payee.Name)) != "" {
		title = strings.TrimSpace(string(tx.Payee.Name))
	}
	memo := strings.TrimSpace(string(tx.Memo))
	if title == "" {
		title, memo = memo, ""
	}
	if title == "" {
		title = fmt.Sprintf("%s %s", tx.TrnType, tx.FiTID)
	}
	if runes := []rune(title); len(runes) > core.MaxTitleLength {
		title = string(runes[:core.MaxTitleLength])
	}

	return core.Transaction{
		Title:       title,
		Amount:      core.ExactMoney(amount.Abs()),
		Kind:        kind,
		Description: memo,
		Date:        core.DateOf(tx.DtPosted.Time),
	}, true
}

// Recorder persists an already built transaction, validating it first.
type Recorder interface {
	Record(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error)
}

// Result summarises an import run.
type Result struct {
	Parsed   int
	Imported int
	Rejected []error
}

// ImportOFX records every line of the statement for userID. Lines failing
// validation are collected in Result.Rejected; other errors stop the run.
func ImportOFX(ctx context.Context, rec Recorder, userID string, r io.Reader) (Result, error) {
	txs, err := ParseOFX(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Parsed: len(txs)}
	for _, t := range txs {
		if _, err := rec.Record(ctx, userID, t); err != nil {
			if _, ok := core.AsValidation(err); ok {
				res.Rejected = append(res.Rejected, fmt.Errorf("%s on %s: %w", t.Title, core.FormatDate(t.Date), err))
				continue
			}
			return res, fmt.Errorf("record %q: %w", t.Title, err)
		}
		res.Imported++
	}

	slog.InfoContext(ctx, "Statement imported",
		log.FieldComponent, log.ComponentImport,
		log.FieldOperation, log.OpImport,
		log.FieldUserID, userID,
		"parsed", res.Parsed,
		"imported", res.Imported,
		"rejected", len(res.Rejected))
	return res, nil
}
