// Package sheets defines the outbound port used to mirror transactions into
// a spreadsheet.
package sheets

import "context"

// Header is the first row of the export sheet.
var Header = []any{"Date", "User", "Type", "Category", "Title", "Amount", "Event", "Transaction ID"}

// Row is one exported transaction line. Amount is the plain two-decimal
// string so the sheet parses it as a number.
type Row struct {
	Date          string
	User          string
	Kind          string
	Category      string
	Title         string
	Amount        string
	Event         string
	TransactionID int64
}

// Values returns the cells in Header order.
func (r Row) Values() []any {
	return []any{r.Date, r.User, r.Kind, r.Category, r.Title, r.Amount, r.Event, r.TransactionID}
}

// RowWriter appends rows to the export target.
type RowWriter interface {
	AppendRow(ctx context.Context, row Row) (ref string, err error)
}
