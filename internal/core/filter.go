package core

import "time"

// TransactionFilter narrows a user's transactions. Nil fields do not filter.
// Both date bounds are inclusive calendar days.
type TransactionFilter struct {
	Kind       *Kind
	CategoryID *int64
	From       *time.Time
	To         *time.Time
	Limit      int // 0 means no limit

	// Chronological orders by date then creation time, oldest first.
	// The default is newest first.
	Chronological bool
}
