package storage

import "database/sql"

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    string
}

type Category struct {
	ID          int64
	Name        string
	Kind        string
	Description string
	Icon        string
	IsActive    int64
	CreatedAt   string
}

type Transaction struct {
	ID          int64
	UserID      string
	Title       string
	AmountCents int64
	Kind        string
	CategoryID  sql.NullInt64
	Description string
	Date        string
	CreatedAt   string
	UpdatedAt   string
}
