package models

import "time"

// Expense is a single spending record owned by exactly one user.
type Expense struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Amount    Money     `json:"amount"`
	Category  Category  `json:"category"`
	Date      Date      `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExpenseInput carries the client-editable fields. Updates replace all of them.
type ExpenseInput struct {
	Title    string   `json:"title"`
	Amount   Money    `json:"amount"`
	Category Category `json:"category"`
	Date     Date     `json:"date"`
}

// ExpenseFilter is a conjunction of optional predicates. Zero fields do not filter.
type ExpenseFilter struct {
	Category Category
	From     Date
	To       Date
	Search   string
}

// Page is a 1-indexed pagination window.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of rows skipped before the window starts.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPagination computes totalPages as ceil(total / size).
func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Pagination{
		CurrentPage:  p.Number,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: p.Size,
	}
}

// ExpenseList is one page of a user's expenses.
type ExpenseList struct {
	Expenses   []Expense  `json:"expenses"`
	Pagination Pagination `json:"pagination"`
}

// CategoryAmount is the projection the summary is folded from.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// Summary holds per-category totals and their grand total.
type Summary struct {
	PerCategory map[Category]Money `json:"summary"`
	Total       Money              `json:"total"`
}
