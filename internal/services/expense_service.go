package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/isdelr/expense-tracker-be/internal/apperrors"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/isdelr/expense-tracker-be/internal/repository"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	maxTitleLength  = 255
)

// ExpenseStore is the persistence the expense service depends on.
type ExpenseStore interface {
	Create(ctx context.Context, ownerID string, in models.ExpenseInput) (models.Expense, error)
	FindByID(ctx context.Context, ownerID, id string) (models.Expense, error)
	Update(ctx context.Context, ownerID, id string, in models.ExpenseInput) (models.Expense, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string, filter models.ExpenseFilter, page models.Page) ([]models.Expense, int, error)
	CategoryAmounts(ctx context.Context, ownerID string) ([]models.CategoryAmount, error)
}

// ListParams are the raw list query parameters as received from the client.
type ListParams struct {
	Category string
	From     string
	To       string
	Search   string
	Page     string
	Limit    string
}

// ExpenseServiceProvider defines the interface for expense services.
type ExpenseServiceProvider interface {
	CreateExpense(ctx context.Context, ownerID string, in models.ExpenseInput) (models.Expense, error)
	GetExpense(ctx context.Context, ownerID, id string) (models.Expense, error)
	UpdateExpense(ctx context.Context, ownerID, id string, in models.ExpenseInput) (models.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id string) error
	ListExpenses(ctx context.Context, ownerID string, params ListParams) (models.ExpenseList, error)
	Summarize(ctx context.Context, ownerID string) (models.Summary, error)
}

// ExpenseService validates input and enforces ownership before touching storage.
type ExpenseService struct {
	store ExpenseStore
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense validates in and stores it for ownerID.
func (s *ExpenseService) CreateExpense(ctx context.Context, ownerID string, in models.ExpenseInput) (models.Expense, error) {
	in, err := validateInput(in)
	if err != nil {
		return models.Expense{}, err
	}
	expense, err := s.store.Create(ctx, ownerID, in)
	if err != nil {
		return models.Expense{}, storeError(err)
	}
	return expense, nil
}

// GetExpense returns the expense if ownerID owns it.
func (s *ExpenseService) GetExpense(ctx context.Context, ownerID, id string) (models.Expense, error) {
	expense, err := s.store.FindByID(ctx, ownerID, id)
	if err != nil {
		return models.Expense{}, storeError(err)
	}
	return expense, nil
}

// UpdateExpense replaces every field of an expense owned by ownerID.
func (s *ExpenseService) UpdateExpense(ctx context.Context, ownerID, id string, in models.ExpenseInput) (models.Expense, error) {
	in, err := validateInput(in)
	if err != nil {
		return models.Expense{}, err
	}
	expense, err := s.store.Update(ctx, ownerID, id, in)
	if err != nil {
		return models.Expense{}, storeError(err)
	}
	return expense, nil
}

// DeleteExpense removes an expense owned by ownerID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id string) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return storeError(err)
	}
	return nil
}

// ListExpenses returns one page of ownerID's expenses matching params.
func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID string, params ListParams) (models.ExpenseList, error) {
	filter, page, err := parseListParams(params)
	if err != nil {
		return models.ExpenseList{}, err
	}

	items, total, err := s.store.List(ctx, ownerID, filter, page)
	if err != nil {
		return models.ExpenseList{}, storeError(err)
	}
	if items == nil {
		items = []models.Expense{}
	}
	return models.ExpenseList{
		Expenses:   items,
		Pagination: models.NewPagination(page, total),
	}, nil
}

// Summarize totals ownerID's expenses by category.
func (s *ExpenseService) Summarize(ctx context.Context, ownerID string) (models.Summary, error) {
	rows, err := s.store.CategoryAmounts(ctx, ownerID)
	if err != nil {
		return models.Summary{}, storeError(err)
	}
	return Summarize(rows), nil
}

func validateInput(in models.ExpenseInput) (models.ExpenseInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.Amount == 0 || in.Category == "" || in.Date.IsZero() {
		return in, apperrors.Validation("All fields are required!")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return in, apperrors.Validation(fmt.Sprintf("Title must be at most %d characters", maxTitleLength))
	}
	if in.Amount < 0 || in.Amount > models.MaxMoney {
		return in, apperrors.Validation(fmt.Sprintf("Amount must be greater than 0 and at most %s", models.MaxMoney))
	}
	category, ok := models.ParseCategory(string(in.Category))
	if !ok {
		return in, invalidCategory()
	}
	in.Category = category
	return in, nil
}

func parseListParams(p ListParams) (models.ExpenseFilter, models.Page, error) {
	var filter models.ExpenseFilter
	page := models.Page{Number: DefaultPage, Size: DefaultPageSize}

	if p.Category != "" {
		category, ok := models.ParseCategory(p.Category)
		if !ok {
			return filter, page, invalidCategory()
		}
		filter.Category = category
	}

	var err error
	if p.From != "" {
		if filter.From, err = models.ParseDate(p.From); err != nil {
			return filter, page, apperrors.Validation("from must be a date in YYYY-MM-DD format")
		}
	}
	if p.To != "" {
		if filter.To, err = models.ParseDate(p.To); err != nil {
			return filter, page, apperrors.Validation("to must be a date in YYYY-MM-DD format")
		}
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, page, apperrors.Validation("from must not be after to")
	}
	filter.Search = strings.TrimSpace(p.Search)

	if p.Page != "" {
		if page.Number, err = strconv.Atoi(p.Page); err != nil || page.Number < 1 {
			return filter, page, apperrors.Validation("page must be a positive integer")
		}
	}
	if p.Limit != "" {
		if page.Size, err = strconv.Atoi(p.Limit); err != nil || page.Size < 1 || page.Size > MaxPageSize {
			return filter, page, apperrors.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
		}
	}
	return filter, page, nil
}

func invalidCategory() error {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return apperrors.Validation("Category must be one of: " + strings.Join(names, ", "))
}

// storeError hides persistence details: a missing row becomes NotFound and
// anything else is internal.
func storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Expense not found.")
	}
	return apperrors.Internal(err)
}
