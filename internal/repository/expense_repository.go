package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/expense-tracker-be/internal/models"
)

const expenseColumns = "id, user_id, title, amount_cents, category, spent_on, created_at, updated_at"

// ExpenseRepository persists expense records scoped by owner.
type ExpenseRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db *sql.DB, acquireTimeout time.Duration) *ExpenseRepository {
	return &ExpenseRepository{db: db, timeout: acquireTimeout}
}

// Create stores a new expense for ownerID, assigning its id and timestamps.
func (r *ExpenseRepository) Create(ctx context.Context, ownerID string, in models.ExpenseInput) (models.Expense, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ts := now()
	expense := models.Expense{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Title:     in.Title,
		Amount:    in.Amount,
		Category:  in.Category,
		Date:      in.Date,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.UserID, expense.Title, expense.Amount.Cents(), string(expense.Category),
		expense.Date.String(), expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return models.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return expense, nil
}

// FindByID returns the expense only if it belongs to ownerID.
func (r *ExpenseRepository) FindByID(ctx context.Context, ownerID, id string) (models.Expense, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?", id, ownerID)
	return scanExpense(row)
}

// Update replaces every editable field of an expense owned by ownerID.
func (r *ExpenseRepository) Update(ctx context.Context, ownerID, id string, in models.ExpenseInput) (models.Expense, error) {
	tctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(tctx, `
		UPDATE expenses
		SET title = ?, amount_cents = ?, category = ?, spent_on = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		in.Title, in.Amount.Cents(), string(in.Category), in.Date.String(), now(), id, ownerID,
	)
	if err != nil {
		return models.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return models.Expense{}, err
	}
	return r.FindByID(ctx, ownerID, id)
}

// Delete hard-deletes an expense owned by ownerID.
func (r *ExpenseRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return expectAffected(res)
}

// List returns one page of ownerID's expenses matching filter, newest date
// first, together with the number of matching rows across all pages.
func (r *ExpenseRepository) List(ctx context.Context, ownerID string, filter models.ExpenseFilter, page models.Page) ([]models.Expense, int, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	where, args := buildWhere(ownerID, filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := "SELECT " + expenseColumns + " FROM expenses WHERE " + where +
		" ORDER BY spent_on DESC, created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0, page.Size)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, total, nil
}

// CategoryAmounts loads the category and amount of every expense owned by ownerID.
func (r *ExpenseRepository) CategoryAmounts(ctx context.Context, ownerID string) ([]models.CategoryAmount, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, "SELECT category, amount_cents FROM expenses WHERE user_id = ?", ownerID)
	if err != nil {
		return nil, fmt.Errorf("load category amounts: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryAmount
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category amount: %w", err)
		}
		out = append(out, models.CategoryAmount{Category: models.Category(category), Amount: models.Money(cents)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category amounts: %w", err)
	}
	return out, nil
}

// buildWhere turns the filter into a conjunction of predicates. The owner
// predicate is always first and always present.
func buildWhere(ownerID string, filter models.ExpenseFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{ownerID}

	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(filter.Category))
	}
	if !filter.From.IsZero() {
		clauses = append(clauses, "spent_on >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "spent_on <= ?")
		args = append(args, filter.To.String())
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		clauses = append(clauses, `title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(search)+"%")
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanExpense(row scanner) (models.Expense, error) {
	var (
		expense  models.Expense
		cents    int64
		category string
		spentOn  string
	)
	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Title,
		&cents,
		&category,
		&spentOn,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Expense{}, ErrNotFound
		}
		return models.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	date, err := models.ParseDate(spentOn)
	if err != nil {
		return models.Expense{}, fmt.Errorf("stored date %q: %w", spentOn, err)
	}
	expense.Amount = models.Money(cents)
	expense.Category = models.Category(category)
	expense.Date = date
	return expense, nil
}
