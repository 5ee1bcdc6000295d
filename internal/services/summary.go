package services

import "github.com/isdelr/expense-tracker-be/internal/models"

// Summarize folds category/amount pairs into per-category totals. Amounts are
// integer cents, so the grand total always equals the sum of the categories.
func Summarize(rows []models.CategoryAmount) models.Summary {
	summary := models.Summary{PerCategory: make(map[models.Category]models.Money)}
	for _, row := range rows {
		summary.PerCategory[row.Category] += row.Amount
		summary.Total += row.Amount
	}
	return summary
}
