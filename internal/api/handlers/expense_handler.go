package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/expense-tracker-be/internal/api/respond"
	"github.com/isdelr/expense-tracker-be/internal/apperrors"
	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/isdelr/expense-tracker-be/internal/services"
)

// ExpenseHandler handles HTTP requests for a user's expenses. Every route
// expects auth.Middleware to have attached an identity.
type ExpenseHandler struct {
	service services.ExpenseServiceProvider
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(service services.ExpenseServiceProvider) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

func ownerID(r *http.Request) (string, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return "", apperrors.Unauthenticated("Access Token required!")
	}
	return id.UserID, nil
}

// GetAll returns one page of the caller's expenses.
func (h *ExpenseHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	list, err := h.service.ListExpenses(r.Context(), owner, services.ListParams{
		Category: q.Get("category"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Search:   q.Get("search"),
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// Get returns a single expense.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	expense, err := h.service.GetExpense(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, expense)
}

// Create records a new expense for the caller.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var in models.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}

	expense, err := h.service.CreateExpense(r.Context(), owner, in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, expense)
}

// Update replaces an existing expense.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var in models.ExpenseInput
	if err := decodeJSON(w, r, &in); err != nil {
		respond.Error(w, r, err)
		return
	}

	expense, err := h.service.UpdateExpense(r.Context(), owner, chi.URLParam(r, "id"), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, expense)
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.service.DeleteExpense(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Message(w, http.StatusOK, "Expense deleted successfully")
}

// Summary returns the caller's totals per category.
func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	summary, err := h.service.Summarize(r.Context(), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}
