package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/database"
	"github.com/isdelr/expense-tracker-be/internal/health"
	"github.com/isdelr/expense-tracker-be/internal/repository"
	"github.com/isdelr/expense-tracker-be/internal/services"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "router-test-secret"

type RouterSuite struct {
	suite.Suite
	handler http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	path := filepath.Join(s.T().TempDir(), "expenses.db")
	s.Require().NoError(database.Migrate(path))
	db, err := database.New(path, database.DefaultOptions())
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })

	tokens := auth.NewTokenService(testSecret, time.Hour)
	userService := services.NewUserService(
		repository.NewUserRepository(db, 5*time.Second),
		auth.NewPasswordHasher(bcrypt.MinCost),
		tokens,
	)
	expenseService := services.NewExpenseService(repository.NewExpenseRepository(db, 5*time.Second))
	readiness := health.NewService(health.NewDatabaseChecker(db))

	s.handler = NewRouter(Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		Environment:    "test",
		ExposeStack:    true,
	}, userService, expenseService, tokens, readiness)
}

func (s *RouterSuite) do(method, path, token string, body any) (int, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (s *RouterSuite) register(email string) string {
	code, body := s.do(http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": "password123"})
	s.Require().Equal(http.StatusCreated, code, body)
	return body["user"].(map[string]any)["id"].(string)
}

func (s *RouterSuite) login(email string) string {
	code, body := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "password123"})
	s.Require().Equal(http.StatusOK, code, body)
	return body["token"].(string)
}

func (s *RouterSuite) createExpense(token, title string, amount any, category, date string) string {
	code, body := s.do(http.MethodPost, "/expenses", token, map[string]any{
		"title": title, "amount": amount, "category": category, "date": date,
	})
	s.Require().Equal(http.StatusCreated, code, body)
	return body["id"].(string)
}

func (s *RouterSuite) TestHealthEndpoints() {
	code, body := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("Expense Tracker API is running!", body["message"])
	s.Equal("test", body["environment"])

	code, body = s.do(http.MethodGet, "/api/ready", "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("ready", body["status"])
	s.Equal(map[string]any{"database": "ok"}, body["checks"])
}

func (s *RouterSuite) TestUnknownRoute() {
	code, body := s.do(http.MethodGet, "/nope?x=1", "", nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("Route not found", body["message"])
	s.Equal("/nope?x=1", body["path"])

	code, _ = s.do(http.MethodPatch, "/auth/login", "", nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterSuite) TestDuplicateRegistration() {
	s.register("dup@example.com")

	code, body := s.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "DUP@example.com", "password": "password123"})
	s.Equal(http.StatusConflict, code)
	s.Equal("Email already registered!", body["message"])
}

func (s *RouterSuite) TestInvalidCredentialsAreIdentical() {
	s.register("known@example.com")

	wrongCode, wrongBody := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "known@example.com", "password": "bad-password"})
	unknownCode, unknownBody := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "password123"})

	s.Equal(http.StatusUnauthorized, wrongCode)
	s.Equal(wrongCode, unknownCode)
	s.Equal(wrongBody, unknownBody)
}

func (s *RouterSuite) TestExpensesRequireToken() {
	code, body := s.do(http.MethodGet, "/expenses", "", nil)
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("Access Token required!", body["message"])

	code, _ = s.do(http.MethodGet, "/expenses", "not-a-jwt", nil)
	s.Equal(http.StatusForbidden, code)
}

func (s *RouterSuite) TestExpiredToken() {
	id := s.register("late@example.com")
	expired, err := auth.NewTokenService(testSecret, -time.Minute).Issue(id)
	s.Require().NoError(err)

	fresh := s.login("late@example.com")
	existing := s.createExpense(fresh, "Taxi", 15, "transport", "2024-04-01")
	payload := map[string]any{"title": "Taxi", "amount": 20, "category": "transport", "date": "2024-04-01"}

	endpoints := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/expenses", nil},
		{http.MethodPost, "/expenses", payload},
		{http.MethodGet, "/expenses/summary", nil},
		{http.MethodGet, "/expenses/" + existing, nil},
		{http.MethodPut, "/expenses/" + existing, payload},
		{http.MethodDelete, "/expenses/" + existing, nil},
	}
	for _, ep := range endpoints {
		code, body := s.do(ep.method, ep.path, expired, ep.body)
		s.Equal(http.StatusForbidden, code, "%s %s", ep.method, ep.path)
		s.Equal("Invalid or expired Token.", body["message"], "%s %s", ep.method, ep.path)
	}

	code, body := s.do(http.MethodGet, "/expenses/"+existing, fresh, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(15.0, body["amount"], "rejected requests must not mutate")
}

func (s *RouterSuite) TestExpenseLifecycle() {
	s.register("life@example.com")
	token := s.login("life@example.com")

	id := s.createExpense(token, "Groceries", 42.5, "food", "2024-03-10")

	code, body := s.do(http.MethodGet, "/expenses/"+id, token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("Groceries", body["title"])
	s.Equal(42.5, body["amount"])
	s.Equal("2024-03-10", body["date"])

	code, body = s.do(http.MethodPut, "/expenses/"+id, token, map[string]any{
		"title": "Groceries and wine", "amount": "57.99", "category": "shopping", "date": "2024-03-11",
	})
	s.Require().Equal(http.StatusOK, code, body)
	s.Equal("shopping", body["category"])
	s.Equal(57.99, body["amount"])

	code, body = s.do(http.MethodDelete, "/expenses/"+id, token, nil)
	s.Equal(http.StatusOK, code)
	s.Equal("Expense deleted successfully", body["message"])

	code, _ = s.do(http.MethodDelete, "/expenses/"+id, token, nil)
	s.Equal(http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/expenses/"+id, token, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterSuite) TestCrossUserAccessIsNotFound() {
	s.register("alice@example.com")
	s.register("bob@example.com")
	alice := s.login("alice@example.com")
	bob := s.login("bob@example.com")

	id := s.createExpense(alice, "Rent", 900, "bills", "2024-02-01")

	code, _ := s.do(http.MethodGet, "/expenses/"+id, bob, nil)
	s.Equal(http.StatusNotFound, code)
	code, _ = s.do(http.MethodPut, "/expenses/"+id, bob, map[string]any{
		"title": "Mine now", "amount": 1, "category": "bills", "date": "2024-02-01",
	})
	s.Equal(http.StatusNotFound, code)
	code, _ = s.do(http.MethodDelete, "/expenses/"+id, bob, nil)
	s.Equal(http.StatusNotFound, code)

	code, body := s.do(http.MethodGet, "/expenses", bob, nil)
	s.Equal(http.StatusOK, code)
	s.Empty(body["expenses"])

	code, body = s.do(http.MethodGet, "/expenses/"+id, alice, nil)
	s.Equal(http.StatusOK, code)
	s.Equal("Rent", body["title"])
}

func (s *RouterSuite) TestPagination() {
	s.register("pages@example.com")
	token := s.login("pages@example.com")
	for i := 0; i < 25; i++ {
		s.createExpense(token, fmt.Sprintf("Item %02d", i), i+1, "other", fmt.Sprintf("2024-01-%02d", i+1))
	}

	seen := map[string]bool{}
	for page, want := range []int{10, 10, 5} {
		code, body := s.do(http.MethodGet, fmt.Sprintf("/expenses?page=%d", page+1), token, nil)
		s.Require().Equal(http.StatusOK, code)

		items := body["expenses"].([]any)
		s.Len(items, want)
		for _, it := range items {
			seen[it.(map[string]any)["id"].(string)] = true
		}

		p := body["pagination"].(map[string]any)
		s.Equal(float64(page+1), p["currentPage"])
		s.Equal(float64(3), p["totalPages"])
		s.Equal(float64(25), p["totalItems"])
		s.Equal(float64(10), p["itemsPerPage"])
	}
	s.Len(seen, 25, "pages must not overlap")

	code, body := s.do(http.MethodGet, "/expenses?page=1", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal("2024-01-25", body["expenses"].([]any)[0].(map[string]any)["date"], "newest first")

	code, _ = s.do(http.MethodGet, "/expenses?limit=500", token, nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *RouterSuite) TestFilters() {
	s.register("filter@example.com")
	token := s.login("filter@example.com")
	s.createExpense(token, "Bus pass", 30, "transport", "2024-01-05")
	s.createExpense(token, "Cinema", 12, "entertainment", "2024-01-15")
	s.createExpense(token, "Bus ticket", 2.5, "transport", "2024-02-01")

	code, body := s.do(http.MethodGet, "/expenses?from=2024-01-01&to=2024-01-31", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Len(body["expenses"], 2)

	code, body = s.do(http.MethodGet, "/expenses?category=transport", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Len(body["expenses"], 2)

	code, body = s.do(http.MethodGet, "/expenses?search=ticket", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Len(body["expenses"], 1)

	code, _ = s.do(http.MethodGet, "/expenses?from=2024-02-01&to=2024-01-01", token, nil)
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodGet, "/expenses?category=travel", token, nil)
	s.Equal(http.StatusBadRequest, code)
}

func (s *RouterSuite) TestSummary() {
	s.register("sum@example.com")
	token := s.login("sum@example.com")

	code, body := s.do(http.MethodGet, "/expenses/summary", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Empty(body["summary"])
	s.Equal(float64(0), body["total"])

	s.createExpense(token, "Lunch", 10.1, "food", "2024-01-01")
	s.createExpense(token, "Dinner", 20.2, "food", "2024-01-02")
	s.createExpense(token, "Power", 0.7, "bills", "2024-01-03")

	code, body = s.do(http.MethodGet, "/expenses/summary", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(map[string]any{"food": 30.3, "bills": 0.7}, body["summary"])
	s.Equal(31.0, body["total"])
}

func (s *RouterSuite) TestCreateValidation() {
	s.register("valid@example.com")
	token := s.login("valid@example.com")

	code, body := s.do(http.MethodPost, "/expenses", token, map[string]any{"title": "Only a title"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("All fields are required!", body["message"])

	code, _ = s.do(http.MethodPost, "/expenses", token, map[string]any{
		"title": "Refund", "amount": -10, "category": "food", "date": "2024-01-01",
	})
	s.Equal(http.StatusBadRequest, code)

	for _, amount := range []string{"92233720368547757", "1.٣"} {
		code, body = s.do(http.MethodPost, "/expenses", token, map[string]any{
			"title": "Huge", "amount": amount, "category": "food", "date": "2024-01-01",
		})
		s.Equal(http.StatusBadRequest, code, amount)
		s.Equal("Amount must be a positive number", body["message"], amount)
	}
	code, body = s.do(http.MethodGet, "/expenses", token, nil)
	s.Require().Equal(http.StatusOK, code)
	s.Empty(body["expenses"])
}

func (s *RouterSuite) TestMisspelledSummaryIsTreatedAsID() {
	s.register("typo@example.com")
	token := s.login("typo@example.com")
	s.createExpense(token, "Lunch", 10, "food", "2024-01-01")

	code, body := s.do(http.MethodGet, "/expenses/sumarry", token, nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("Expense not found.", body["message"])
	s.NotContains(body, "summary")
}

func (s *RouterSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal("http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
}
