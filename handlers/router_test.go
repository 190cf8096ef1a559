package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/handlers"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/models/modeltest"
	"github.com/mmdatafocus/pos_backend/models/reports"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, context.Context) {
	t.Helper()
	ctx := modeltest.Setup(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers.Register(r.Group("/api/v1"))
	r.NoRoute(handlers.NotFound)
	return r, ctx
}

func call(t *testing.T, r http.Handler, method string, path string, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func login(t *testing.T, r http.Handler, username string) string {
	t.Helper()
	w := call(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": username, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decode[models.LoginInfo](t, w)
	require.NotEmpty(t, info.AccessToken)
	return info.AccessToken
}

func TestAuthFlow(t *testing.T) {
	r, _ := newRouter(t)

	w := call(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "newbie", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "newbie", "password": "password123"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = call(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "x", "password": "short"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w).Fields
	require.Contains(t, fields, "Username")
	require.Contains(t, fields, "Password")

	w = call(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "newbie", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, r, "newbie")
	w = call(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.User](t, w)
	require.Equal(t, "newbie", me.Username)
	require.Equal(t, models.RoleUser, me.RoleName())

	w = call(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = call(t, r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code, "a logged out token must be rejected")
}

func TestRoleGates(t *testing.T) {
	r, ctx := newRouter(t)
	modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	modeltest.Staff(t, ctx, "manager1", models.RoleManager)
	p := modeltest.Product(t, ctx, "Widget", "4")
	cashier := login(t, r, "cashier1")
	manager := login(t, r, "manager1")

	restock := "/api/v1/inventory/restock/" + strconv.Itoa(p.ID)
	w := call(t, r, http.MethodPost, restock, cashier, gin.H{"quantity": 5})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, http.MethodPost, restock, manager, gin.H{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodPost, "/api/v1/inventory/stock-adjustment/"+strconv.Itoa(p.ID), manager, gin.H{"adjustment": -9, "reason": "damaged"})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/v1/users", manager, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/inventory/stock-levels", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSaleEndpoints(t *testing.T) {
	r, ctx := newRouter(t)
	modeltest.Staff(t, ctx, "cashier1", models.RoleCashier)
	p := modeltest.Product(t, ctx, "Widget", "4")
	cashier := login(t, r, "cashier1")

	w := call(t, r, http.MethodPost, "/api/v1/sales", cashier, gin.H{"items": []gin.H{}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	body := gin.H{"items": []gin.H{{"product_id": p.ID, "quantity": 2, "unit_price": "4.50"}}}
	w = call(t, r, http.MethodPost, "/api/v1/sales", cashier, body, "Idempotency-Key", "till-7-0001")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.Sale](t, w)
	require.Equal(t, "9", first.TotalAmount.String())

	w = call(t, r, http.MethodPost, "/api/v1/sales", cashier, body, "Idempotency-Key", "till-7-0001")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, first.ID, decode[models.Sale](t, w).ID)

	discounted := gin.H{"discount_id": 1, "items": body["items"]}
	w = call(t, r, http.MethodPost, "/api/v1/sales", cashier, discounted)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/sales/"+strconv.Itoa(first.ID)+"/items", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]models.SaleItem](t, w), 1)

	saleItems := "/api/v1/sales/" + strconv.Itoa(first.ID) + "/items"
	w = call(t, r, http.MethodPost, "/api/v1/sales/"+strconv.Itoa(first.ID)+"/payments", cashier, gin.H{"method": "Cash", "amount": "9"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = call(t, r, http.MethodPost, saleItems, cashier, gin.H{"product_id": p.ID, "quantity": 1, "unit_price": "4"})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	modeltest.Staff(t, ctx, "shopper", models.RoleUser)
	w = call(t, r, http.MethodPost, saleItems, login(t, r, "shopper"), gin.H{"product_id": p.ID, "quantity": 1, "unit_price": "4"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/sales/999", cashier, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, r, http.MethodDelete, "/api/v1/sales/"+strconv.Itoa(first.ID), cashier, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportParameters(t *testing.T) {
	r, ctx := newRouter(t)
	modeltest.Staff(t, ctx, "manager1", models.RoleManager)
	manager := login(t, r, "manager1")

	w := call(t, r, http.MethodGet, "/api/v1/reports/sales/period?start=2024-13-45&end=2024-01-31", manager, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/reports/sales/period?start=2024-01-01", manager, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/reports/sales/period?start=2024-01-03&end=2024-01-01", manager, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/reports/sales/period?start_date=2024-01-01&end_date=2024-01-07", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[struct {
		DaysInPeriod int `json:"days_in_period"`
	}](t, w)
	require.Equal(t, 7, summary.DaysInPeriod)

	w = call(t, r, http.MethodGet, "/api/v1/sales/daily-summary/not-a-date", manager, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/sales/analytics/top-products?start_date=2024-01-01&end_date=2024-01-07&limit=0", manager, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/reports/export/sales?start_date=2024-01-01&end_date=2024-01-07", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestDailyReportBoundaries(t *testing.T) {
	r, ctx := newRouter(t)
	modeltest.Staff(t, ctx, "manager1", models.RoleManager)
	p := modeltest.Product(t, ctx, "Widget", "5")
	manager := login(t, r, "manager1")

	body := gin.H{
		"sale_date": "2024-06-11T00:00:00Z",
		"items":     []gin.H{{"product_id": p.ID, "quantity": 2, "unit_price": "5"}},
	}
	w := call(t, r, http.MethodPost, "/api/v1/sales", manager, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/v1/reports/sales?start_date=2024-06-10", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 0, decode[reports.RevenueSummary](t, w).SalesCount, "a midnight sale belongs to the next day only")

	w = call(t, r, http.MethodGet, "/api/v1/reports/sales?start_date=2024-06-11", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 1, decode[reports.RevenueSummary](t, w).SalesCount)

	w = call(t, r, http.MethodGet, "/api/v1/sales/daily-summary/2024-06-11T08:30:00", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	day := decode[reports.DailySalesSummary](t, w)
	require.Equal(t, 1, day.SalesCount)
	require.Equal(t, "10", day.TotalRevenue.String())

	w = call(t, r, http.MethodGet, "/api/v1/reports/sales/daily?date=2024-06-11", manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "10", decode[reports.DailySalesSummary](t, w).TotalRevenue.String())
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newRouter(t)
	w := call(t, r, http.MethodGet, "/api/v1/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
