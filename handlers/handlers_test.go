package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"foodcourt-api/config"
	"foodcourt-api/routes"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := config.Open(filepath.Join(t.TempDir(), "handlers_test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	config.DB = db

	r := gin.New()
	routes.SetupRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := map[string]interface{}{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not JSON: %v: %s", err, w.Body.String())
		}
	}
	return w, resp
}

func register(t *testing.T, r *gin.Engine, body map[string]interface{}) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %v", w.Code, resp)
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("register returned no token: %v", resp)
	}
	return token
}

func registerOutlet(t *testing.T, r *gin.Engine, email, name string) string {
	return register(t, r, map[string]interface{}{
		"name": name, "email": email, "password": "password123",
		"role": "outlet", "outlet_name": name, "cuisine_type": "chinese",
	})
}

func registerCustomer(t *testing.T, r *gin.Engine, email, name string) string {
	return register(t, r, map[string]interface{}{
		"name": name, "email": email, "password": "password123", "role": "customer",
	})
}

func addMenuItem(t *testing.T, r *gin.Engine, token, name, price string) uint {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/outlet/menu", token, map[string]interface{}{
		"item_name": name, "price": price, "category": "main", "preparation_time": 20,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add menu item returned %d: %v", w.Code, resp)
	}
	item := resp["item"].(map[string]interface{})
	return uint(item["id"].(float64))
}

func placeOrder(t *testing.T, r *gin.Engine, token string, outletID, itemID uint) uint {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/customer/orders", token, map[string]interface{}{
		"outlet_id": outletID,
		"items":     []map[string]interface{}{{"menu_item_id": itemID, "quantity": 1}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place order returned %d: %v", w.Code, resp)
	}
	order := resp["order"].(map[string]interface{})
	return uint(order["id"].(float64))
}

func outletID(t *testing.T, r *gin.Engine, token string) uint {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodGet, "/api/outlet/", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get outlet returned %d: %v", w.Code, resp)
	}
	outlet := resp["outlet"].(map[string]interface{})
	return uint(outlet["id"].(float64))
}

// futureToday returns a reservation start tomorrow at noon, safely in the
// future and on a single calendar day.
func futureToday() string {
	d := time.Now().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, d.Location()).Format(time.RFC3339)
}

func TestOrderVisibilityIsRoleScoped(t *testing.T) {
	r := setupRouter(t)

	ownerTok := registerOutlet(t, r, "chen@dragonwok.test", "Dragon Wok")
	otherOwnerTok := registerOutlet(t, r, "carlos@eltoro.test", "El Toro Loco")
	aTok := registerCustomer(t, r, "a@example.test", "Customer A")
	bTok := registerCustomer(t, r, "b@example.test", "Customer B")

	oid := outletID(t, r, ownerTok)
	itemID := addMenuItem(t, r, ownerTok, "Kung Pao Chicken", "10.00")
	orderID := placeOrder(t, r, aTok, oid, itemID)

	// Customer B can neither fetch A's order directly nor see it in a list.
	w, _ := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/customer/orders/%d", orderID), bTok, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign order fetch returned %d, want 403", w.Code)
	}
	w, resp := doJSON(t, r, http.MethodGet, "/api/customer/orders", bTok, nil)
	if w.Code != http.StatusOK || resp["count"].(float64) != 0 {
		t.Fatalf("foreign order list = %d %v, want empty", w.Code, resp)
	}

	// The owning customer sees it.
	w, resp = doJSON(t, r, http.MethodGet, "/api/customer/orders", aTok, nil)
	if w.Code != http.StatusOK || resp["count"].(float64) != 1 {
		t.Fatalf("owner order list = %d %v, want one order", w.Code, resp)
	}

	// The outlet that sold the items sees it; an unrelated outlet does not.
	w, resp = doJSON(t, r, http.MethodGet, "/api/outlet/orders", ownerTok, nil)
	if w.Code != http.StatusOK || resp["count"].(float64) != 1 {
		t.Fatalf("outlet order list = %d %v, want one order", w.Code, resp)
	}
	w, resp = doJSON(t, r, http.MethodGet, "/api/outlet/orders", otherOwnerTok, nil)
	if w.Code != http.StatusOK || resp["count"].(float64) != 0 {
		t.Fatalf("unrelated outlet order list = %d %v, want empty", w.Code, resp)
	}

	// A customer token cannot reach outlet routes at all.
	w, _ = doJSON(t, r, http.MethodGet, "/api/outlet/orders", aTok, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer on outlet route returned %d, want 403", w.Code)
	}
}

func TestOrderStatusFlow(t *testing.T) {
	r := setupRouter(t)

	ownerTok := registerOutlet(t, r, "chen@dragonwok.test", "Dragon Wok")
	custTok := registerCustomer(t, r, "a@example.test", "Customer A")
	oid := outletID(t, r, ownerTok)
	itemID := addMenuItem(t, r, ownerTok, "Fried Rice", "4.50")
	orderID := placeOrder(t, r, custTok, oid, itemID)

	statusPath := fmt.Sprintf("/api/outlet/orders/%d/status", orderID)

	// Skipping straight to ready is rejected by the state machine.
	w, _ := doJSON(t, r, http.MethodPut, statusPath, ownerTok, map[string]interface{}{"status": "ready"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("state jump returned %d, want 400", w.Code)
	}
	// Free-form statuses are rejected, not stored.
	w, _ = doJSON(t, r, http.MethodPut, statusPath, ownerTok, map[string]interface{}{"status": "on the way"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("free-form status returned %d, want 400", w.Code)
	}

	for _, status := range []string{"confirmed", "preparing", "ready", "completed"} {
		w, resp := doJSON(t, r, http.MethodPut, statusPath, ownerTok, map[string]interface{}{"status": status})
		if w.Code != http.StatusOK {
			t.Fatalf("transition to %s returned %d: %v", status, w.Code, resp)
		}
	}

	// Completed is terminal, even for the outlet.
	w, _ = doJSON(t, r, http.MethodPut, statusPath, ownerTok, map[string]interface{}{"status": "cancelled"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("transition from terminal state returned %d, want 400", w.Code)
	}
}

func TestReservationDiscountFlow(t *testing.T) {
	r := setupRouter(t)

	ownerTok := registerOutlet(t, r, "chen@dragonwok.test", "Dragon Wok")
	custTok := registerCustomer(t, r, "a@example.test", "Customer A")
	oid := outletID(t, r, ownerTok)
	itemID := addMenuItem(t, r, ownerTok, "Kung Pao Chicken", "10.00")

	// Outlet sets up a table.
	w, resp := doJSON(t, r, http.MethodPost, "/api/outlet/tables", ownerTok, map[string]interface{}{
		"table_number": 4, "capacity": 4,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add table returned %d: %v", w.Code, resp)
	}
	tableID := uint(resp["table"].(map[string]interface{})["id"].(float64))

	// Duplicate table numbers conflict.
	w, _ = doJSON(t, r, http.MethodPost, "/api/outlet/tables", ownerTok, map[string]interface{}{
		"table_number": 4, "capacity": 2,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate table returned %d, want 409", w.Code)
	}

	// Customer books and confirms a table for later today... or tomorrow if
	// the day is nearly over; the handler only needs a future RFC3339 time.
	start := futureToday()
	w, resp = doJSON(t, r, http.MethodPost, "/api/customer/reservations", custTok, map[string]interface{}{
		"outlet_id": oid, "table_id": tableID, "start_time": start, "party_size": 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create reservation returned %d: %v", w.Code, resp)
	}
	resID := uint(resp["reservation"].(map[string]interface{})["id"].(float64))

	// The same window double-books.
	w, _ = doJSON(t, r, http.MethodPost, "/api/customer/reservations", custTok, map[string]interface{}{
		"outlet_id": oid, "table_id": tableID, "start_time": start, "party_size": 2,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("double booking returned %d, want 409", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/customer/reservations/%d/confirm", resID), custTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm reservation returned %d", w.Code)
	}

	// Order with the reservation consumes the fee as a discount.
	w, resp = doJSON(t, r, http.MethodPost, "/api/customer/orders", custTok, map[string]interface{}{
		"outlet_id":      oid,
		"reservation_id": resID,
		"items":          []map[string]interface{}{{"menu_item_id": itemID, "quantity": 2}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place order returned %d: %v", w.Code, resp)
	}
	order := resp["order"].(map[string]interface{})
	if order["discount_amount"].(string) != "5" {
		t.Fatalf("discount_amount = %v, want 5", order["discount_amount"])
	}
	if order["total_amount"].(string) != "15" {
		t.Fatalf("total_amount = %v, want 15", order["total_amount"])
	}

	// The fee is consumable at most once.
	w, _ = doJSON(t, r, http.MethodPost, "/api/customer/orders", custTok, map[string]interface{}{
		"outlet_id":      oid,
		"reservation_id": resID,
		"items":          []map[string]interface{}{{"menu_item_id": itemID, "quantity": 1}},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("second fee consumption returned %d, want 409", w.Code)
	}
}
