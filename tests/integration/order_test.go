//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func createDineInOrder(t *testing.T, tableID string) orderResponse {
	t.Helper()

	resp := doPost(t, "/api/orders", createOrderRequest{
		Kind:      "dine_in",
		TableID:   tableID,
		PartySize: 2,
		Items: []itemRequest{
			{ProductID: "margherita", Quantity: 2},
			{ProductID: "lemonade", Quantity: 1},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}

func TestCreateOrder_NoAuth(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/orders", createOrderRequest{
		Kind:  "dine_in",
		Items: []itemRequest{{ProductID: "margherita", Quantity: 1}},
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidKey(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/orders", createOrderRequest{
		Kind:  "dine_in",
		Items: []itemRequest{{ProductID: "margherita", Quantity: 1}},
	}, "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_DineIn(t *testing.T) {
	o := createDineInOrder(t, "t1")

	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order ID %q is not a valid UUID", o.ID)
	}
	if o.Status != "in_progress" {
		t.Errorf("status: got %q, want in_progress", o.Status)
	}
	if o.KitchenStatus != "not_sent" {
		t.Errorf("kitchen status: got %q, want not_sent", o.KitchenStatus)
	}
	// 2x1200 + 1x300
	if o.Subtotal != 2700 {
		t.Errorf("subtotal: got %d, want 2700", o.Subtotal)
	}

	// Table must now be busy.
	tresp := doGet(t, "/api/tables")
	defer tresp.Body.Close()
	tables := decodeJSON[[]tableResponse](t, tresp)
	for _, tb := range tables {
		if tb.ID == "t1" && !tb.Busy {
			t.Error("table t1 not marked busy after dine-in creation")
		}
	}
}

func TestCreateOrder_TakeawayRequiresClient(t *testing.T) {
	resp := doPost(t, "/api/orders", createOrderRequest{
		Kind:  "takeaway",
		Items: []itemRequest{{ProductID: "margherita", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	resp := doPost(t, "/api/orders", createOrderRequest{
		Kind:    "dine_in",
		TableID: "t2",
		Items:   []itemRequest{{ProductID: "no-such-product", Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusUnprocessableEntity {
		t.Errorf("error code: got %d, want 422", body.Code)
	}
}

func TestOrderLifecycle_PartialDispatch(t *testing.T) {
	o := createDineInOrder(t, "t2")
	firstItem := o.Items[0].ID

	// Dispatch only the first item.
	resp := doPost(t, "/api/orders/"+o.ID+"/dispatch", map[string]any{
		"item_ids": []string{firstItem},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dispatch: expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[orderResponse](t, resp)
	if got.KitchenStatus != "received" {
		t.Errorf("kitchen status: got %q, want received", got.KitchenStatus)
	}

	// The dispatched item is locked against edits.
	uresp := doPatch(t, "/api/orders/"+o.ID+"/items/"+firstItem, map[string]any{"quantity": 5})
	defer uresp.Body.Close()
	if uresp.StatusCode != http.StatusConflict {
		t.Fatalf("update sent item: expected 409, got %d", uresp.StatusCode)
	}

	// Kitchen sees the ticket.
	kresp := doGet(t, "/api/kitchen/tickets")
	defer kresp.Body.Close()
	if kresp.StatusCode != http.StatusOK {
		t.Fatalf("kitchen tickets: expected 200, got %d", kresp.StatusCode)
	}

	tickets := decodeJSON[[]map[string]any](t, kresp)
	found := false
	for _, tk := range tickets {
		if tk["order_id"] == o.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("order %s not present in kitchen tickets", o.ID)
	}

	// Cancel is rejected once anything is sent.
	cresp := doDelete(t, "/api/orders/"+o.ID)
	defer cresp.Body.Close()
	if cresp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel after dispatch: expected 409, got %d", cresp.StatusCode)
	}
}

func TestOrderLifecycle_FullFlow(t *testing.T) {
	o := createDineInOrder(t, "t3")

	steps := []string{"dispatch", "ready", "handoff"}
	for _, step := range steps {
		resp := doPost(t, "/api/orders/"+o.ID+"/"+step, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", step, resp.StatusCode)
		}
		resp.Body.Close()
	}

	// Apply a seeded promotion before finalizing.
	presp := doPost(t, "/api/orders/"+o.ID+"/promotions", map[string]any{"codes": []string{"TENOFF"}})
	if presp.StatusCode != http.StatusOK {
		t.Fatalf("promotions: expected 200, got %d", presp.StatusCode)
	}
	promoted := decodeJSON[orderResponse](t, presp)
	presp.Body.Close()
	if promoted.TotalDiscount != 270 {
		t.Errorf("discount: got %d, want 270", promoted.TotalDiscount)
	}
	if promoted.Total != 2430 {
		t.Errorf("total: got %d, want 2430", promoted.Total)
	}

	fresp := doPost(t, "/api/orders/"+o.ID+"/finalize", map[string]any{"payment_method": "cash"})
	defer fresp.Body.Close()
	if fresp.StatusCode != http.StatusOK {
		t.Fatalf("finalize: expected 200, got %d", fresp.StatusCode)
	}

	final := decodeJSON[orderResponse](t, fresp)
	if final.Status != "finalized" {
		t.Errorf("status: got %q, want finalized", final.Status)
	}
	if final.KitchenStatus != "served" {
		t.Errorf("kitchen status: got %q, want served", final.KitchenStatus)
	}

	// Table is freed on finalize.
	tresp := doGet(t, "/api/tables")
	defer tresp.Body.Close()
	tables := decodeJSON[[]tableResponse](t, tresp)
	for _, tb := range tables {
		if tb.ID == "t3" && tb.Busy {
			t.Error("table t3 still busy after finalize")
		}
	}

	// The sales report includes the finalized order.
	rresp := doGet(t, "/api/reports/sales")
	defer rresp.Body.Close()
	if rresp.StatusCode != http.StatusOK {
		t.Fatalf("sales report: expected 200, got %d", rresp.StatusCode)
	}
	rep := decodeJSON[map[string]any](t, rresp)
	if n, ok := rep["orders"].(float64); !ok || n < 1 {
		t.Errorf("report orders: got %v, want >= 1", rep["orders"])
	}
}

func TestOrderLifecycle_FinalizeBeforeHandoff(t *testing.T) {
	o := createDineInOrder(t, "t4")

	resp := doPost(t, "/api/orders/"+o.ID+"/finalize", map[string]any{"payment_method": "cash"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	// Clean up so the table is free for other tests.
	cresp := doDelete(t, "/api/orders/"+o.ID)
	cresp.Body.Close()
}

func TestTracker(t *testing.T) {
	resp := doPost(t, "/api/orders", createOrderRequest{
		Kind:   "takeaway",
		Client: &clientInfo{Name: "Dana", Phone: "555-0101", Address: "34 Oak Ave"},
		Items:  []itemRequest{{ProductID: "carbonara", Quantity: 1}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create takeaway: expected 201, got %d", resp.StatusCode)
	}
	o := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if o.Status != "pending_validation" {
		t.Fatalf("takeaway status: got %q, want pending_validation", o.Status)
	}

	tresp := doGet(t, "/api/orders/" + o.ID + "/tracker")
	defer tresp.Body.Close()
	tracker := decodeJSON[trackerResponse](t, tresp)

	if tracker.Step == nil || *tracker.Step != 0 {
		t.Errorf("tracker step: got %v, want 0", tracker.Step)
	}

	// Payment validation advances the tracker.
	vresp := doPost(t, "/api/orders/"+o.ID+"/validate", nil)
	if vresp.StatusCode != http.StatusOK {
		t.Fatalf("validate: expected 200, got %d", vresp.StatusCode)
	}
	vresp.Body.Close()

	tresp2 := doGet(t, "/api/orders/" + o.ID + "/tracker")
	defer tresp2.Body.Close()
	tracker = decodeJSON[trackerResponse](t, tresp2)
	if tracker.Step == nil || *tracker.Step != 1 {
		t.Errorf("tracker step after validation: got %v, want 1", tracker.Step)
	}
}

func TestTracker_PublicWithoutAPIKey(t *testing.T) {
	o := createDineInOrder(t, "t1")

	resp := do(t, http.MethodGet, "/api/orders/"+o.ID+"/tracker", nil, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tracker without key: expected 200, got %d", resp.StatusCode)
	}
	tracker := decodeJSON[trackerResponse](t, resp)
	if tracker.OrderID != o.ID {
		t.Errorf("tracker order id: got %q, want %q", tracker.OrderID, o.ID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
