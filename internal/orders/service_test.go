package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
	"github.com/joe-hadchity/lescale-pos/internal/remote"
)

func testOrder() *entity.Order {
	return &entity.Order{
		Type:        entity.OrderTypeDineIn,
		TableNumber: "3",
		Lines: []entity.CartLine{
			{ItemName: "Pizza", BasePrice: 10, Quantity: 2},
		},
		PaymentMethod: entity.PaymentCard,
	}
}

func TestSubmitAssignsOrderNumber(t *testing.T) {
	var gotKey string
	var gotOrder entity.Order
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" || r.Method != http.MethodPost {
			w.WriteHeader(404)
			return
		}
		gotKey = r.Header.Get("Idempotent-Key")
		json.NewDecoder(r.Body).Decode(&gotOrder)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order_number":"1042"}`))
	}))
	defer srv.Close()

	s := NewService(srv.URL, nil, nil, nil)
	order := testOrder()
	number, err := s.Submit(context.Background(), order, "session-9")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if number != "1042" {
		t.Errorf("order number = %q, want %q", number, "1042")
	}
	if order.OrderNumber != "1042" {
		t.Errorf("order not stamped with number: %q", order.OrderNumber)
	}
	if gotKey != "session-9" {
		t.Errorf("Idempotent-Key = %q, want %q", gotKey, "session-9")
	}
	if gotOrder.TableNumber != "3" || len(gotOrder.Lines) != 1 {
		t.Errorf("submitted payload = %+v", gotOrder)
	}
}

func TestSubmitSurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer srv.Close()

	s := NewService(srv.URL, nil, nil, nil)
	order := testOrder()
	_, err := s.Submit(context.Background(), order, "session-9")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	opErr, ok := err.(*remote.OpError)
	if !ok {
		t.Fatalf("error type = %T, want *remote.OpError", err)
	}
	if opErr.Kind != remote.KindRejected {
		t.Errorf("Kind = %s, want rejected", opErr.Kind)
	}
	if order.OrderNumber != "" {
		t.Errorf("failed submission stamped an order number: %q", order.OrderNumber)
	}
}

func TestSubmitSurfacesUnavailable(t *testing.T) {
	s := NewService("http://127.0.0.1:1", nil, nil, nil)
	_, err := s.Submit(context.Background(), testOrder(), "session-9")
	opErr, ok := err.(*remote.OpError)
	if !ok {
		t.Fatalf("error type = %T, want *remote.OpError", err)
	}
	if opErr.Kind != remote.KindUnavailable {
		t.Errorf("Kind = %s, want unavailable", opErr.Kind)
	}
}
