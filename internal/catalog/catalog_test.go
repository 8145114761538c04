package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joe-hadchity/lescale-pos/internal/remote"
)

func TestAdapterFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/categories":
			w.Write([]byte(`[{"id":"c1","name":"Pizzas"},{"id":"c2","name":"Drinks"}]`))
		case "/categories/c1/items":
			w.Write([]byte(`[{"id":"m1","name":"Margherita","price":10,"category_id":"c1","ingredients":["tomato","mozzarella"]}]`))
		case "/ingredients":
			w.Write([]byte(`[{"id":"i1","name":"Mushrooms","price":1,"category":"toppings"}]`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	a := NewAdapter(srv.URL, nil)
	ctx := context.Background()

	categories, opErr := a.Categories(ctx)
	if opErr != nil {
		t.Fatalf("Categories: %v", opErr)
	}
	if len(categories) != 2 || categories[0].Name != "Pizzas" {
		t.Errorf("Categories = %+v", categories)
	}

	items, opErr := a.ItemsByCategory(ctx, "c1")
	if opErr != nil {
		t.Fatalf("ItemsByCategory: %v", opErr)
	}
	if len(items) != 1 || items[0].Price != 10 || len(items[0].Ingredients) != 2 {
		t.Errorf("ItemsByCategory = %+v", items)
	}

	ingredients, opErr := a.Ingredients(ctx)
	if opErr != nil {
		t.Fatalf("Ingredients: %v", opErr)
	}
	if len(ingredients) != 1 || ingredients[0].Price != 1 {
		t.Errorf("Ingredients = %+v", ingredients)
	}
}

func TestAdapterReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	a := NewAdapter(srv.URL, nil)
	_, opErr := a.Categories(context.Background())
	if opErr == nil {
		t.Fatal("expected error for 500 response")
	}
	if opErr.Kind != remote.KindRejected {
		t.Errorf("Kind = %s, want rejected", opErr.Kind)
	}
}

func TestAdapterReportsUnavailable(t *testing.T) {
	a := NewAdapter("http://127.0.0.1:1", nil)
	_, opErr := a.Ingredients(context.Background())
	if opErr == nil {
		t.Fatal("expected error for unreachable service")
	}
	if opErr.Kind != remote.KindUnavailable {
		t.Errorf("Kind = %s, want unavailable", opErr.Kind)
	}
}
