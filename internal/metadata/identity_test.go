package metadata

import "testing"

func TestIdentityValidate(t *testing.T) {
	valid := []Identity{"root", "root/orders", "root/orders/table-1", "a_b/c-d/e0"}
	for _, id := range valid {
		if err := id.Validate(); err != nil {
			t.Fatalf("expected %q to be valid, got %v", id, err)
		}
	}

	invalid := []Identity{"", "/orders", "root//orders", "root/Orders", "root/or ders", "root/orders/"}
	for _, id := range invalid {
		if err := id.Validate(); err == nil {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
}

func TestIdentityBase(t *testing.T) {
	if got := Identity("root/orders/table").Base(); got != "table" {
		t.Fatalf("expected base=table, got %s", got)
	}
	if got := Identity("orders").Base(); got != "orders" {
		t.Fatalf("expected base=orders, got %s", got)
	}
}
