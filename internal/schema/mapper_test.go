package schema

import "testing"

func TestMapFieldsResolutionOrder(t *testing.T) {
	s := &TenantSchema{
		TenantID: "acme",
		FieldMapping: map[string][]string{
			"manufacturer": {"Manufacturer", "manufacturer_name"},
			"country":      {"shipment.origin.country"},
		},
	}

	raw := map[string]any{
		"Manufacturer": "Acme Corp",
		"extra_field":  "keep me",
		"shipment": map[string]any{
			"origin": map[string]any{
				"country": "KZ",
			},
		},
	}

	mapped, extras := MapFields(raw, s)

	if mapped["manufacturer"] != "Acme Corp" {
		t.Fatalf("expected exact match to win, got %v", mapped["manufacturer"])
	}
	if mapped["country"] != "KZ" {
		t.Fatalf("expected nested path resolution, got %v", mapped["country"])
	}
	if _, ok := extras["extra_field"]; !ok {
		t.Fatalf("expected unmapped field to be carried into extras")
	}
	if _, ok := extras["Manufacturer"]; ok {
		t.Fatalf("mapped source key should not also appear in extras")
	}
}

func TestMapFieldsCaseInsensitiveFallback(t *testing.T) {
	s := &TenantSchema{
		TenantID: "acme",
		FieldMapping: map[string][]string{
			"importer": {"Importer"},
		},
	}
	raw := map[string]any{"IMPORTER": "Beta LLC"}

	mapped, _ := MapFields(raw, s)
	if mapped["importer"] != "Beta LLC" {
		t.Fatalf("expected case-insensitive match, got %v", mapped["importer"])
	}
}
