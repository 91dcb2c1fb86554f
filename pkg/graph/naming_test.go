package graph

import "testing"

func TestSingularize(t *testing.T) {
	tests := []struct {
		collection string
		expected   string
	}{
		{"units", "unit"},
		{"tenants", "tenant"},
		{"leases", "lease"},
		{"properties", "property"},
		{"addresses", "address"},
		{"boxes", "box"},
		{"photos", "photo"},
		{"property", "property"},
		{"grass", "grass"},
		{"s", "s"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			if got := Singularize(tt.collection); got != tt.expected {
				t.Errorf("Singularize(%q) = %q, expected %q", tt.collection, got, tt.expected)
			}
		})
	}
}

func TestIsPlural(t *testing.T) {
	if !isPlural("units") {
		t.Errorf("expected units to be plural")
	}
	if isPlural("property") {
		t.Errorf("expected property to be singular")
	}
	if isPlural("grass") {
		t.Errorf("expected grass to be treated as singular")
	}
}
