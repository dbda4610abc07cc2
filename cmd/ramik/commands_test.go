package main

import (
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		label   string
		stock   int
		price   string
		wantErr bool
	}{
		{in: "50ml:10:12500", label: "50ml", stock: 10, price: "12500"},
		{in: ":3:999.50", stock: 3, price: "999.5"},
		{in: "50ml:ten:100", wantErr: true},
		{in: "50ml:1:abc", wantErr: true},
		{in: "50ml:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to parse %q: %v", tt.in, err)
			}
			if tt.label == "" && got.Size != nil {
				t.Errorf("Expected no label, got %q", *got.Size)
			}
			if tt.label != "" && (got.Size == nil || *got.Size != tt.label) {
				t.Errorf("Expected label %q, got %v", tt.label, got.Size)
			}
			if got.Stock != tt.stock {
				t.Errorf("Expected stock %d, got %d", tt.stock, got.Stock)
			}
			if got.Price.String() != tt.price {
				t.Errorf("Expected price %s, got %s", tt.price, got.Price.String())
			}
		})
	}
}

func TestParseTranslation(t *testing.T) {
	got, err := parseTranslation("1:4:Oud Royale:Smoky: with amber")
	if err != nil {
		t.Fatalf("Failed to parse translation: %v", err)
	}
	if got.LanguageID != 1 || got.CategoryID != 4 || got.Title != "Oud Royale" {
		t.Errorf("Unexpected translation %+v", got)
	}
	if got.Description != "Smoky: with amber" {
		t.Errorf("Expected description to keep colons, got %q", got.Description)
	}

	for _, bad := range []string{"1:4", "x:4:Title", "1:0:Title"} {
		if _, err := parseTranslation(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestIsSet(t *testing.T) {
	fs := newFlags("test")
	fs.Bool("active", true, "")
	fs.String("title", "", "")
	if err := fs.Parse([]string{"-active=false"}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if !isSet(fs, "active") {
		t.Error("Expected active to be set")
	}
	if isSet(fs, "title") {
		t.Error("Expected title to be unset")
	}
}

func TestCommandsHaveUsage(t *testing.T) {
	for name, cmd := range commands {
		if cmd.usage == "" || cmd.run == nil {
			t.Errorf("Command %q is incomplete", name)
		}
	}
}
