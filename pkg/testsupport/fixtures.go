package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-inventory-cache/inventory"
	"github.com/shopspring/decimal"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadDrafts loads a JSON array of product drafts.
func LoadDrafts(t testing.TB, path string) []inventory.Draft {
	t.Helper()

	var drafts []inventory.Draft
	LoadFixtureJSON(t, path, &drafts)
	return drafts
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// Laptop is the reference electronics product used across tests.
func Laptop() inventory.Draft {
	return inventory.Draft{
		Name:     "Laptop",
		Category: "Electronics",
		Price:    decimal.RequireFromString("999.99"),
		Quantity: 10,
	}
}

// Mouse is the second reference electronics product.
func Mouse() inventory.Draft {
	return inventory.Draft{
		Name:     "Mouse",
		Category: "Electronics",
		Price:    decimal.RequireFromString("29.99"),
		Quantity: 50,
	}
}

// DeskChair is a reference product outside the electronics category.
func DeskChair() inventory.Draft {
	return inventory.Draft{
		Name:     "Desk Chair",
		Category: "Furniture",
		Price:    decimal.RequireFromString("199.99"),
		Quantity: 15,
	}
}
