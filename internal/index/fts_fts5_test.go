//go:build sqlite_fts5

package index

import (
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM classes_fts`).Scan(&count); err != nil {
		t.Fatalf("classes_fts table missing: %v", err)
	}
}

func TestFTS5_SearchClasses(t *testing.T) {
	db := testDB(t)
	cat := CategoryRow{Name: "CategoryData_X", Checksum: "1"}
	rows := []ClassRow{
		{Category: "CategoryData_X", Name: "Helicopter", Source: "air", Model: `\air\heli.p3d`},
		{Category: "CategoryData_X", Name: "Car", Source: "core", Model: `\core\car.p3d`},
	}
	if err := db.ReplaceCategory(cat, rows); err != nil {
		t.Fatalf("ReplaceCategory: %v", err)
	}

	results, err := db.Search("Helicopter", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Name != "Helicopter" || results[0].Category != "CategoryData_X" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestFTS5_ReplaceRemovesStaleEntries(t *testing.T) {
	db := testDB(t)
	cat := CategoryRow{Name: "CategoryData_X", Checksum: "1"}
	_ = db.ReplaceCategory(cat, []ClassRow{{Category: "CategoryData_X", Name: "Vanishing"}})

	cat.Checksum = "2"
	_ = db.ReplaceCategory(cat, []ClassRow{{Category: "CategoryData_X", Name: "Replacement"}})

	results, err := db.Search("Vanishing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("stale FTS entries survived replacement: %+v", results)
	}
}
