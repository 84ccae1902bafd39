// Package testutil provides shared test helpers for setting up exports and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/eihwaz/internal/index"
	"github.com/starford/eihwaz/internal/storage"
)

// SampleExport is a small but structurally complete class database export:
// two categories, a five-deep vehicle hierarchy with a shared base, a root
// class, and a Validation section.
const SampleExport = `[Validation]
version = 1
source = test

[CategoryData_CfgVehicles]
header = ClassName,Source,Category,Parent,InheritsFrom,IsSimpleObject,NumProperties,Scope,Model
0 = "All","core","CfgVehicles","","",false,10,0,""
1 = "AllVehicles","core","CfgVehicles","","All",false,20,0,""
2 = "Land","core","CfgVehicles","","AllVehicles",false,25,0,""
3 = "LandVehicle","core","CfgVehicles","","Land",false,30,1,""
4 = "Car","core","CfgVehicles","","LandVehicle",false,42,2,"\core\car.p3d"
5 = "Tank","core","CfgVehicles","","LandVehicle",false,57,2,"\core\tank.p3d"

[CategoryData_CfgWeapons]
header = ClassName,Source,Category,Parent,InheritsFrom,IsSimpleObject,NumProperties,Scope,Model
0 = "Default","core","CfgWeapons","","",false,5,0,""
1 = "Rifle","core","CfgWeapons","","Default",false,15,2,"\core\rifle.p3d"
`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "eihwaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage.Provider.
func TestDataDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, store
}

// WriteExport writes an export file into dir and returns its relative name.
func WriteExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}
