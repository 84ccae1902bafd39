package classservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/eihwaz/internal/apperr"
	"github.com/starford/eihwaz/internal/hierarchy"
	"github.com/starford/eihwaz/internal/models"
	"github.com/starford/eihwaz/internal/testutil"
)

const vehicles = "CategoryData_CfgVehicles"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testService loads testutil.SampleExport into a fresh service.
func testService(t *testing.T) (*Service, string) {
	t.Helper()
	dataDir, store := testutil.TestDataDir(t)
	exportFile := testutil.WriteExport(t, dataDir, "config.ini", testutil.SampleExport)

	db := testutil.TestDB(t)
	reg := hierarchy.NewRegistry(hierarchy.BuildOptions{PrecomputeThreshold: -1})
	svc := NewService(store, db, reg, exportFile, testLogger())

	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return svc, dataDir
}

func TestReload_Stats(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	stats, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if stats.Categories != 2 {
		t.Errorf("categories = %d, want 2", stats.Categories)
	}
	if stats.Classes != 8 {
		t.Errorf("classes = %d, want 8", stats.Classes)
	}
	if stats.Malformed != 0 {
		t.Errorf("malformed = %d, want 0", stats.Malformed)
	}
	if svc.SourceChecksum() == "" {
		t.Error("source checksum empty after reload")
	}
}

func TestReload_MalformedRowsCountedNotLoaded(t *testing.T) {
	dataDir, store := testutil.TestDataDir(t)
	export := testutil.SampleExport + `6 = "BadRow","only","three"` + "\n"
	exportFile := testutil.WriteExport(t, dataDir, "config.ini", export)

	db := testutil.TestDB(t)
	reg := hierarchy.NewRegistry(hierarchy.BuildOptions{})
	svc := NewService(store, db, reg, exportFile, testLogger())

	stats, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if stats.Malformed != 1 {
		t.Errorf("malformed = %d, want 1", stats.Malformed)
	}
	if svc.HasClass(context.Background(), "CategoryData_CfgWeapons", "BadRow", false) {
		t.Error("malformed row was loaded")
	}
}

func TestGetClass(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	info, err := svc.GetClass(ctx, vehicles, "car", false)
	if err != nil {
		t.Fatalf("GetClass: %v", err)
	}
	if info.Name != "Car" {
		t.Errorf("name = %q, want Car (canonical spelling)", info.Name)
	}
	if info.NumProperties != 42 || info.Scope != 2 {
		t.Errorf("info = %+v", info)
	}

	if _, err := svc.GetClass(ctx, vehicles, "car", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("case-sensitive err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetClass(ctx, "CategoryData_NoSuch", "Car", false); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown category err = %v, want ErrNotFound", err)
	}
}

func TestInheritancePathAndChildren(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	path := svc.InheritancePath(ctx, vehicles, "Car")
	want := []string{"Car", "LandVehicle", "Land", "AllVehicles", "All"}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}

	children := svc.Children(ctx, vehicles, "LandVehicle")
	if len(children) != 2 || children[0] != "Car" || children[1] != "Tank" {
		t.Errorf("children = %v, want [Car Tank]", children)
	}

	if got := svc.InheritancePath(ctx, vehicles, "NoSuchClass"); len(got) != 0 {
		t.Errorf("path of unknown = %v, want empty", got)
	}
	if got := svc.Children(ctx, vehicles, "NoSuchClass"); got == nil {
		t.Error("children of unknown = nil, want empty slice")
	}
}

func TestDescendants(t *testing.T) {
	svc, _ := testService(t)
	desc := svc.Descendants(context.Background(), vehicles, "Land")
	if len(desc) != 3 || desc[0] != "Car" || desc[1] != "LandVehicle" || desc[2] != "Tank" {
		t.Errorf("descendants = %v, want [Car LandVehicle Tank]", desc)
	}
}

func TestCommonAncestor(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	ancestor, found := svc.CommonAncestor(ctx, vehicles, "Car", "Tank")
	if !found || ancestor != "LandVehicle" {
		t.Errorf("ancestor = (%q, %v), want LandVehicle", ancestor, found)
	}

	// A class on the other's chain is itself the common ancestor.
	ancestor, found = svc.CommonAncestor(ctx, vehicles, "Car", "Land")
	if !found || ancestor != "Land" {
		t.Errorf("ancestor = (%q, %v), want Land", ancestor, found)
	}

	if _, found := svc.CommonAncestor(ctx, vehicles, "Car", "NoSuchClass"); found {
		t.Error("found ancestor with unknown class")
	}
}

func TestIsDescendantOf(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if !svc.IsDescendantOf(ctx, vehicles, "Car", "All") {
		t.Error("Car should descend from All")
	}
	if svc.IsDescendantOf(ctx, vehicles, "Car", "Car") {
		t.Error("a class is not its own descendant")
	}
	if svc.IsDescendantOf(ctx, vehicles, "All", "Car") {
		t.Error("ancestry inverted")
	}
}

func TestFindClassCategory(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	cat, ok := svc.FindClassCategory(ctx, "rifle", false)
	if !ok || cat != "CategoryData_CfgWeapons" {
		t.Errorf("category = (%q, %v)", cat, ok)
	}
	if _, ok := svc.FindClassCategory(ctx, "NoSuchClass", false); ok {
		t.Error("found category for unknown class")
	}
}

func TestCategoriesAndSummaries(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	cats := svc.Categories(ctx)
	if len(cats) != 2 {
		t.Fatalf("categories = %+v", cats)
	}
	if cats[0].Name != vehicles || cats[0].ClassCount != 6 || cats[0].RootCount != 1 {
		t.Errorf("summary = %+v", cats[0])
	}
	if len(cats[0].Header) != 9 {
		t.Errorf("header = %v", cats[0].Header)
	}

	if _, err := svc.CategorySummaryFor(ctx, "CategoryData_NoSuch"); !errors.Is(err, apperr.ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestListClasses(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	rows, total, err := svc.ListClasses(ctx, vehicles, 3, 0)
	if err != nil {
		t.Fatalf("ListClasses: %v", err)
	}
	if total != 6 || len(rows) != 3 {
		t.Errorf("total = %d, page = %d", total, len(rows))
	}

	if _, _, err := svc.ListClasses(ctx, "CategoryData_NoSuch", 10, 0); !errors.Is(err, apperr.ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestValidationInfo(t *testing.T) {
	svc, _ := testService(t)
	info := svc.ValidationInfo(context.Background())
	if info["version"] != "1" || info["source"] != "test" {
		t.Errorf("validation = %v", info)
	}
}

func TestDetail(t *testing.T) {
	svc, _ := testService(t)
	detail, err := svc.Detail(context.Background(), vehicles, "landvehicle", false)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Name != "LandVehicle" {
		t.Errorf("name = %q", detail.Name)
	}
	if len(detail.Path) != 4 {
		t.Errorf("path = %v", detail.Path)
	}
	if len(detail.Children) != 2 {
		t.Errorf("children = %v", detail.Children)
	}
	if detail.DescendantCount != 2 {
		t.Errorf("descendant_count = %d, want 2", detail.DescendantCount)
	}
	if detail.Cyclic {
		t.Error("cyclic = true for acyclic chain")
	}
}

func TestAddRecord(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	err := svc.AddRecord(ctx, vehicles, models.Record{Name: "SportsCar", InheritsFrom: "Car"})
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	path := svc.InheritancePath(ctx, vehicles, "SportsCar")
	if len(path) != 6 || path[1] != "Car" {
		t.Errorf("path = %v", path)
	}

	// Persisted too.
	rows, _, err := svc.ListClasses(ctx, vehicles, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, row := range rows {
		if row.Name == "SportsCar" {
			found = true
		}
	}
	if !found {
		t.Error("SportsCar missing from persisted index")
	}

	if err := svc.AddRecord(ctx, vehicles, models.Record{}); !errors.Is(err, apperr.ErrMalformedRecord) {
		t.Errorf("err = %v, want ErrMalformedRecord", err)
	}
}

func TestReload_DropsRemovedCategory(t *testing.T) {
	svc, dataDir := testService(t)
	ctx := context.Background()

	trimmed := `[CategoryData_CfgVehicles]
header = ClassName,Source,Category,Parent,InheritsFrom,IsSimpleObject,NumProperties,Scope,Model
0 = "All","core","CfgVehicles","","",false,10,0,""
`
	if err := os.WriteFile(filepath.Join(dataDir, "config.ini"), []byte(trimmed), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	cats := svc.Categories(ctx)
	if len(cats) != 1 || cats[0].Name != vehicles {
		t.Errorf("categories = %+v, want only vehicles", cats)
	}
	if svc.HasClass(ctx, "CategoryData_CfgWeapons", "Rifle", false) {
		t.Error("Rifle survived category removal")
	}
}

func TestReload_BadContainerKeepsSnapshot(t *testing.T) {
	svc, dataDir := testService(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dataDir, "config.ini"), []byte("x = before any section\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Reload(ctx); err == nil {
		t.Fatal("expected container error")
	}

	// The previous snapshot stays queryable.
	if !svc.HasClass(ctx, vehicles, "Car", false) {
		t.Error("previous snapshot lost after failed reload")
	}
}
