package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/eihwaz/internal/classservice"
	"github.com/starford/eihwaz/internal/hierarchy"
	"github.com/starford/eihwaz/internal/testutil"
)

const vehicles = "CategoryData_CfgVehicles"

// testEnv loads the sample export and mounts the router.
// An empty authToken selects disabled auth mode.
func testEnv(t *testing.T, authToken string) (*classservice.Service, http.Handler) {
	t.Helper()

	dataDir, store := testutil.TestDataDir(t)
	exportFile := testutil.WriteExport(t, dataDir, "config.ini", testutil.SampleExport)
	db := testutil.TestDB(t)
	reg := hierarchy.NewRegistry(hierarchy.BuildOptions{PrecomputeThreshold: -1})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := classservice.NewService(store, db, reg, exportFile, logger)
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doGet(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListCategories(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/categories")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CategoryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Categories) != 2 {
		t.Fatalf("categories = %+v", resp.Categories)
	}
	if resp.Categories[0].Name != vehicles || resp.Categories[0].ClassCount != 6 {
		t.Errorf("summary = %+v", resp.Categories[0])
	}
}

func TestGetCategory(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/categories/"+vehicles)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var summary CategorySummary
	_ = json.Unmarshal(w.Body.Bytes(), &summary)
	if summary.RootCount != 1 {
		t.Errorf("root_count = %d, want 1", summary.RootCount)
	}

	w = doGet(t, router, "/categories/CategoryData_NoSuch")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListClassesEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/categories/"+vehicles+"/classes?limit=2&offset=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ClassListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 6 {
		t.Errorf("total = %d, want 6", resp.Total)
	}
	if len(resp.Classes) != 2 {
		t.Errorf("page = %+v", resp.Classes)
	}
}

func TestGetClassEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/categories/"+vehicles+"/classes/car")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var detail ClassDetail
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.Name != "Car" {
		t.Errorf("name = %q, want Car", detail.Name)
	}
	if len(detail.Path) != 5 {
		t.Errorf("path = %v", detail.Path)
	}

	// Exact-case mode must reject the lowercase spelling.
	w = doGet(t, router, "/categories/"+vehicles+"/classes/car?case_sensitive=true")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHierarchyEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/categories/"+vehicles+"/classes/Car/path")
	var pathResp PathResponse
	_ = json.Unmarshal(w.Body.Bytes(), &pathResp)
	if len(pathResp.Path) != 5 || pathResp.Path[4] != "All" {
		t.Errorf("path = %v", pathResp.Path)
	}

	w = doGet(t, router, "/categories/"+vehicles+"/classes/LandVehicle/children")
	var childResp NamesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &childResp)
	if len(childResp.Classes) != 2 {
		t.Errorf("children = %v", childResp.Classes)
	}

	w = doGet(t, router, "/categories/"+vehicles+"/classes/Land/descendants")
	var descResp NamesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &descResp)
	if len(descResp.Classes) != 3 {
		t.Errorf("descendants = %v", descResp.Classes)
	}

	// Unknown names answer with empty lists, not errors.
	w = doGet(t, router, "/categories/"+vehicles+"/classes/NoSuchClass/path")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &pathResp)
	if len(pathResp.Path) != 0 {
		t.Errorf("path = %v, want empty", pathResp.Path)
	}
}

func TestCommonAncestorEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/categories/"+vehicles+"/ancestor?a=Car&b=Tank")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp AncestorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Found || resp.Ancestor != "LandVehicle" {
		t.Errorf("resp = %+v", resp)
	}

	w = doGet(t, router, "/categories/"+vehicles+"/ancestor?a=Car")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing b", w.Code)
	}
}

func TestFindClassCategoryEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/classes/rifle/category")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp CategoryLookupResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Category != "CategoryData_CfgWeapons" {
		t.Errorf("category = %q", resp.Category)
	}

	w = doGet(t, router, "/classes/NoSuchClass/category")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestValidationEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGet(t, router, "/validation")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var info map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &info)
	if info["version"] != "1" {
		t.Errorf("validation = %v", info)
	}
}

func TestReloadEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var stats ReloadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Categories != 2 || stats.Classes != 8 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret-token")

	w := doGet(t, router, "/categories")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 with wrong token", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with valid token", w.Code)
	}
}
