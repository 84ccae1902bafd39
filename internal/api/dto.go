package api

import (
	"github.com/starford/eihwaz/internal/classservice"
)

// CategorySummary describes one loaded category (aliased from the domain layer).
type CategorySummary = classservice.CategorySummary

// ClassDetail is the full class response type (aliased from the domain layer).
type ClassDetail = classservice.ClassDetail

// CategoryListResponse wraps the category listing.
type CategoryListResponse struct {
	Categories []CategorySummary `json:"categories" validate:"required"`
}

// ClassListItem is a lightweight item in a class list response.
type ClassListItem struct {
	Name         string `json:"name" example:"Car" validate:"required"`
	Source       string `json:"source,omitempty" example:"core"`
	InheritsFrom string `json:"inherits_from,omitempty" example:"LandVehicle"`
	Model        string `json:"model,omitempty" example:"\\core\\car.p3d"`
}

// ClassListResponse wraps paginated class listings.
type ClassListResponse struct {
	Classes []ClassListItem `json:"classes" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
}

// PathResponse wraps an inheritance chain.
type PathResponse struct {
	Name string   `json:"name" example:"Car" validate:"required"`
	Path []string `json:"path" example:"Car,LandVehicle,Land,AllVehicles,All" validate:"required"`
}

// NamesResponse wraps a related-class name listing.
type NamesResponse struct {
	Name    string   `json:"name" example:"LandVehicle" validate:"required"`
	Classes []string `json:"classes" validate:"required"`
}

// AncestorResponse wraps a common-ancestor lookup.
type AncestorResponse struct {
	A        string `json:"a" example:"Car" validate:"required"`
	B        string `json:"b" example:"Tank" validate:"required"`
	Ancestor string `json:"ancestor,omitempty" example:"LandVehicle"`
	Found    bool   `json:"found" validate:"required"`
}

// CategoryLookupResponse wraps a global class-to-category lookup.
type CategoryLookupResponse struct {
	Name     string `json:"name" example:"Car" validate:"required"`
	Category string `json:"category" example:"CategoryData_CfgVehicles" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Category string `json:"category" example:"CategoryData_CfgVehicles" validate:"required"`
	Name     string `json:"name" example:"Car" validate:"required"`
	Model    string `json:"model,omitempty" example:"\\core\\car.p3d"`
	Snippet  string `json:"snippet,omitempty" example:"...matched text..."`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// ReloadResponse is returned after a successful export reload.
type ReloadResponse = classservice.LoadStats
