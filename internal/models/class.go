// Package models defines the domain types for Eihwaz.
package models

import "time"

// Record is one decoded class row from a CategoryData section of a class
// database export. Empty InheritsFrom marks a root class; it is the only
// "no parent" sentinel the engine recognises.
type Record struct {
	Name           string `json:"name"`
	Source         string `json:"source"`
	Category       string `json:"category"`
	Parent         string `json:"parent"`
	InheritsFrom   string `json:"inherits_from"`
	IsSimpleObject bool   `json:"is_simple_object"`
	NumProperties  int    `json:"num_properties"`
	Scope          int    `json:"scope"`
	Model          string `json:"model"`
}

// IsRoot reports whether the record has no inheritance pointer.
func (r Record) IsRoot() bool {
	return r.InheritsFrom == ""
}

// ClassInfo is the query-facing view of a class, enriched with the category
// that owns it.
type ClassInfo struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	SourceFile     string `json:"source_file"`
	InheritsFrom   string `json:"inherits_from,omitempty"`
	IsSimpleObject bool   `json:"is_simple_object"`
	NumProperties  int    `json:"num_properties"`
	Scope          int    `json:"scope"`
	Model          string `json:"model,omitempty"`
}

// InfoFromRecord builds a ClassInfo for a record owned by category.
func InfoFromRecord(category string, r Record) ClassInfo {
	return ClassInfo{
		Name:           r.Name,
		Category:       category,
		SourceFile:     r.Source,
		InheritsFrom:   r.InheritsFrom,
		IsSimpleObject: r.IsSimpleObject,
		NumProperties:  r.NumProperties,
		Scope:          r.Scope,
		Model:          r.Model,
	}
}

// ExportMetadata is a lightweight representation of an export file on disk.
type ExportMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
