// Package storage provides read access to class database export files.
package storage

import "github.com/starford/eihwaz/internal/models"

// Provider abstracts export file access. The engine never writes back to
// its source data, so the surface is read-only.
type Provider interface {
	// List returns metadata for every export file under dir (relative to
	// the provider root; empty for all).
	List(dir string) ([]models.ExportMetadata, error)
	// Read returns the raw bytes of an export file.
	Read(path string) ([]byte, error)
	// Stat returns metadata for a single export file.
	Stat(path string) (models.ExportMetadata, error)
}
