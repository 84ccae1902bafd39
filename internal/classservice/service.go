// Package classservice coordinates the hierarchy registry, the persisted
// class index, and export storage behind one query façade.
package classservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/eihwaz/internal/apperr"
	"github.com/starford/eihwaz/internal/checksum"
	"github.com/starford/eihwaz/internal/hierarchy"
	"github.com/starford/eihwaz/internal/index"
	"github.com/starford/eihwaz/internal/models"
	"github.com/starford/eihwaz/internal/parser"
	"github.com/starford/eihwaz/internal/storage"
)

// Service is the query façade over one loaded export.
type Service struct {
	store      storage.Provider
	db         *index.DB
	reg        *hierarchy.Registry
	exportFile string
	logger     *slog.Logger

	// Snapshot of per-export metadata, replaced wholesale on Reload.
	mu         sync.RWMutex
	headers    map[string][]string
	validation map[string]string
	sourceSum  string
	loadedAt   time.Time
}

// LoadStats summarises one export load.
type LoadStats struct {
	Categories int           `json:"categories"`
	Classes    int           `json:"classes"`
	Malformed  int           `json:"malformed"`
	Elapsed    time.Duration `json:"elapsed"`
}

// CategorySummary describes one loaded category.
type CategorySummary struct {
	Name       string   `json:"name"`
	ClassCount int      `json:"class_count"`
	RootCount  int      `json:"root_count"`
	Header     []string `json:"header,omitempty"`
}

// ClassDetail is the full query-facing view of one class.
type ClassDetail struct {
	models.ClassInfo
	Path            []string `json:"path"`
	Children        []string `json:"children"`
	DescendantCount int      `json:"descendant_count"`
	Cyclic          bool     `json:"cyclic,omitempty"`
}

// NewService creates a new class service. exportFile is the export path
// relative to the storage root.
func NewService(store storage.Provider, db *index.DB, reg *hierarchy.Registry, exportFile string, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		db:         db,
		reg:        reg,
		exportFile: exportFile,
		logger:     logger,
		headers:    make(map[string][]string),
		validation: make(map[string]string),
	}
}

// Reload re-reads the export file, rebuilds every category index (each as a
// fresh snapshot swapped in atomically), and re-syncs the persisted index.
// Malformed rows are counted and logged, never loaded.
func (s *Service) Reload(ctx context.Context) (*LoadStats, error) {
	start := time.Now()

	data, err := s.store.Read(s.exportFile)
	if err != nil {
		return nil, fmt.Errorf("classservice: read export: %w", err)
	}
	doc, err := parser.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("classservice: parse export: %w", err)
	}
	sourceSum := checksum.Sum(data)

	categories := doc.Categories()
	snapshots := make([]index.CategorySnapshot, 0, len(categories))
	headers := make(map[string][]string, len(categories))
	stats := &LoadStats{Categories: len(categories)}

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, errs := parser.DecodeRecords(doc.RecordPairs(category), parser.DecodeOptions{Parallel: true})
		if len(errs) > 0 {
			stats.Malformed += len(errs)
			s.logger.Warn("reload: malformed rows skipped",
				slog.String("category", category),
				slog.Int("count", len(errs)))
			for _, decodeErr := range errs {
				s.logger.Debug("reload: malformed row",
					slog.String("category", category),
					slog.String("error", decodeErr.Error()))
			}
		}

		stats.Classes += s.reg.LoadCategory(category, records)
		headers[category] = doc.Header(category)
		snapshots = append(snapshots, index.CategorySnapshot{
			Name:     category,
			Header:   headers[category],
			Checksum: sourceSum,
			Records:  records,
		})
	}

	// Drop categories that disappeared from the export.
	present := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		present[category] = struct{}{}
	}
	for _, existing := range s.reg.Categories() {
		if _, ok := present[existing]; !ok {
			s.reg.DropCategory(existing)
		}
	}

	if err := index.Sync(s.db, snapshots, s.logger); err != nil {
		s.logger.Warn("reload: index sync failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.headers = headers
	s.validation = doc.ValidationInfo()
	s.sourceSum = sourceSum
	s.loadedAt = time.Now()
	s.mu.Unlock()

	stats.Elapsed = time.Since(start)
	s.logger.Info("export loaded",
		slog.String("file", s.exportFile),
		slog.Int("categories", stats.Categories),
		slog.Int("classes", stats.Classes),
		slog.Int("malformed", stats.Malformed),
		slog.Duration("elapsed", stats.Elapsed))
	return stats, nil
}

// AddRecord inserts one record incrementally into a category and persists it.
func (s *Service) AddRecord(_ context.Context, category string, rec models.Record) error {
	if rec.Name == "" {
		return apperr.ErrMalformedRecord
	}
	s.reg.AddRecord(category, rec)
	return s.db.UpsertClass(index.RowFromRecord(category, rec))
}

// GetClass returns one class. Lookup is case-insensitive unless
// caseSensitive is set.
func (s *Service) GetClass(_ context.Context, category, name string, caseSensitive bool) (*models.ClassInfo, error) {
	rec, ok := s.reg.Lookup(category, name, caseSensitive)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	info := models.InfoFromRecord(category, rec)
	return &info, nil
}

// Detail returns one class enriched with its chain, children, and
// descendant count.
func (s *Service) Detail(ctx context.Context, category, name string, caseSensitive bool) (*ClassDetail, error) {
	info, err := s.GetClass(ctx, category, name, caseSensitive)
	if err != nil {
		return nil, err
	}
	canonical := info.Name
	return &ClassDetail{
		ClassInfo:       *info,
		Path:            nonNilSlice(s.reg.GetPath(category, canonical)),
		Children:        nonNilSlice(s.reg.GetChildren(category, canonical)),
		DescendantCount: len(s.reg.GetDescendants(category, canonical)),
		Cyclic:          s.reg.HasCycle(category, canonical),
	}, nil
}

// HasClass reports whether a class exists in a category.
func (s *Service) HasClass(_ context.Context, category, name string, caseSensitive bool) bool {
	_, ok := s.reg.Lookup(category, name, caseSensitive)
	return ok
}

// InheritancePath returns the chain from the class to where resolution
// stops; empty for unknown classes.
func (s *Service) InheritancePath(_ context.Context, category, name string) []string {
	return nonNilSlice(s.reg.GetPath(category, name))
}

// Children returns the sorted immediate children of a class.
func (s *Service) Children(_ context.Context, category, name string) []string {
	return nonNilSlice(s.reg.GetChildren(category, name))
}

// Descendants returns the sorted transitive descendants of a class.
func (s *Service) Descendants(_ context.Context, category, name string) []string {
	return nonNilSlice(s.reg.GetDescendants(category, name))
}

// HasCycle reports whether a class's inheritance chain closes on itself.
func (s *Service) HasCycle(_ context.Context, category, name string) bool {
	return s.reg.HasCycle(category, name)
}

// CommonAncestor returns the closest class present on both inheritance
// chains, walking the first chain outward.
func (s *Service) CommonAncestor(_ context.Context, category, a, b string) (string, bool) {
	pathA := s.reg.GetPath(category, a)
	pathB := s.reg.GetPath(category, b)
	if len(pathA) == 0 || len(pathB) == 0 {
		return "", false
	}
	inB := make(map[string]struct{}, len(pathB))
	for _, name := range pathB {
		inB[name] = struct{}{}
	}
	for _, name := range pathA {
		if _, ok := inB[name]; ok {
			return name, true
		}
	}
	return "", false
}

// IsDescendantOf reports whether ancestor appears on child's inheritance
// chain (excluding the child itself).
func (s *Service) IsDescendantOf(_ context.Context, category, child, ancestor string) bool {
	path := s.reg.GetPath(category, child)
	if len(path) < 2 {
		return false
	}
	for _, name := range path[1:] {
		if name == ancestor {
			return true
		}
	}
	return false
}

// FindClassCategory returns the category that owns the named class.
func (s *Service) FindClassCategory(_ context.Context, name string, caseSensitive bool) (string, bool) {
	return s.reg.FindClassCategory(name, caseSensitive)
}

// Categories summarises every loaded category in sorted order.
func (s *Service) Categories(_ context.Context) []CategorySummary {
	s.mu.RLock()
	headers := s.headers
	s.mu.RUnlock()

	names := s.reg.Categories()
	out := make([]CategorySummary, len(names))
	for i, name := range names {
		out[i] = CategorySummary{
			Name:       name,
			ClassCount: s.reg.CategorySize(name),
			RootCount:  len(s.reg.Roots(name)),
			Header:     headers[name],
		}
	}
	return out
}

// CategorySummaryFor returns one category's summary.
func (s *Service) CategorySummaryFor(_ context.Context, category string) (*CategorySummary, error) {
	if s.reg.CategorySize(category) == 0 {
		return nil, apperr.ErrUnknownCategory
	}
	s.mu.RLock()
	header := s.headers[category]
	s.mu.RUnlock()
	return &CategorySummary{
		Name:       category,
		ClassCount: s.reg.CategorySize(category),
		RootCount:  len(s.reg.Roots(category)),
		Header:     header,
	}, nil
}

// ListClasses returns one page of a category's persisted classes.
func (s *Service) ListClasses(_ context.Context, category string, limit, offset int) ([]index.ClassRow, int, error) {
	if s.reg.CategorySize(category) == 0 {
		return nil, 0, apperr.ErrUnknownCategory
	}
	return s.db.ListClasses(category, limit, offset)
}

// Search delegates full-text class search to the persisted index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ValidationInfo returns the export's Validation section.
func (s *Service) ValidationInfo(_ context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.validation))
	for k, v := range s.validation {
		out[k] = v
	}
	return out
}

// SourceChecksum returns the checksum of the currently loaded export bytes.
func (s *Service) SourceChecksum() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceSum
}

// ExportFile returns the export path relative to the storage root.
func (s *Service) ExportFile() string {
	return s.exportFile
}

// LoadedAt returns when the current export snapshot was published.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
