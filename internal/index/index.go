package index

// ClassIndex defines the interface for class persistence operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type ClassIndex interface {
	ReplaceCategory(cat CategoryRow, rows []ClassRow) error
	UpsertClass(row ClassRow) error
	DeleteCategory(category string) error
	GetClass(category, name string) (*ClassRow, error)
	ListClasses(category string, limit, offset int) ([]ClassRow, int, error)
	Categories() ([]CategoryRow, error)
	GetChecksum(category string) (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ClassIndex at compile time.
var _ ClassIndex = (*DB)(nil)
