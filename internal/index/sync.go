package index

import (
	"log/slog"

	"github.com/starford/eihwaz/internal/models"
)

// CategorySnapshot is one category's worth of decoded data handed to Sync
// after a registry build.
type CategorySnapshot struct {
	Name     string
	Header   []string
	Checksum string
	Records  []models.Record
}

// Sync brings the persisted index in line with the given snapshots:
//   - categories whose source checksum changed are replaced wholesale
//   - categories absent from the snapshots are deleted as stale
func Sync(db *DB, snapshots []CategorySnapshot, logger *slog.Logger) error {
	existing, err := db.Categories()
	if err != nil {
		return err
	}
	stored := make(map[string]string, len(existing))
	for _, c := range existing {
		stored[c.Name] = c.Checksum
	}

	present := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		present[snap.Name] = struct{}{}

		if cs, ok := stored[snap.Name]; ok && cs == snap.Checksum {
			logger.Debug("sync: unchanged", slog.String("category", snap.Name))
			continue
		}

		rows := make([]ClassRow, len(snap.Records))
		for i, rec := range snap.Records {
			rows[i] = RowFromRecord(snap.Name, rec)
		}
		cat := CategoryRow{Name: snap.Name, Header: snap.Header, Checksum: snap.Checksum}
		if err := db.ReplaceCategory(cat, rows); err != nil {
			logger.Warn("sync: replace failed",
				slog.String("category", snap.Name),
				slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: replaced",
			slog.String("category", snap.Name),
			slog.Int("classes", len(rows)))
	}

	for name := range stored {
		if _, ok := present[name]; ok {
			continue
		}
		if err := db.DeleteCategory(name); err != nil {
			logger.Warn("sync: delete failed",
				slog.String("category", name),
				slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("category", name))
		}
	}

	return nil
}
