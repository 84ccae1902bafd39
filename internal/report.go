package internal

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/eihwaz/internal/classservice"
)

// DefaultReportMinSize is the smallest category the hierarchy report
// analyses. Tiny categories add noise without telling anything about the
// export's shape.
const DefaultReportMinSize = 200

type categoryReport struct {
	name        string
	size        int
	roots       int
	deepest     string
	deepestPath []string
	topParent   string
	topChildren int
}

// RunReport loads the export and writes a hierarchy analysis to out:
// per sizeable category, its root count, deepest inheritance chain, and
// the class with the most direct children.
func RunReport(ctx context.Context, out io.Writer, minSize int, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if minSize <= 0 {
		minSize = DefaultReportMinSize
	}

	cfg := app.config
	logger := newLogger(cfg)
	start := time.Now()

	svc, db, err := newService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	summaries := svc.Categories(ctx)

	// Analyse sizeable categories in parallel. Each analysis only reads
	// its own category, so the heavy path and children walks fan out
	// cleanly.
	reports := make([]*categoryReport, len(summaries))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, summary := range summaries {
		if summary.ClassCount < minSize {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			reports[i] = analyzeCategory(gCtx, svc, summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var analysed []*categoryReport
	for _, rep := range reports {
		if rep != nil {
			analysed = append(analysed, rep)
		}
	}
	sort.Slice(analysed, func(i, j int) bool { return analysed[i].size > analysed[j].size })

	fmt.Fprintf(out, "Class Hierarchy Analysis\n")
	fmt.Fprintf(out, "========================\n\n")
	fmt.Fprintf(out, "Found %d categories with %d+ classes\n", len(analysed), minSize)
	fmt.Fprintf(out, "Total categories: %d\n\n", len(summaries))

	for _, rep := range analysed {
		title := fmt.Sprintf("%s (%d classes)", rep.name, rep.size)
		fmt.Fprintf(out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
		fmt.Fprintf(out, "Root classes: %d\n", rep.roots)
		if rep.deepest != "" {
			fmt.Fprintf(out, "Deepest inheritance: %s (depth: %d)\n", rep.deepest, len(rep.deepestPath))
			fmt.Fprintf(out, "Path: %s\n", strings.Join(rep.deepestPath, " -> "))
		}
		if rep.topParent != "" {
			fmt.Fprintf(out, "Most children: %s (%d direct children)\n", rep.topParent, rep.topChildren)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\nCompleted in %.2f seconds\n", time.Since(start).Seconds())
	return nil
}

func analyzeCategory(ctx context.Context, svc *classservice.Service, summary classservice.CategorySummary) *categoryReport {
	rep := &categoryReport{
		name:  summary.Name,
		size:  summary.ClassCount,
		roots: summary.RootCount,
	}

	// Page through every class rather than holding the whole category in
	// one response.
	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		rows, total, err := svc.ListClasses(ctx, summary.Name, pageSize, offset)
		if err != nil || len(rows) == 0 {
			break
		}
		for _, row := range rows {
			path := svc.InheritancePath(ctx, summary.Name, row.Name)
			if len(path) > len(rep.deepestPath) {
				rep.deepest = row.Name
				rep.deepestPath = path
			}
			if n := len(svc.Children(ctx, summary.Name, row.Name)); n > rep.topChildren {
				rep.topParent = row.Name
				rep.topChildren = n
			}
		}
		if offset+len(rows) >= total {
			break
		}
	}
	return rep
}
