// Package normalize turns a decoded build report into the cross-linked
// model: modules merged by normalized identity, reasons and deps resolved,
// chunk ancestry inferred from origins, packages extracted from
// node_modules paths and a dependency graph built from the entrypoints.
package normalize

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
	"github.com/simonhull/firebird-suite/magpie/pkg/packageinfo"
	"github.com/simonhull/firebird-suite/magpie/pkg/resource"
	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

// Normalizer normalizes build reports. It is safe for concurrent use; the
// resource cache is shared by every compilation it processes.
type Normalizer struct {
	cache      *resource.Cache
	provenance Provenance
	workers    int
	logger     logger.Logger
}

// New creates a Normalizer backed by cache. A nil cache disables
// memoization.
func New(cache *resource.Cache) *Normalizer {
	return &Normalizer{
		cache:   cache,
		workers: runtime.NumCPU(),
		logger:  logger.Default(),
	}
}

// WithLogger returns a new Normalizer with the specified logger
func (n *Normalizer) WithLogger(log logger.Logger) *Normalizer {
	clone := *n
	clone.logger = log
	return &clone
}

// WithProvenance returns a new Normalizer that takes package versions from
// p instead of the document's own package-info extension.
func (n *Normalizer) WithProvenance(p Provenance) *Normalizer {
	clone := *n
	clone.provenance = p
	return &clone
}

// WithWorkers returns a new Normalizer that processes at most workers
// compilations (or files) at a time. Zero or less means one per CPU.
func (n *Normalizer) WithWorkers(workers int) *Normalizer {
	clone := *n
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	clone.workers = workers
	return &clone
}

// Normalize normalizes a decoded document.
func (n *Normalizer) Normalize(doc *stats.Document) (*model.File, error) {
	return n.NormalizeWithContext(context.Background(), doc)
}

// NormalizeWithContext normalizes a decoded document with context support
// for cancellation. Compilations are independent of each other and are
// processed in parallel; the result keeps them in tree order.
func (n *Normalizer) NormalizeWithContext(ctx context.Context, doc *stats.Document) (*model.File, error) {
	if doc == nil {
		return nil, fmt.Errorf("normalize: %w", stats.ErrInvalidDocument)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	provenance := n.provenance
	if provenance == nil {
		if info := packageinfo.FromExtensions(doc); info != nil {
			provenance = info
		}
	}

	items := walkCompilations(doc.Compilation)
	n.logger.Debug("Walked compilation tree",
		logger.F("file", doc.Path),
		logger.F("compilations", len(items)))

	file := &model.File{
		Path:         doc.Path,
		Compilations: make([]*model.Compilation, len(items)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			c, err := n.compilation(item, provenance)
			if err != nil {
				return err
			}
			file.Compilations[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return file, nil
}

// NormalizeFile loads and normalizes the report at path.
func (n *Normalizer) NormalizeFile(ctx context.Context, path string) (*model.File, error) {
	doc, err := stats.Load(path)
	if err != nil {
		return nil, err
	}

	file, err := n.NormalizeWithContext(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", path, err)
	}
	return file, nil
}

// NormalizeAll loads and normalizes several reports in parallel. Results
// follow the order of paths; the first failure cancels the rest.
func (n *Normalizer) NormalizeAll(ctx context.Context, paths []string) ([]*model.File, error) {
	n.logger.Info("Normalizing reports",
		logger.F("files", len(paths)),
		logger.F("workers", n.workers))

	files := make([]*model.File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			file, err := n.NormalizeFile(ctx, path)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// compilation runs every pass over one compilation of the tree.
func (n *Normalizer) compilation(item *walkItem, provenance Provenance) (*model.Compilation, error) {
	name := item.raw.Name
	if name == "" {
		name = item.hash
	}

	cx := newCompilationContext(name, item.hash, n.cache, provenance)
	if err := cx.collect(item.raw); err != nil {
		return nil, err
	}

	cx.prepareEntrypoints()
	cx.prepareModules()
	cx.prepareChunks()
	cx.linkChunks()
	cx.prepareAssets()
	cx.extractPackages()

	c := cx.compilation(item)
	c.Graph = buildGraph(c)

	n.logger.Debug("Normalized compilation",
		logger.F("compilation", name),
		logger.F("hash", item.hash),
		logger.F("modules", len(c.Modules)),
		logger.F("chunks", len(c.Chunks)),
		logger.F("assets", len(c.Assets)),
		logger.F("entrypoints", len(c.Entrypoints)),
		logger.F("packages", len(c.Packages)),
		logger.F("unresolved", cx.unresolved))

	return c, nil
}
