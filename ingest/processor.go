package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/viktsys/playerstats/models"
)

// ErrNoSource is returned when a processor is built without any source.
var ErrNoSource = errors.New("no sources configured")

// ErrDuplicateSource is returned when two sources share an ID.
var ErrDuplicateSource = errors.New("duplicate source id")

// Source is a named row source. Paths are tried in order and the first
// existing file is read.
type Source struct {
	ID    string
	Paths []string
}

// SourceResult is what one source contributed to a run.
type SourceResult struct {
	ID      string
	Path    string
	Samples []models.Sample
	Dropped int
}

// Result is the outcome of a processor run.
type Result struct {
	Sources    []SourceResult
	Aggregates map[string]map[string]models.MinMax
	Points     []models.DailyPoint
}

// RowCount returns the number of valid samples read for source id.
func (r *Result) RowCount(id string) int {
	for _, s := range r.Sources {
		if s.ID == id {
			return len(s.Samples)
		}
	}
	return 0
}

type Processor struct {
	logger  *zap.Logger
	sources []Source
}

func NewProcessor(logger *zap.Logger, sources ...Source) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		logger:  logger,
		sources: sources,
	}
}

// Run loads every source, aggregates each one by date and merges the result.
// Missing source files contribute no samples.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	if len(p.sources) == 0 {
		return nil, ErrNoSource
	}
	seen := make(map[string]struct{}, len(p.sources))
	for _, src := range p.sources {
		if _, dup := seen[src.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSource, src.ID)
		}
		seen[src.ID] = struct{}{}
	}

	startTime := time.Now()
	results := make([]SourceResult, len(p.sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := LoadSource(src)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggregates := make(map[string]map[string]models.MinMax, len(results))
	for _, res := range results {
		if res.Path == "" {
			p.logger.Warn("source file not found, treating as empty",
				zap.String("source", res.ID))
		} else {
			p.logger.Info("source loaded",
				zap.String("source", res.ID),
				zap.String("path", res.Path),
				zap.Int("rows", len(res.Samples)),
				zap.Int("dropped", res.Dropped))
		}
		aggregates[res.ID] = AggregateDaily(res.Samples)
	}

	points := Merge(aggregates)
	p.logger.Info("aggregation completed",
		zap.Int("days", len(points)),
		zap.Duration("took", time.Since(startTime)))

	return &Result{
		Sources:    results,
		Aggregates: aggregates,
		Points:     points,
	}, nil
}

// LoadSource parses the first existing path of src. When none exists the
// result has an empty Path and no samples.
func LoadSource(src Source) (SourceResult, error) {
	res := SourceResult{ID: src.ID}

	for _, path := range src.Paths {
		if path == "" {
			continue
		}
		file, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("failed to open file: %w", err)
		}

		samples, dropped, err := ParseRows(file)
		file.Close()
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}

		res.Path = path
		res.Samples = samples
		res.Dropped = dropped
		return res, nil
	}

	return res, nil
}
