package cmd

import (
	"context"
	"errors"
	"io/fs"

	"go.uber.org/zap"

	"github.com/viktsys/playerstats/artifact"
	"github.com/viktsys/playerstats/database"
	"github.com/viktsys/playerstats/ingest"
	"github.com/viktsys/playerstats/models"
)

// loadPoints reads the merged series from postgres or from the artifact at
// path. A missing artifact yields an empty series.
func loadPoints(ctx context.Context, fromDB bool, path string) ([]models.DailyPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fromDB {
		store, err := database.Open(cfg.DB, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		bySource, err := store.LoadAggregates(ctx, sourceRealmEye, sourceRealmStock)
		if err != nil {
			return nil, err
		}
		return ingest.Merge(bySource), nil
	}

	points, err := artifact.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("artifact not found, serving empty dataset", zap.String("path", path))
		return nil, nil
	}
	return points, err
}
