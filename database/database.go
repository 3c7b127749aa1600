package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/viktsys/playerstats/config"
	"github.com/viktsys/playerstats/models"
)

const insertBatchSize = 2000

// Store persists per-source daily aggregates in postgres.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to postgres, migrates the schema and creates indexes.
func Open(cfg config.DBConfig, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(&models.DailyAggregate{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := OptimizeIndexes(db); err != nil {
		log.Warn("failed to optimize indexes", zap.Error(err))
	}

	log.Info("database connected and migrated", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	return &Store{db: db, logger: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveAggregates replaces every stored aggregate with bySource in a single
// transaction and returns the number of rows written.
func (s *Store) SaveAggregates(ctx context.Context, bySource map[string]map[string]models.MinMax) (int, error) {
	records := toRecords(bySource, time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM daily_aggregates").Error; err != nil {
			return fmt.Errorf("failed to clear daily aggregates: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("daily aggregates stored", zap.Int("rows", len(records)))
	return len(records), nil
}

// LoadAggregates reads every stored aggregate grouped by source. Each id in
// sources is present in the result even when it has no rows.
func (s *Store) LoadAggregates(ctx context.Context, sources ...string) (map[string]map[string]models.MinMax, error) {
	var records []models.DailyAggregate
	if err := s.db.WithContext(ctx).Order("source, date").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load daily aggregates: %w", err)
	}
	return fromRecords(records, sources...), nil
}

func toRecords(bySource map[string]map[string]models.MinMax, now time.Time) []models.DailyAggregate {
	var records []models.DailyAggregate
	for source, daily := range bySource {
		for date, mm := range daily {
			records = append(records, models.DailyAggregate{
				Date:       date,
				Source:     source,
				MinPlayers: mm.Min,
				MaxPlayers: mm.Max,
				CreatedAt:  now,
			})
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Source != records[j].Source {
			return records[i].Source < records[j].Source
		}
		return records[i].Date < records[j].Date
	})
	return records
}

func fromRecords(records []models.DailyAggregate, sources ...string) map[string]map[string]models.MinMax {
	bySource := make(map[string]map[string]models.MinMax, len(sources))
	for _, id := range sources {
		bySource[id] = make(map[string]models.MinMax)
	}

	for _, r := range records {
		daily, ok := bySource[r.Source]
		if !ok {
			daily = make(map[string]models.MinMax)
			bySource[r.Source] = daily
		}
		daily[r.Date] = models.MinMax{Min: r.MinPlayers, Max: r.MaxPlayers}
	}
	return bySource
}
