package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when an analysis id does not exist.
var ErrNotFound = errors.New("analysis not found")

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed history at the provided path.
func Open(path string, silent bool) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path required")
	}
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Analysis{}, &AnalysisItem{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveAnalysis stores an analysis and its items in one transaction.
func (d *Database) SaveAnalysis(a *Analysis, items []AnalysisItem) error {
	if a == nil {
		return errors.New("analysis is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].AnalysisID = a.ID
			items[i].Position = i
		}
		return tx.CreateInBatches(items, 100).Error
	})
}

// GetAnalysis fetches one analysis by id.
func (d *Database) GetAnalysis(id uint) (*Analysis, error) {
	var a Analysis
	if err := d.gorm.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListItems returns the items of an analysis in their original order.
func (d *Database) ListItems(analysisID uint) ([]AnalysisItem, error) {
	var items []AnalysisItem
	if err := d.gorm.Where("analysis_id = ?", analysisID).Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AnalysisQuery encapsulates filters and pagination for listing analyses.
type AnalysisQuery struct {
	Mode      string
	Outcome   string
	SessionID string
	Offset    int
	Limit     int
}

// ListAnalyses returns the newest analyses first, applying optional filters.
func (d *Database) ListAnalyses(opts AnalysisQuery) ([]Analysis, int64, error) {
	base := d.gorm.Model(&Analysis{})
	if mode := strings.TrimSpace(opts.Mode); mode != "" {
		base = base.Where("mode = ?", strings.ToLower(mode))
	}
	if outcome := strings.TrimSpace(opts.Outcome); outcome != "" {
		base = base.Where("outcome = ?", strings.ToLower(outcome))
	}
	if session := strings.TrimSpace(opts.SessionID); session != "" {
		base = base.Where("session_id = ?", session)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base.Order("id DESC").Offset(opts.Offset)
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	var rows []Analysis
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountAnalyses returns the number of stored analyses.
func (d *Database) CountAnalyses() (int64, error) {
	var count int64
	if err := d.gorm.Model(&Analysis{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_analyses_mode_outcome ON analyses(mode, outcome)",
		"CREATE INDEX IF NOT EXISTS idx_analysis_items_analysis_position ON analysis_items(analysis_id, position)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
