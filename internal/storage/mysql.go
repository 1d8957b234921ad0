package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storyteller/internal/catalog"
	"storyteller/internal/config"
	"storyteller/internal/models"
)

type MySQLStore struct {
	db *gorm.DB
}

// DSN builds the go-sql-driver connection string for cfg.
func DSN(cfg config.MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)
}

func NewMySQLStore(cfg config.MySQLConfig) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(&models.Story{}, &models.Segment{}); err != nil {
		return nil, fmt.Errorf("migrate catalog tables: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *MySQLStore) GetDB() *gorm.DB {
	return s.db
}

// LoadCatalog reads every story with its segments in position order.
func (s *MySQLStore) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	var rows []models.Story
	err := s.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	return catalog.New(StoriesFromRows(rows))
}

// StoriesFromRows converts catalog rows, dropping stories with no segments.
func StoriesFromRows(rows []models.Story) []catalog.Story {
	stories := make([]catalog.Story, 0, len(rows))
	for i := range rows {
		urls := rows[i].SegmentURLs()
		if len(urls) == 0 {
			continue
		}
		stories = append(stories, catalog.Story{ID: rows[i].ID, Title: rows[i].Title, Segments: urls})
	}
	return stories
}

// SaveStory upserts a story and replaces its segments.
func (s *MySQLStore) SaveStory(ctx context.Context, story catalog.Story) error {
	return s.WithTx(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		row := models.Story{ID: story.ID, Title: story.Title}
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("save story %s: %w", story.ID, err)
		}
		if err := tx.Where("story_id = ?", story.ID).Delete(&models.Segment{}).Error; err != nil {
			return fmt.Errorf("clear segments of %s: %w", story.ID, err)
		}
		for i, url := range story.Segments {
			seg := models.Segment{StoryID: story.ID, Position: i, URL: url}
			if err := tx.Create(&seg).Error; err != nil {
				return fmt.Errorf("save segment %s/%d: %w", story.ID, i, err)
			}
		}
		return nil
	})
}

// Transaction helper
func (s *MySQLStore) WithTx(fn func(*gorm.DB) error) error {
	return s.db.Transaction(fn)
}
