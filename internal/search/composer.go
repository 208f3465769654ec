package search

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"studentnest/internal/models"
)

// Result is one page of matching listings
type Result struct {
	Properties []models.Property `json:"properties"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Composer runs listing searches against the property store
type Composer struct {
	db          *gorm.DB
	logger      *logrus.Logger
	pageSize    int
	maxPageSize int
}

func NewComposer(db *gorm.DB, logger *logrus.Logger, pageSize, maxPageSize int) *Composer {
	if logger == nil {
		logger = logrus.New()
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return &Composer{db: db, logger: logger, pageSize: pageSize, maxPageSize: maxPageSize}
}

// Search returns the active listings matching every given criterion.
// Verified listings come first, then newest first, with the id as the final
// tie-breaker so pages are stable.
func (s *Composer) Search(ctx context.Context, c Criteria) (*Result, error) {
	predicates, err := Build(c)
	if err != nil {
		return nil, err
	}

	page := c.Page
	if page < 1 {
		page = 1
	}
	size := c.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	var total int64
	if err := s.apply(ctx, predicates).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	properties := []models.Property{}
	err = s.apply(ctx, predicates).
		Order("is_verified DESC").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"predicates": len(predicates),
		"total":      total,
		"page":       page,
	}).Debug("Listing search completed")

	return &Result{
		Properties: properties,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *Composer) apply(ctx context.Context, predicates []Predicate) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Property{})
	for _, p := range predicates {
		query = query.Where(p.Query, p.Args...)
	}
	return query
}
