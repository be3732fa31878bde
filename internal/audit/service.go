package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/lameridiana/gestionale/internal/shared"
)

// TimelineFilters narrow the audit listing.
type TimelineFilters struct {
	Actor    string
	Entity   string
	Action   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// TimelineResult wraps a page of entries with paging metadata.
type TimelineResult struct {
	Entries []Entry
	Paging  shared.Pagination
}

// Repository provides read access to the audit trail.
type Repository interface {
	Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, int, error)
}

// Service coordinates audit trail reads for the browsing page.
type Service struct {
	repo Repository
}

// NewService builds a timeline Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of the trail, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (TimelineResult, error) {
	if s == nil || s.repo == nil {
		return TimelineResult{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	entries, total, err := s.repo.Timeline(ctx, filters, pageSize, (page-1)*pageSize)
	if err != nil {
		return TimelineResult{}, err
	}
	return TimelineResult{
		Entries: entries,
		Paging:  shared.NewPagination(page, pageSize, total),
	}, nil
}
