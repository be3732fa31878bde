package audit

import (
	"context"
	"testing"
)

type stubTimelineRepo struct {
	gotFilters TimelineFilters
	gotLimit   int
	gotOffset  int
	entries    []Entry
	total      int
}

func (s *stubTimelineRepo) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, int, error) {
	s.gotFilters = filters
	s.gotLimit = limit
	s.gotOffset = offset
	return s.entries, s.total, nil
}

func TestTimelineDefaultsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{total: 3}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.gotLimit != 20 || repo.gotOffset != 0 {
		t.Errorf("limit=%d offset=%d, want defaults", repo.gotLimit, repo.gotOffset)
	}
	if result.Paging.Page != 1 || result.Paging.Total != 3 {
		t.Errorf("paging = %+v", result.Paging)
	}
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)

	if _, err := svc.Timeline(context.Background(), TimelineFilters{Page: 3, PageSize: 500}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.gotLimit != 50 {
		t.Errorf("limit = %d, want clamp at 50", repo.gotLimit)
	}
	if repo.gotOffset != 100 {
		t.Errorf("offset = %d, want page 3 of 50", repo.gotOffset)
	}
}

func TestTimelinePassesFilters(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)

	filters := TimelineFilters{Actor: "uid-1", Entity: "clienti", Action: "UPDATE"}
	if _, err := svc.Timeline(context.Background(), filters); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.gotFilters.Actor != "uid-1" || repo.gotFilters.Entity != "clienti" || repo.gotFilters.Action != "UPDATE" {
		t.Errorf("filters = %+v", repo.gotFilters)
	}
}
