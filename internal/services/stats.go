// internal/services/stats.go
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

// Report periods.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// CollectionCounter is the slice of the collection repository the
// dashboard needs.
type CollectionCounter interface {
	CountByStatus(ctx context.Context, status models.CollectionStatus) (int64, error)
	StatsByCollector(ctx context.Context, collectorID primitive.ObjectID) (*models.CollectionStats, error)
	CompletedByTypeSince(ctx context.Context, since time.Time) (map[string]int64, error)
}

// UserCounter counts accounts for the dashboard.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
}

// FeedbackCounter counts feedback entries for the dashboard.
type FeedbackCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveCollectors int64 `json:"active_collectors"`
	PendingRequests  int64 `json:"pending_requests"`
	CompletedPickups int64 `json:"completed_pickups"`
	TotalFeedbacks   int64 `json:"total_feedbacks"`
}

// GarbageTypeShare is one row of the waste-composition report.
type GarbageTypeShare struct {
	GarbageType string  `json:"garbage_type"`
	Count       int64   `json:"count"`
	Percentage  float64 `json:"percentage"`
}

// StatsService aggregates dashboard totals and the completed-pickup
// composition report.
type StatsService struct {
	collections CollectionCounter
	users       UserCounter
	feedbacks   FeedbackCounter
}

func NewStatsService(collections CollectionCounter, users UserCounter, feedbacks FeedbackCounter) *StatsService {
	return &StatsService{
		collections: collections,
		users:       users,
		feedbacks:   feedbacks,
	}
}

// Dashboard computes the admin summary counters.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	collectors, err := s.users.CountByRole(ctx, models.RoleCollector)
	if err != nil {
		return nil, err
	}
	pending, err := s.collections.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}
	completed, err := s.collections.CountByStatus(ctx, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	feedbacks, err := s.feedbacks.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalUsers:       totalUsers,
		ActiveCollectors: collectors,
		PendingRequests:  pending,
		CompletedPickups: completed,
		TotalFeedbacks:   feedbacks,
	}, nil
}

// CollectorStats returns the per-status breakdown for one collector.
func (s *StatsService) CollectorStats(ctx context.Context, collectorID primitive.ObjectID) (*models.CollectionStats, error) {
	return s.collections.StatsByCollector(ctx, collectorID)
}

// ReportAnalysis breaks completed pickups down by garbage type over the
// given period, largest share first.
func (s *StatsService) ReportAnalysis(ctx context.Context, period string) ([]GarbageTypeShare, error) {
	var since time.Time
	now := time.Now()
	switch period {
	case PeriodDay:
		since = now.AddDate(0, 0, -1)
	case PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case PeriodMonth:
		since = now.AddDate(0, -1, 0)
	default:
		return nil, fmt.Errorf("unknown report period %q", period)
	}

	counts, err := s.collections.CompletedByTypeSince(ctx, since)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	shares := make([]GarbageTypeShare, 0, len(counts))
	for garbageType, count := range counts {
		share := GarbageTypeShare{GarbageType: garbageType, Count: count}
		if total > 0 {
			share.Percentage = float64(count) / float64(total) * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].GarbageType < shares[j].GarbageType
	})
	return shares, nil
}
