package application

import (
	"context"
	"errors"
	"sort"
	"time"

	logbook "aura-panel/internal/logbook/domain"
)

// Window is a trailing analytics period anchored at now.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// ErrUnknownWindow is returned for an unrecognized window name.
var ErrUnknownWindow = errors.New("analytics: unknown window")

// ParseWindow resolves a window name, defaulting to day.
func ParseWindow(name string) (Window, error) {
	switch name {
	case "", string(WindowDay):
		return WindowDay, nil
	case string(WindowWeek):
		return WindowWeek, nil
	case string(WindowMonth):
		return WindowMonth, nil
	case string(WindowYear):
		return WindowYear, nil
	default:
		return "", ErrUnknownWindow
	}
}

// Duration returns the trailing span the window covers.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	case WindowYear:
		return 365 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// CategoryCount is one hazard category with its event count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary aggregates logged hazard events over a window.
type Summary struct {
	Window      Window          `json:"window"`
	Since       time.Time       `json:"since"`
	GeneratedAt time.Time       `json:"generated_at"`
	Categories  []CategoryCount `json:"categories"`
	Total       int             `json:"total"`
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service computes analytics summaries from the system log.
type Service struct {
	logs  logbook.Repository
	clock Clock
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs an analytics service.
func NewService(logs logbook.Repository, opts ...Option) (*Service, error) {
	if logs == nil {
		return nil, errors.New("analytics: nil logbook repository")
	}
	s := &Service{logs: logs, clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Summarize counts logged events per category inside the window.
func (s *Service) Summarize(ctx context.Context, window Window) (Summary, error) {
	now := s.clock.Now().UTC()
	since := now.Add(-window.Duration())

	counts, err := s.logs.CountByCategory(ctx, since)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Window:      window,
		Since:       since,
		GeneratedAt: now,
		Categories:  make([]CategoryCount, 0, len(counts)),
	}
	for category, count := range counts {
		summary.Categories = append(summary.Categories, CategoryCount{Category: category, Count: count})
		summary.Total += count
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		if summary.Categories[i].Count != summary.Categories[j].Count {
			return summary.Categories[i].Count > summary.Categories[j].Count
		}
		return summary.Categories[i].Category < summary.Categories[j].Category
	})
	return summary, nil
}
