package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Period selects a time window of the payment log.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
)

// ModeAll disables the mode filter.
const ModeAll = "all"

const weekWindow = 7 * 24 * time.Hour

// ParsePeriod converts raw input into a Period; empty means all.
func ParsePeriod(value string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(value))) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodToday:
		return PeriodToday, nil
	case PeriodWeek:
		return PeriodWeek, nil
	}
	return "", fmt.Errorf("invalid period %q", value)
}

// Filter narrows the payment log.
type Filter struct {
	Mode   string
	Period Period
}

// Summary is a filtered view of the payment log with its aggregates.
type Summary struct {
	Items   []models.Payment `json:"items"`
	Count   int              `json:"count"`
	Total   models.Amount    `json:"total"`
	Average models.Amount    `json:"average"`
}

// Service defines the payment log operations.
type Service interface {
	Record(ctx context.Context, payment *models.Payment) error
	All(ctx context.Context) ([]models.Payment, error)
	List(ctx context.Context, filter Filter) (*Summary, error)
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, loc *time.Location, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, loc: loc, now: now}, nil
}

// Record appends payment to the log. It is the only writer.
func (s *service) Record(ctx context.Context, payment *models.Payment) error {
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment required")
	}
	return store.Classify(s.repo.Append(ctx, payment), "record payment")
}

func (s *service) All(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.repo.List(ctx)
	if err != nil {
		return nil, store.Classify(err, "list payments")
	}
	return payments, nil
}

func (s *service) List(ctx context.Context, filter Filter) (*Summary, error) {
	mode := strings.ToLower(strings.TrimSpace(filter.Mode))
	if mode != "" && mode != ModeAll && !enums.Mode(mode).IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mode must be all, bar or snackbar")
	}
	period := filter.Period
	if period == "" {
		period = PeriodAll
	}

	payments, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := models.DayKey(now, s.loc)
	weekAgo := now.Add(-weekWindow)

	items := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if mode != "" && mode != ModeAll && string(p.Mode) != mode {
			continue
		}
		switch period {
		case PeriodToday:
			if models.DayKey(p.Date, s.loc) != today {
				continue
			}
		case PeriodWeek:
			if p.Date.Before(weekAgo) {
				continue
			}
		}
		items = append(items, p)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	summary := &Summary{Items: items, Count: len(items)}
	for _, p := range items {
		summary.Total += p.Amount
	}
	if summary.Count > 0 {
		avg := summary.Total.Decimal().Div(decimal.NewFromInt(int64(summary.Count)))
		summary.Average = models.AmountFromDecimal(avg)
	}
	return summary, nil
}
