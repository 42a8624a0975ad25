package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aregalado/plata/internal/models"
)

// RecurringService advances recurring transaction templates and materializes
// due occurrences into transactions.
type RecurringService struct {
	recurring    RecurringStore
	transactions TransactionStore
	log          zerolog.Logger
	now          func() time.Time
}

func NewRecurringService(recurring RecurringStore, transactions TransactionStore, log zerolog.Logger) *RecurringService {
	return &RecurringService{
		recurring:    recurring,
		transactions: transactions,
		log:          log,
		now:          time.Now,
	}
}

// nextDate is one frequency step after the last materialization. A template
// never materialized starts at its start date.
func nextDate(rec *models.RecurringTransaction) (time.Time, bool) {
	if rec.LastCreatedDate == nil {
		return dateOnly(rec.StartDate), true
	}
	last := dateOnly(*rec.LastCreatedDate)

	switch rec.Frequency {
	case models.FreqDaily:
		return last.AddDate(0, 0, 1), true
	case models.FreqWeekly:
		return last.AddDate(0, 0, 7), true
	case models.FreqBiweekly:
		return last.AddDate(0, 0, 14), true
	case models.FreqMonthly:
		next := addMonths(last, 1)
		if rec.DayOfMonth != nil {
			next = clampedDate(next.Year(), next.Month(), *rec.DayOfMonth)
		}
		return next, true
	case models.FreqBimonthly:
		return addMonths(last, 2), true
	case models.FreqQuarterly:
		return addMonths(last, 3), true
	case models.FreqSemiannual:
		return addMonths(last, 6), true
	case models.FreqAnnual:
		return clampedDate(last.Year()+1, last.Month(), last.Day()), true
	case models.FreqCustom:
		days := 30
		if rec.CustomFrequencyDays != nil {
			days = *rec.CustomFrequencyDays
		}
		return last.AddDate(0, 0, days), true
	}
	return time.Time{}, false
}

// NextDueDate returns the template's next occurrence when it is due (on or
// before today); ok is false when nothing is due yet.
func NextDueDate(rec *models.RecurringTransaction, today time.Time) (time.Time, bool) {
	next, ok := nextDate(rec)
	if !ok || next.After(dateOnly(today)) {
		return time.Time{}, false
	}
	return next, true
}

// ProcessDue runs the check-and-materialize loop once per active template.
// Templates past their end date are deactivated instead of processed, and a
// template that already materialized a transaction on the due date is
// skipped, so a retried invocation creates nothing twice.
func (s *RecurringService) ProcessDue(ctx context.Context) (int, error) {
	today := dateOnly(s.now())

	templates, err := s.recurring.ListDueCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list due templates: %w", err)
	}

	created := 0
	for i := range templates {
		rec := &templates[i]

		if rec.EndDate != nil && dateOnly(*rec.EndDate).Before(today) {
			if err := s.recurring.Deactivate(ctx, rec.ID); err != nil {
				s.log.Error().Err(err).Int64("recurring_id", rec.ID).Msg("deactivate failed")
			}
			continue
		}

		due, ok := NextDueDate(rec, today)
		if !ok {
			continue
		}

		exists, err := s.transactions.ExistsForRecurringOn(ctx, rec.ID, due)
		if err != nil {
			s.log.Error().Err(err).Int64("recurring_id", rec.ID).Msg("duplicate check failed")
			continue
		}
		if exists {
			continue
		}

		if _, err := s.materialize(ctx, rec, due); err != nil {
			s.log.Error().Err(err).Int64("recurring_id", rec.ID).Msg("materialize failed")
			continue
		}
		created++
	}
	return created, nil
}

// materialize creates one transaction dated at the due date and stamps the
// template's last-created timestamp.
func (s *RecurringService) materialize(ctx context.Context, rec *models.RecurringTransaction, due time.Time) (*models.Transaction, error) {
	notes := rec.Notes
	if notes == "" {
		notes = rec.Name
	}

	tx := &models.Transaction{
		OwnerID:     rec.OwnerID,
		AccountID:   rec.AccountID,
		CategoryID:  rec.CategoryID,
		Type:        rec.Type,
		Amount:      rec.Amount,
		Date:        due,
		Merchant:    rec.Merchant,
		Notes:       fmt.Sprintf("[Auto] %s", notes),
		RecurringID: &rec.ID,
	}
	created, err := s.transactions.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.recurring.UpdateLastCreated(ctx, rec.ID, now); err != nil {
		return nil, fmt.Errorf("stamp template %d: %w", rec.ID, err)
	}
	rec.LastCreatedDate = &now

	s.log.Info().Int64("recurring_id", rec.ID).
		Str("date", due.Format("2006-01-02")).
		Msg("recurring transaction materialized")
	return created, nil
}

// UpcomingOccurrence is a template occurrence expected within a horizon.
type UpcomingOccurrence struct {
	Recurring *models.RecurringTransaction `json:"recurring"`
	NextDate  time.Time                    `json:"next_date"`
	DaysUntil int                          `json:"days_until"`
}

// Upcoming previews template occurrences falling inside the next days.
func (s *RecurringService) Upcoming(ctx context.Context, ownerID int64, days int) ([]UpcomingOccurrence, error) {
	today := dateOnly(s.now())
	horizon := today.AddDate(0, 0, days)

	templates, err := s.recurring.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var upcoming []UpcomingOccurrence
	for i := range templates {
		rec := &templates[i]
		next, ok := nextDate(rec)
		if !ok {
			continue
		}
		if next.Before(today) || next.After(horizon) {
			continue
		}
		upcoming = append(upcoming, UpcomingOccurrence{
			Recurring: rec,
			NextDate:  next,
			DaysUntil: int(next.Sub(today).Hours() / 24),
		})
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].NextDate.Before(upcoming[j].NextDate)
	})
	return upcoming, nil
}
