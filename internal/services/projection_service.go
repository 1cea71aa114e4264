package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finloan/internal/dates"
	apperrors "finloan/internal/errors"
	"finloan/internal/events"
	"finloan/internal/logger"
	"finloan/internal/models"
	"finloan/internal/schedule"
)

// DefaultProjectionWorkers bounds how many definitions are projected at once.
const DefaultProjectionWorkers = 4

// projectionService turns due occurrences of recurring expenses into
// expenses. Each occurrence is inserted with ON CONFLICT DO NOTHING against
// the (recurring_expense_id, date) unique index, so overlapping or repeated
// runs never duplicate an occurrence.
type projectionService struct {
	db        *gorm.DB
	publisher events.Publisher
	workers   int
}

// NewProjectionService creates a new ProjectionServicer.
func NewProjectionService(db *gorm.DB, publisher events.Publisher, workers int) ProjectionServicer {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if workers <= 0 {
		workers = DefaultProjectionWorkers
	}
	return &projectionService{db: db, publisher: publisher, workers: workers}
}

// Run projects every active definition up to and including asOf.
func (s *projectionService) Run(ctx context.Context, asOf time.Time) (*RunResult, error) {
	return s.run(ctx, s.db.WithContext(ctx).Where("is_active = ?", true), asOf)
}

// RunForUser projects the user's active definitions up to and including asOf.
func (s *projectionService) RunForUser(ctx context.Context, userID string, asOf time.Time) (*RunResult, error) {
	return s.run(ctx, s.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true), asOf)
}

// projection is the outcome for one definition.
type projection struct {
	created []models.Expense
	skipped int
}

func (s *projectionService) run(ctx context.Context, q *gorm.DB, asOf time.Time) (*RunResult, error) {
	start := time.Now()
	asOf = dates.Normalize(asOf)

	var defs []models.RecurringExpense
	if err := q.Order("id ASC").Find(&defs).Error; err != nil {
		return nil, storageError(err)
	}

	result := &RunResult{AsOf: asOf, Definitions: len(defs), Errors: []DefinitionError{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range defs {
		def := &defs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.project(gctx, def, asOf)

			failed := err != nil && !errors.Is(err, context.Canceled)

			mu.Lock()
			result.Materialized += len(out.created)
			result.Skipped += out.skipped
			if failed {
				result.Errors = append(result.Errors, newDefinitionError(def.ID, err))
			}
			mu.Unlock()

			if failed {
				logger.Get().Errorw("recurring projection failed",
					"recurring_expense_id", def.ID,
					"frequency", def.Frequency,
					"error", err,
				)
			}
			if len(out.created) > 0 {
				s.announce(def, out.created, asOf)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Errors, func(a, b int) bool {
		return result.Errors[a].RecurringExpenseID < result.Errors[b].RecurringExpenseID
	})

	logger.Get().Infow("recurring projection complete",
		"as_of", dates.Format(asOf),
		"definitions", result.Definitions,
		"materialized", result.Materialized,
		"skipped", result.Skipped,
		"failed", len(result.Errors),
		"duration", time.Since(start),
	)
	return result, nil
}

// project materializes one definition's due occurrences in date order,
// advancing the cursor after each one.
func (s *projectionService) project(ctx context.Context, def *models.RecurringExpense, asOf time.Time) (projection, error) {
	var out projection
	db := s.db.WithContext(ctx)

	due, err := schedule.Due(def.Frequency, def.StartDate, def.LastMaterializedDate, asOf)
	if err != nil {
		return out, err
	}

	for _, date := range due {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		defID := def.ID
		expense := models.Expense{
			UserID:             def.UserID,
			Description:        def.Name,
			Amount:             def.Amount,
			Category:           def.Category,
			Date:               date,
			RecurringExpenseID: &defID,
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&expense)
		if res.Error != nil {
			return out, storageError(res.Error)
		}
		if res.RowsAffected == 0 {
			// Another run already wrote this occurrence.
			out.skipped++
		} else {
			out.created = append(out.created, expense)
		}

		// The cursor only moves forward, so a slower concurrent run cannot
		// rewind it.
		if err := db.Model(&models.RecurringExpense{}).
			Where("id = ? AND (last_materialized_date IS NULL OR last_materialized_date < ?)", def.ID, date).
			Update("last_materialized_date", date).Error; err != nil {
			return out, storageError(err)
		}
	}
	return out, nil
}

// announce publishes recurring.materialized for one definition. Failures are logged only.
func (s *projectionService) announce(def *models.RecurringExpense, created []models.Expense, asOf time.Time) {
	payload := events.RecurringMaterialized{
		RecurringExpenseID: def.ID,
		AsOf:               asOf,
	}
	for _, e := range created {
		payload.ExpenseIDs = append(payload.ExpenseIDs, e.ID)
		payload.Dates = append(payload.Dates, e.Date)
	}

	event, err := events.New(events.TypeRecurringMaterialized, def.UserID, payload)
	if err == nil {
		err = s.publisher.Publish(context.Background(), event)
	}
	if err != nil {
		logger.Get().Errorw("failed to publish recurring event", "recurring_expense_id", def.ID, "error", err)
	}
}

func newDefinitionError(id string, err error) DefinitionError {
	de := DefinitionError{
		RecurringExpenseID: id,
		Code:               apperrors.ErrInternalServer.Code,
		Message:            apperrors.ErrInternalServer.Message,
		Err:                err,
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		de.Code = appErr.Code
		de.Message = appErr.Message
	}
	return de
}
