package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/services"
)

type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, owner_id, name, description, target_amount, initial_amount, current_amount, target_date, auto_contribution_amount, priority, is_completed, completed_at, is_archived, created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }) (*models.Goal, error) {
	g := &models.Goal{}
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.TargetAmount, &g.InitialAmount, &g.CurrentAmount, &g.TargetDate, &g.AutoContributionAmount, &g.Priority, &g.IsCompleted, &g.CompletedAt, &g.IsArchived, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GoalRepository) Create(ctx context.Context, g *models.Goal) (*models.Goal, error) {
	// the running amount starts at the seed amount
	err := r.db.QueryRowContext(ctx, `INSERT INTO goals (owner_id, name, description, target_amount, initial_amount, current_amount, target_date, auto_contribution_amount, priority) VALUES ($1, $2, $3, $4, $5, $5, $6, $7, $8) RETURNING id, created_at, updated_at`,
		g.OwnerID, g.Name, g.Description, g.TargetAmount, g.InitialAmount, g.TargetDate, g.AutoContributionAmount, g.Priority).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	g.CurrentAmount = g.InitialAmount
	return g, nil
}

func (r *GoalRepository) Get(ctx context.Context, ownerID, goalID int64) (*models.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND owner_id = $2`, goalID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: goal %d", services.ErrNotFound, goalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %d: %w", goalID, err)
	}
	return g, nil
}

func (r *GoalRepository) ListActive(ctx context.Context, ownerID int64) ([]models.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE owner_id = $1 AND is_archived = false ORDER BY priority ASC, created_at ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (r *GoalRepository) UpdateProgress(ctx context.Context, goal *models.Goal) error {
	_, err := r.db.ExecContext(ctx, `UPDATE goals SET current_amount = $1, is_completed = $2, completed_at = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`,
		goal.CurrentAmount, goal.IsCompleted, goal.CompletedAt, goal.ID)
	if err != nil {
		return fmt.Errorf("failed to update goal %d: %w", goal.ID, err)
	}
	return nil
}

type ContributionRepository struct {
	db *sql.DB
}

func NewContributionRepository(db *sql.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *models.GoalContribution) (*models.GoalContribution, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO goal_contributions (goal_id, amount, date, notes, is_automatic) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		c.GoalID, c.Amount, c.Date, c.Notes, c.IsAutomatic).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal contribution: %w", err)
	}
	return c, nil
}

func (r *ContributionRepository) ListSince(ctx context.Context, goalID int64, since time.Time) ([]models.GoalContribution, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, goal_id, amount, date, notes, is_automatic, created_at FROM goal_contributions WHERE goal_id = $1 AND date >= $2 ORDER BY date ASC`, goalID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions for goal %d: %w", goalID, err)
	}
	defer rows.Close()

	var contributions []models.GoalContribution
	for rows.Next() {
		c := models.GoalContribution{}
		if err := rows.Scan(&c.ID, &c.GoalID, &c.Amount, &c.Date, &c.Notes, &c.IsAutomatic, &c.CreatedAt); err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}
