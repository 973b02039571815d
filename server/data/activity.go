package data

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/honganh1206/openclawd/utils"
)

//go:embed activity_schema.sql
var ActivitySchema string

var ErrActivityNotFound = errors.New("activity not found")

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const DefaultMaxActivities = 1000

type Activity struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   time.Time      `json:"timestamp"`
	Status      string         `json:"status"`
	Result      map[string]any `json:"result,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// Summary of tracked activities. Used by the status endpoint
type ActivityCounts struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	// Not part of the status payload.
	Pending int `json:"-"`
}

// Other counts activities whose status is none of the known ones.
func (c ActivityCounts) Other() int {
	return c.Total - c.Pending - c.Running - c.Completed - c.Failed
}

// ActivityModel tracks activities in SQLite, keeping at most MaxActivities
// of them. The oldest are dropped first.
type ActivityModel struct {
	DB            *sql.DB
	MaxActivities int
}

const activityColumns = `id, type, description, metadata, status, timestamp, completed_at, result`

// Log records a new running activity.
func (am *ActivityModel) Log(ctx context.Context, activityType, description string, metadata map[string]any) (*Activity, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	activity := &Activity{
		ID:          uuid.NewString(),
		Type:        activityType,
		Description: description,
		Metadata:    metadata,
		Timestamp:   time.Now().UTC(),
		Status:      StatusRunning,
	}

	metadataJSON, err := json.Marshal(activity.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tx, err := am.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
	INSERT INTO activities (id, type, description, metadata, status, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		activity.ID,
		activity.Type,
		activity.Description,
		string(metadataJSON),
		activity.Status,
		activity.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	// When fewer rows than the cap exist the subquery yields NULL and
	// nothing is deleted.
	query = `
	DELETE FROM activities
	WHERE seq <= (SELECT seq FROM activities ORDER BY seq DESC LIMIT 1 OFFSET ?)
	`
	if _, err = tx.ExecContext(ctx, query, am.maxActivities()); err != nil {
		return nil, fmt.Errorf("failed to prune activities: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return activity, nil
}

// Update sets the status and result of an activity and stamps its
// completion time.
func (am *ActivityModel) Update(ctx context.Context, id, status string, result map[string]any) (*Activity, error) {
	if result == nil {
		result = map[string]any{}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
	UPDATE activities SET status = ?, result = ?, completed_at = ?
	WHERE id = ?
	`
	res, err := am.DB.ExecContext(ctx, query, status, string(resultJSON), time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update activity '%s': %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrActivityNotFound
	}

	return am.Get(ctx, id)
}

func (am *ActivityModel) Get(ctx context.Context, id string) (*Activity, error) {
	row := am.DB.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activities WHERE id = ?", id)

	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to query activity '%s': %w", id, err)
	}

	return activity, nil
}

// Recent returns the latest limit activities, oldest first.
func (am *ActivityModel) Recent(ctx context.Context, limit int) ([]*Activity, error) {
	query := `
	SELECT ` + activityColumns + ` FROM (
		SELECT seq, ` + activityColumns + ` FROM activities ORDER BY seq DESC LIMIT ?
	) ORDER BY seq ASC
	`
	return am.query(ctx, query, limit)
}

// ByStatus returns every activity with the given status, oldest first.
func (am *ActivityModel) ByStatus(ctx context.Context, status string) ([]*Activity, error) {
	query := "SELECT " + activityColumns + " FROM activities WHERE status = ? ORDER BY seq ASC"
	return am.query(ctx, query, status)
}

func (am *ActivityModel) Counts(ctx context.Context) (ActivityCounts, error) {
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
	FROM activities
	`

	var counts ActivityCounts
	err := am.DB.QueryRowContext(ctx, query, StatusRunning, StatusCompleted, StatusFailed, StatusPending).
		Scan(&counts.Total, &counts.Running, &counts.Completed, &counts.Failed, &counts.Pending)
	if err != nil {
		return ActivityCounts{}, fmt.Errorf("failed to count activities: %w", err)
	}

	return counts, nil
}

func (am *ActivityModel) Clear(ctx context.Context) error {
	if _, err := am.DB.ExecContext(ctx, "DELETE FROM activities"); err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}
	return nil
}

func (am *ActivityModel) maxActivities() int {
	if am.MaxActivities <= 0 {
		return DefaultMaxActivities
	}
	return am.MaxActivities
}

func (am *ActivityModel) query(ctx context.Context, query string, args ...any) ([]*Activity, error) {
	rows, err := am.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []*Activity{}
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*Activity, error) {
	var (
		activity     Activity
		metadataJSON string
		timestamp    string
		completedAt  sql.NullString
		resultJSON   sql.NullString
	)

	err := s.Scan(
		&activity.ID,
		&activity.Type,
		&activity.Description,
		&metadataJSON,
		&activity.Status,
		&timestamp,
		&completedAt,
		&resultJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metadataJSON), &activity.Metadata); err != nil {
		return nil, fmt.Errorf("invalid metadata for activity '%s': %w", activity.ID, err)
	}
	if activity.Metadata == nil {
		activity.Metadata = map[string]any{}
	}

	activity.Timestamp, err = utils.ParseTimeWithFallback(timestamp)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t, err := utils.ParseTimeWithFallback(completedAt.String)
		if err != nil {
			return nil, err
		}
		activity.CompletedAt = &t
	}

	if resultJSON.Valid {
		if err := json.Unmarshal([]byte(resultJSON.String), &activity.Result); err != nil {
			return nil, fmt.Errorf("invalid result for activity '%s': %w", activity.ID, err)
		}
	}

	return &activity, nil
}
