package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/domain"
)

type topicRow struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	Name            string     `db:"name"`
	ParentType      *string    `db:"parent_type"`
	ParentID        *string    `db:"parent_id"`
	RetentionRating *int       `db:"retention_rating"`
	Status          string     `db:"status"`
	LastReviewedAt  *time.Time `db:"last_reviewed_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

const topicColumns = `id, user_id, name, parent_type, parent_id, retention_rating, status, last_reviewed_at, created_at`

func (r topicRow) toDomain() (domain.Topic, error) {
	parent, err := parentFromColumns(r.ParentType, r.ParentID)
	if err != nil {
		return domain.Topic{}, err
	}
	return domain.Topic{
		ID:              r.ID,
		UserID:          r.UserID,
		Name:            r.Name,
		Parent:          parent,
		RetentionRating: r.RetentionRating,
		Status:          domain.TopicStatus(r.Status),
		LastReviewedAt:  r.LastReviewedAt,
		CreatedAt:       r.CreatedAt,
	}, nil
}

// InsertTopic stores t, assigning its ID. A set parent must exist.
func (s *Store) InsertTopic(ctx context.Context, tx *sqlx.Tx, t *domain.Topic) error {
	if t.Parent != nil {
		if _, err := s.ResolveParent(ctx, tx, t.UserID, t.Parent); err != nil {
			return err
		}
	}
	t.ID = uuid.NewString()
	t.CreatedAt = utc(t.CreatedAt)
	if t.Status == "" {
		t.Status = domain.TopicToLearn
	}
	kind, id := domain.ParentColumns(t.Parent)
	_, err := s.exec(ctx, tx, `
		INSERT INTO study_topics (`+topicColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Name, kind, id, t.RetentionRating, t.Status, utcPtr(t.LastReviewedAt), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert topic %q: %w", t.Name, err)
	}
	return nil
}

// GetTopic loads a topic by id.
func (s *Store) GetTopic(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Topic, error) {
	var row topicRow
	if err := s.get(ctx, tx, &row, `SELECT `+topicColumns+` FROM study_topics WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "topic", id)
	}
	t, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTopics returns the user's topics ordered by name.
func (s *Store) ListTopics(ctx context.Context, tx *sqlx.Tx, userID string) ([]domain.Topic, error) {
	var rows []topicRow
	if err := s.selectAll(ctx, tx, &rows, `SELECT `+topicColumns+` FROM study_topics WHERE user_id = ? ORDER BY name, id`, userID); err != nil {
		return nil, fmt.Errorf("failed to list topics for user %s: %w", userID, err)
	}
	topics := make([]domain.Topic, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// UpdateTopicRetention writes retention rating, status and last review time of t.
func (s *Store) UpdateTopicRetention(ctx context.Context, tx *sqlx.Tx, t *domain.Topic) error {
	res, err := s.exec(ctx, tx, `
		UPDATE study_topics SET retention_rating = ?, status = ?, last_reviewed_at = ? WHERE id = ?
	`, t.RetentionRating, t.Status, utcPtr(t.LastReviewedAt), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update topic %s: %w", t.ID, err)
	}
	return expectOne(res, "topic", t.ID)
}

// InsertRetentionLog appends a retention observation.
func (s *Store) InsertRetentionLog(ctx context.Context, tx *sqlx.Tx, l *domain.RetentionLog) error {
	l.ID = uuid.NewString()
	l.EvaluatedAt = utc(l.EvaluatedAt)
	err := s.namedExec(ctx, tx, `
		INSERT INTO study_retention_logs (id, topic_id, rating, evaluated_at)
		VALUES (:id, :topic_id, :rating, :evaluated_at)
	`, l)
	if err != nil {
		return fmt.Errorf("failed to insert retention log for topic %s: %w", l.TopicID, err)
	}
	return nil
}

// RecentRetentionLogs returns up to limit logs of a topic, newest first.
func (s *Store) RecentRetentionLogs(ctx context.Context, tx *sqlx.Tx, topicID string, limit int) ([]domain.RetentionLog, error) {
	var logs []domain.RetentionLog
	err := s.selectAll(ctx, tx, &logs, `
		SELECT id, topic_id, rating, evaluated_at FROM study_retention_logs
		WHERE topic_id = ? ORDER BY evaluated_at DESC, id DESC LIMIT ?
	`, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list retention logs of topic %s: %w", topicID, err)
	}
	return logs, nil
}
