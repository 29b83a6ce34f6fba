package retention

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/logger"
	"github.com/lifehub/studycore/internal/storage"
)

// Tracker records retention ratings. It never touches flashcard scheduling.
type Tracker struct {
	store    *storage.Store
	policy   Policy
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time
}

func NewTracker(store *storage.Store, policy Policy, log *logger.Logger) (*Tracker, error) {
	if log == nil {
		log = logger.Nop()
	}
	v := validator.New()
	if err := apperr.Check(v, policy); err != nil {
		return nil, err
	}
	return &Tracker{
		store:    store,
		policy:   policy,
		validate: v,
		log:      log.With("component", "retention"),
		now:      time.Now,
	}, nil
}

type topicInput struct {
	UserID string `validate:"required"`
	Name   string `validate:"required,max=200"`
}

type ratingInput struct {
	TopicID string `validate:"required"`
}

// CreateTopic stores a new TO_LEARN topic. A non-nil parent must exist.
func (t *Tracker) CreateTopic(ctx context.Context, userID, name string, parent domain.Parent) (*domain.Topic, error) {
	if err := apperr.Check(t.validate, topicInput{UserID: userID, Name: name}); err != nil {
		return nil, err
	}
	topic := &domain.Topic{
		UserID:    userID,
		Name:      name,
		Parent:    parent,
		Status:    domain.TopicToLearn,
		CreatedAt: t.now().UTC(),
	}
	if err := t.store.InsertTopic(ctx, nil, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// RecordRating appends a retention observation and re-evaluates the topic status.
// A zero evaluatedAt means now.
func (t *Tracker) RecordRating(ctx context.Context, topicID string, rating int, evaluatedAt time.Time) (*domain.Topic, error) {
	if err := apperr.Check(t.validate, ratingInput{TopicID: topicID}); err != nil {
		return nil, err
	}
	if rating < domain.MinRetentionRating || rating > domain.MaxRetentionRating {
		return nil, apperr.Validationf("rating", "rating must be between %d and %d, got %d",
			domain.MinRetentionRating, domain.MaxRetentionRating, rating)
	}
	if evaluatedAt.IsZero() {
		evaluatedAt = t.now()
	}
	evaluatedAt = evaluatedAt.UTC()

	var topic *domain.Topic
	var from domain.TopicStatus
	err := t.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		topic, err = t.store.GetTopic(ctx, tx, topicID)
		if err != nil {
			return err
		}
		from = topic.Status
		if err := t.store.InsertRetentionLog(ctx, tx, &domain.RetentionLog{
			TopicID:     topicID,
			Rating:      rating,
			EvaluatedAt: evaluatedAt,
		}); err != nil {
			return err
		}
		logs, err := t.store.RecentRetentionLogs(ctx, tx, topicID, t.policy.Window)
		if err != nil {
			return err
		}
		topic.Status = Evaluate(topic.Status, ratings(logs), t.policy)
		topic.RetentionRating = &rating
		topic.LastReviewedAt = &evaluatedAt
		return t.store.UpdateTopicRetention(ctx, tx, topic)
	})
	if err != nil {
		return nil, err
	}
	if from != topic.Status {
		t.log.Info("topic status changed", "topic_id", topic.ID, "from", from, "to", topic.Status)
	}
	return topic, nil
}

// Summary is the retention picture of one topic over the trailing window.
type Summary struct {
	Topic   domain.Topic
	Average float64
	Samples int
	// Trend is the newest minus the oldest rating in the window.
	Trend int
}

// Summarize returns a summary for each of the user's topics.
func (t *Tracker) Summarize(ctx context.Context, userID string) ([]Summary, error) {
	var out []Summary
	err := t.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		topics, err := t.store.ListTopics(ctx, tx, userID)
		if err != nil {
			return err
		}
		out = make([]Summary, 0, len(topics))
		for _, topic := range topics {
			logs, err := t.store.RecentRetentionLogs(ctx, tx, topic.ID, t.policy.Window)
			if err != nil {
				return err
			}
			r := ratings(logs)
			s := Summary{Topic: topic, Average: average(r), Samples: len(r)}
			if len(r) > 1 {
				s.Trend = r[0] - r[len(r)-1]
			}
			out = append(out, s)
		}
		return nil
	})
	return out, err
}

func ratings(logs []domain.RetentionLog) []int {
	out := make([]int, len(logs))
	for i, l := range logs {
		out[i] = l.Rating
	}
	return out
}
