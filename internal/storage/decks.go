package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/domain"
)

type deckRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Name       string    `db:"name"`
	ParentType *string   `db:"parent_type"`
	ParentID   *string   `db:"parent_id"`
	Source     string    `db:"source"`
	CreatedAt  time.Time `db:"created_at"`
}

const deckColumns = `id, user_id, name, parent_type, parent_id, source, created_at`

func (r deckRow) toDomain() (domain.Deck, error) {
	parent, err := parentFromColumns(r.ParentType, r.ParentID)
	if err != nil {
		return domain.Deck{}, err
	}
	return domain.Deck{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Parent:    parent,
		Source:    r.Source,
		CreatedAt: r.CreatedAt,
	}, nil
}

// CreateDeck inserts d, assigning its ID. A set parent must exist.
func (s *Store) CreateDeck(ctx context.Context, tx *sqlx.Tx, d *domain.Deck) error {
	if d.Parent != nil {
		if _, err := s.ResolveParent(ctx, tx, d.UserID, d.Parent); err != nil {
			return err
		}
	}
	d.ID = uuid.NewString()
	d.CreatedAt = utc(d.CreatedAt)
	kind, id := domain.ParentColumns(d.Parent)
	_, err := s.exec(ctx, tx, `
		INSERT INTO study_decks (id, user_id, name, parent_type, parent_id, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.UserID, d.Name, kind, id, d.Source, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert deck %q: %w", d.Name, err)
	}
	return nil
}

// GetDeck loads a deck by id.
func (s *Store) GetDeck(ctx context.Context, tx *sqlx.Tx, id string) (*domain.Deck, error) {
	var row deckRow
	if err := s.get(ctx, tx, &row, `SELECT `+deckColumns+` FROM study_decks WHERE id = ?`, id); err != nil {
		return nil, notFoundOr(err, "deck", id)
	}
	d, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindDeckByName returns the user's deck called name, or nil.
func (s *Store) FindDeckByName(ctx context.Context, tx *sqlx.Tx, userID, name string) (*domain.Deck, error) {
	var row deckRow
	err := s.get(ctx, tx, &row, `SELECT `+deckColumns+` FROM study_decks WHERE user_id = ? AND name = ?`, userID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find deck %q: %w", name, err)
	}
	d, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDecks returns the user's decks ordered by name. An empty userID lists every deck.
func (s *Store) ListDecks(ctx context.Context, tx *sqlx.Tx, userID string) ([]domain.Deck, error) {
	var rows []deckRow
	var err error
	if userID == "" {
		err = s.selectAll(ctx, tx, &rows, `SELECT `+deckColumns+` FROM study_decks ORDER BY name, id`)
	} else {
		err = s.selectAll(ctx, tx, &rows, `SELECT `+deckColumns+` FROM study_decks WHERE user_id = ? ORDER BY name, id`, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	decks := make([]domain.Deck, 0, len(rows))
	for _, r := range rows {
		d, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, nil
}

// SetDeckSource records where a deck is imported from.
func (s *Store) SetDeckSource(ctx context.Context, tx *sqlx.Tx, deckID, source string) error {
	res, err := s.exec(ctx, tx, `UPDATE study_decks SET source = ? WHERE id = ?`, source, deckID)
	if err != nil {
		return fmt.Errorf("failed to update source of deck %s: %w", deckID, err)
	}
	return expectOne(res, "deck", deckID)
}

// DeleteDeck removes a deck; its flashcards and their review history cascade.
func (s *Store) DeleteDeck(ctx context.Context, tx *sqlx.Tx, deckID string) error {
	res, err := s.exec(ctx, tx, `DELETE FROM study_decks WHERE id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", deckID, err)
	}
	return expectOne(res, "deck", deckID)
}
