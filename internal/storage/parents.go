package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
)

// parentTables dispatches each parent kind to the table holding its rows.
var parentTables = map[domain.ParentKind]string{
	domain.ParentSubject: "study_subjects",
	domain.ParentBook:    "study_books",
	domain.ParentCourse:  "study_courses",
	domain.ParentProject: "study_projects",
}

func parentTable(kind domain.ParentKind) (string, error) {
	table, ok := parentTables[kind]
	if !ok {
		return "", apperr.Validation("parent_type", fmt.Errorf("%w: %q", domain.ErrUnknownParentKind, kind))
	}
	return table, nil
}

// CreateParent stores a subject, book, course or project and returns its typed reference.
func (s *Store) CreateParent(ctx context.Context, tx *sqlx.Tx, kind domain.ParentKind, userID, name string) (domain.Parent, error) {
	table, err := parentTable(kind)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err = s.exec(ctx, tx,
		`INSERT INTO `+table+` (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, name, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s %q: %w", kind, name, err)
	}
	return domain.NewParent(kind, id)
}

// ResolveParent returns the name of the entity p points at. Entities owned by another
// user are reported as not found.
func (s *Store) ResolveParent(ctx context.Context, tx *sqlx.Tx, userID string, p domain.Parent) (string, error) {
	table, err := parentTable(p.Kind())
	if err != nil {
		return "", err
	}
	var name string
	if err := s.get(ctx, tx, &name, `SELECT name FROM `+table+` WHERE id = ? AND user_id = ?`, p.RefID(), userID); err != nil {
		return "", notFoundOr(err, string(p.Kind()), p.RefID())
	}
	return name, nil
}

func parentFromColumns(kind, id *string) (domain.Parent, error) {
	if kind == nil || id == nil {
		return nil, nil
	}
	p, err := domain.NewParent(domain.ParentKind(*kind), *id)
	if err != nil {
		return nil, fmt.Errorf("corrupt parent reference %s/%s: %w", *kind, *id, err)
	}
	return p, nil
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
