package domain

import (
	"errors"
	"fmt"
)

// ParentKind names the kind of entity a topic or deck hangs off.
type ParentKind string

const (
	ParentSubject ParentKind = "SUBJECT"
	ParentBook    ParentKind = "BOOK"
	ParentCourse  ParentKind = "COURSE_ONLINE"
	ParentProject ParentKind = "PROJECT"
)

// Parent is a closed sum over SubjectRef, BookRef, CourseRef and ProjectRef.
type Parent interface {
	Kind() ParentKind
	RefID() string
	isParent()
}

type SubjectRef struct{ SubjectID string }
type BookRef struct{ BookID string }
type CourseRef struct{ CourseID string }
type ProjectRef struct{ ProjectID string }

func (r SubjectRef) Kind() ParentKind { return ParentSubject }
func (r SubjectRef) RefID() string    { return r.SubjectID }
func (SubjectRef) isParent()          {}

func (r BookRef) Kind() ParentKind { return ParentBook }
func (r BookRef) RefID() string    { return r.BookID }
func (BookRef) isParent()          {}

func (r CourseRef) Kind() ParentKind { return ParentCourse }
func (r CourseRef) RefID() string    { return r.CourseID }
func (CourseRef) isParent()          {}

func (r ProjectRef) Kind() ParentKind { return ParentProject }
func (r ProjectRef) RefID() string    { return r.ProjectID }
func (ProjectRef) isParent()          {}

var ErrUnknownParentKind = errors.New("unknown parent kind")

var parentConstructors = map[ParentKind]func(id string) Parent{
	ParentSubject: func(id string) Parent { return SubjectRef{SubjectID: id} },
	ParentBook:    func(id string) Parent { return BookRef{BookID: id} },
	ParentCourse:  func(id string) Parent { return CourseRef{CourseID: id} },
	ParentProject: func(id string) Parent { return ProjectRef{ProjectID: id} },
}

// NewParent builds the typed reference for kind. An empty kind and id yields a nil Parent.
func NewParent(kind ParentKind, id string) (Parent, error) {
	if kind == "" && id == "" {
		return nil, nil
	}
	ctor, ok := parentConstructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParentKind, kind)
	}
	if id == "" {
		return nil, fmt.Errorf("parent %s requires an id", kind)
	}
	return ctor(id), nil
}

// ParentColumns flattens p into its (kind, id) storage form.
func ParentColumns(p Parent) (kind *string, id *string) {
	if p == nil {
		return nil, nil
	}
	k, i := string(p.Kind()), p.RefID()
	return &k, &i
}

// ParentKinds lists every known kind.
func ParentKinds() []ParentKind {
	return []ParentKind{ParentSubject, ParentBook, ParentCourse, ParentProject}
}

// SameParent reports whether a and b reference the same entity.
func SameParent(a, b Parent) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.RefID() == b.RefID()
}
