package repository

import (
	"context"
	"fmt"

	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/student/domain"
)

const (
	studentKeyPrefix = "student:"
	linkKeyPrefix    = "student_parent:"
)

type repo struct {
	store kv.Store
}

func Provide(store kv.Store) domain.Repository {
	return &repo{store: store}
}

func (r *repo) Insert(ctx context.Context, s *domain.Student) error {
	return r.store.Set(ctx, studentKeyPrefix+s.ID, s)
}

// Save overwrites the whole record; the store has no partial writes.
func (r *repo) Save(ctx context.Context, s *domain.Student) error {
	return r.store.Set(ctx, studentKeyPrefix+s.ID, s)
}

func (r *repo) FindByID(ctx context.Context, id string) (*domain.Student, error) {
	raw, ok, err := r.store.Get(ctx, studentKeyPrefix+id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var s domain.Student
	if err := kv.Decode(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) List(ctx context.Context) ([]domain.Student, error) {
	entries, err := r.store.GetByPrefix(ctx, studentKeyPrefix)
	if err != nil {
		return nil, err
	}
	students := make([]domain.Student, 0, len(entries))
	for _, e := range entries {
		var s domain.Student
		if err := kv.Decode(e.Value, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

func linkKey(parentID, studentID string) string {
	return fmt.Sprintf("%s%s:%s", linkKeyPrefix, parentID, studentID)
}

func (r *repo) LinkParent(ctx context.Context, link domain.ParentLink) error {
	return r.store.Set(ctx, linkKey(link.ParentID, link.StudentID), link)
}

func (r *repo) IsLinked(ctx context.Context, parentID, studentID string) (bool, error) {
	_, ok, err := r.store.Get(ctx, linkKey(parentID, studentID))
	return ok, err
}

func (r *repo) ListLinkedIDs(ctx context.Context, parentID string) ([]string, error) {
	entries, err := r.store.GetByPrefix(ctx, linkKeyPrefix+parentID+":")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		var link domain.ParentLink
		if err := kv.Decode(e.Value, &link); err != nil {
			return nil, err
		}
		ids = append(ids, link.StudentID)
	}
	return ids, nil
}
