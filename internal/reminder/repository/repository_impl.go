package repository

import (
	"context"

	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/reminder/domain"
)

const reminderKeyPrefix = "reminder:"

type repo struct {
	store kv.Store
}

func Provide(store kv.Store) domain.Repository {
	return &repo{store: store}
}

func (r *repo) Insert(ctx context.Context, reminder *domain.Reminder) error {
	return r.store.Set(ctx, reminderKeyPrefix+reminder.ID, reminder)
}

func (r *repo) List(ctx context.Context) ([]domain.Reminder, error) {
	entries, err := r.store.GetByPrefix(ctx, reminderKeyPrefix)
	if err != nil {
		return nil, err
	}
	reminders := make([]domain.Reminder, 0, len(entries))
	for _, e := range entries {
		var reminder domain.Reminder
		if err := kv.Decode(e.Value, &reminder); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, nil
}
