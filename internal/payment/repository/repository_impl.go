package repository

import (
	"context"

	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/payment/domain"
)

const paymentKeyPrefix = "payment:"

type repo struct {
	store kv.Store
}

func Provide(store kv.Store) domain.Repository {
	return &repo{store: store}
}

func (r *repo) Insert(ctx context.Context, p *domain.Payment) error {
	return r.store.Set(ctx, paymentKeyPrefix+p.ID, p)
}

func (r *repo) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	raw, ok, err := r.store.Get(ctx, paymentKeyPrefix+id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var p domain.Payment
	if err := kv.Decode(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context) ([]domain.Payment, error) {
	entries, err := r.store.GetByPrefix(ctx, paymentKeyPrefix)
	if err != nil {
		return nil, err
	}
	payments := make([]domain.Payment, 0, len(entries))
	for _, e := range entries {
		var p domain.Payment
		if err := kv.Decode(e.Value, &p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}
