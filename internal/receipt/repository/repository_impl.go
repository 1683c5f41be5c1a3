package repository

import (
	"context"

	"github.com/chikoro/feeledger/internal/kv"
	"github.com/chikoro/feeledger/internal/receipt/domain"
)

const receiptKeyPrefix = "receipt:"

type repo struct {
	store kv.Store
}

func Provide(store kv.Store) domain.Repository {
	return &repo{store: store}
}

func (r *repo) Insert(ctx context.Context, receipt *domain.Receipt) error {
	return r.store.Set(ctx, receiptKeyPrefix+receipt.ID, receipt)
}

func (r *repo) FindByID(ctx context.Context, id string) (*domain.Receipt, error) {
	raw, ok, err := r.store.Get(ctx, receiptKeyPrefix+id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var receipt domain.Receipt
	if err := kv.Decode(raw, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repo) List(ctx context.Context) ([]domain.Receipt, error) {
	entries, err := r.store.GetByPrefix(ctx, receiptKeyPrefix)
	if err != nil {
		return nil, err
	}
	receipts := make([]domain.Receipt, 0, len(entries))
	for _, e := range entries {
		var receipt domain.Receipt
		if err := kv.Decode(e.Value, &receipt); err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}
