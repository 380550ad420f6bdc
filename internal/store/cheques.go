package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/coopsoc/lending-engine/internal/domain"
	customError "github.com/coopsoc/lending-engine/pkg/errors"
)

// ChequeRepository reads and writes the cheque log document. Same
// fail-soft policy as the member document.
type ChequeRepository struct {
	store DocumentStore
	key   string
}

func NewChequeRepository(store DocumentStore, key string) *ChequeRepository {
	return &ChequeRepository{store: store, key: key}
}

func (r *ChequeRepository) Load(ctx context.Context) ([]domain.Cheque, error) {
	doc, err := r.store.Get(ctx, r.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []domain.Cheque{}, nil
	}
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}

	var cheques []domain.Cheque
	if err := json.Unmarshal(doc, &cheques); err != nil {
		log.Printf("%v; continuing with empty cheque log", customError.WrapMalformedStore(r.key, err))
		return []domain.Cheque{}, nil
	}
	if cheques == nil {
		cheques = []domain.Cheque{}
	}
	return cheques, nil
}

func (r *ChequeRepository) Save(ctx context.Context, cheques []domain.Cheque) error {
	doc, err := json.Marshal(cheques)
	if err != nil {
		return customError.WrapStoreError(err)
	}
	if err := r.store.Put(ctx, r.key, doc); err != nil {
		return customError.WrapStoreError(err)
	}
	return nil
}
