package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/coopsoc/lending-engine/internal/domain"
	customError "github.com/coopsoc/lending-engine/pkg/errors"
)

// MemberRepository reads and writes the member document. A document
// that fails to parse is treated as empty rather than propagated: the
// UI stays available and the next successful mutation overwrites the
// corrupted document. That tradeoff is intentional and mirrors the
// original store's tolerance of a bad payload.
type MemberRepository struct {
	store DocumentStore
	key   string
}

func NewMemberRepository(store DocumentStore, key string) *MemberRepository {
	return &MemberRepository{store: store, key: key}
}

// Load returns the current member list. A missing key is an empty
// list; a malformed document degrades to an empty list with a log
// line. Only transport-level store failures are returned as errors.
func (r *MemberRepository) Load(ctx context.Context) ([]domain.Member, error) {
	doc, err := r.store.Get(ctx, r.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []domain.Member{}, nil
	}
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}

	members, err := DecodeMembers(doc)
	if err != nil {
		log.Printf("%v; continuing with empty member list", customError.WrapMalformedStore(r.key, err))
		return []domain.Member{}, nil
	}
	return members, nil
}

// Save replaces the member document. This is the single commit point
// for every mutation: there is no partial-write state readers can see.
func (r *MemberRepository) Save(ctx context.Context, members []domain.Member) error {
	doc, err := json.Marshal(members)
	if err != nil {
		return customError.WrapStoreError(err)
	}
	if err := r.store.Put(ctx, r.key, doc); err != nil {
		return customError.WrapStoreError(err)
	}
	return nil
}

// DecodeMembers parses a member document. Exposed for tests and for
// the scheduler, which reads the same document.
func DecodeMembers(doc []byte) ([]domain.Member, error) {
	if len(doc) == 0 {
		return []domain.Member{}, nil
	}

	var members []domain.Member
	if err := json.Unmarshal(doc, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []domain.Member{}
	}
	return members, nil
}
