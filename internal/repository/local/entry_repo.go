package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/sleep-keeper/internal/errs"
	"github.com/and161185/sleep-keeper/internal/model"
)

const entriesKey = "sleep_entries"

// EntriesKey returns the kv key holding the entry collection of userID.
// The device collection (uuid.Nil) uses the bare key.
func EntriesKey(userID uuid.UUID) string {
	return scopedKey(entriesKey, userID)
}

func scopedKey(base string, userID uuid.UUID) string {
	if userID == uuid.Nil {
		return base
	}
	return base + "/" + userID.String()
}

// EntryRepo implements EntryRepository on top of Store. The collection of one
// scope is read and rewritten as a whole on every mutation.
type EntryRepo struct{ store *Store }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(s *Store) *EntryRepo { return &EntryRepo{store: s} }

// List returns all entries of the scope in stored order.
func (r *EntryRepo) List(ctx context.Context, userID uuid.UUID) ([]model.SleepEntry, error) {
	data, err := r.store.Get(ctx, EntriesKey(userID))
	if errors.Is(err, errs.ErrNotFound) {
		return []model.SleepEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEntries(data)
}

// Insert appends a new entry.
func (r *EntryRepo) Insert(ctx context.Context, e *model.SleepEntry) (*model.SleepEntry, error) {
	stored := e.Clone()
	err := r.store.Update(ctx, EntriesKey(e.UserID), func(cur []byte) ([]byte, error) {
		list, err := decodeEntries(cur)
		if err != nil {
			return nil, err
		}
		if indexOf(list, e.ID) >= 0 {
			return nil, errs.ErrAlreadyExists
		}
		return json.Marshal(append(list, stored))
	})
	if err != nil {
		return nil, err
	}
	out := stored.Clone()
	return &out, nil
}

// Replace overwrites the editable fields of an existing entry; CreatedAt is kept.
func (r *EntryRepo) Replace(ctx context.Context, e *model.SleepEntry) (*model.SleepEntry, error) {
	var stored model.SleepEntry
	err := r.store.Update(ctx, EntriesKey(e.UserID), func(cur []byte) ([]byte, error) {
		list, err := decodeEntries(cur)
		if err != nil {
			return nil, err
		}
		i := indexOf(list, e.ID)
		if i < 0 {
			return nil, errs.ErrNotFound
		}
		stored = e.Clone()
		stored.CreatedAt = list[i].CreatedAt
		list[i] = stored
		return json.Marshal(list)
	})
	if err != nil {
		return nil, err
	}
	out := stored.Clone()
	return &out, nil
}

// Delete removes a single entry of the scope.
func (r *EntryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.store.Update(ctx, EntriesKey(userID), func(cur []byte) ([]byte, error) {
		list, err := decodeEntries(cur)
		if err != nil {
			return nil, err
		}
		i := indexOf(list, id)
		if i < 0 {
			return nil, errs.ErrNotFound
		}
		return json.Marshal(slices.Delete(list, i, i+1))
	})
}

// DeleteAll drops the whole collection of the scope.
func (r *EntryRepo) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return r.store.Delete(ctx, EntriesKey(userID))
}

func decodeEntries(data []byte) ([]model.SleepEntry, error) {
	list := []model.SleepEntry{}
	if len(data) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", entriesKey, err)
	}
	return list, nil
}

func indexOf(list []model.SleepEntry, id uuid.UUID) int {
	return slices.IndexFunc(list, func(e model.SleepEntry) bool { return e.ID == id })
}
