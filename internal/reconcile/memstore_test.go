package reconcile

import (
	"context"
	"errors"
	"maps"
	"time"
)

type memEntry struct {
	id    uint64
	key   Key
	day   time.Time
	delta int64
}

// memStore 内存账本，Transaction 失败时整体回滚
type memStore struct {
	entries map[uint64]memEntry
	nextID  uint64

	failInsert    error
	failIncrement error
	// duplicateOnce 第一次 Insert 时模拟并发插入：先写入一条记录再返回 ErrConflict
	duplicateOnce *int64
	committed     []memEntry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[uint64]memEntry)}
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	snapshot := maps.Clone(s.entries)
	if err := fn(s); err != nil {
		s.entries = snapshot
		// 并发事务的写入已提交，不随本事务回滚
		for _, e := range s.committed {
			s.entries[e.id] = e
		}
		s.committed = nil
		return err
	}
	return nil
}

func (s *memStore) Total(_ context.Context, key Key) (int64, error) {
	var total int64
	for _, e := range s.entries {
		if e.key == key {
			total += e.delta
		}
	}
	return total, nil
}

func (s *memStore) DayEntry(_ context.Context, key Key, day time.Time) (uint64, bool, error) {
	for _, e := range s.entries {
		if e.key == key && e.day.Equal(day) {
			return e.id, true, nil
		}
	}
	return 0, false, nil
}

func (s *memStore) Increment(_ context.Context, _ Key, id uint64, delta int64, _ time.Time) error {
	if s.failIncrement != nil {
		return s.failIncrement
	}
	e, ok := s.entries[id]
	if !ok {
		return errors.New("entry not found")
	}
	e.delta += delta
	s.entries[id] = e
	return nil
}

func (s *memStore) Insert(_ context.Context, key Key, day time.Time, delta int64, _ time.Time) error {
	if s.failInsert != nil {
		return s.failInsert
	}
	if s.duplicateOnce != nil {
		racer := *s.duplicateOnce
		s.duplicateOnce = nil
		s.nextID++
		s.committed = append(s.committed, memEntry{id: s.nextID, key: key, day: day, delta: racer})
		return ErrConflict
	}
	for _, e := range s.entries {
		if e.key == key && e.day.Equal(day) {
			return ErrConflict
		}
	}
	s.nextID++
	s.entries[s.nextID] = memEntry{id: s.nextID, key: key, day: day, delta: delta}
	return nil
}

func (s *memStore) rows(key Key) []memEntry {
	out := make([]memEntry, 0)
	for _, e := range s.entries {
		if e.key == key {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) deltaOn(key Key, day time.Time) (int64, bool) {
	for _, e := range s.entries {
		if e.key == key && e.day.Equal(day) {
			return e.delta, true
		}
	}
	return 0, false
}
