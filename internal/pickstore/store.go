// Package pickstore keeps the local "picked" bookmark sets: plain arrays of
// ids stored per key in a single JSON file on disk.
package pickstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	KeyProjects   = "pickedProjects"
	KeyDevelopers = "pickedDevelopers"
)

// Store is safe for use by one process. Nothing ties stored ids to live
// records, so callers should resolve them against fresh lists with Select.
type Store struct {
	path string
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("pick store dir: %w", err)
	}
	return &Store{path: path}, nil
}

// List returns the ids under key. Missing or unreadable entries are empty.
func (s *Store) List(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return decodeIDs(data[key]), nil
}

func (s *Store) Has(key, id string) (bool, error) {
	ids, err := s.List(key)
	if err != nil {
		return false, err
	}
	return indexOf(ids, id) >= 0, nil
}

// Add appends id when absent. It reports whether the set changed.
func (s *Store) Add(key, id string) (bool, error) {
	return s.update(key, func(ids []string) []string {
		if indexOf(ids, id) >= 0 {
			return ids
		}
		return append(ids, id)
	})
}

// Remove drops id and keeps every other entry in place.
func (s *Store) Remove(key, id string) (bool, error) {
	return s.update(key, func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, v := range ids {
			if v != id {
				out = append(out, v)
			}
		}
		return out
	})
}

// Prune keeps only ids present in live and returns how many were dropped.
func (s *Store) Prune(key string, live []string) (int, error) {
	keep := make(map[string]struct{}, len(live))
	for _, id := range live {
		keep[id] = struct{}{}
	}
	dropped := 0
	_, err := s.update(key, func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, v := range ids {
			if _, ok := keep[v]; ok {
				out = append(out, v)
			} else {
				dropped++
			}
		}
		return out
	})
	return dropped, err
}

func (s *Store) update(key string, fn func([]string) []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}

	before := decodeIDs(data[key])
	after := fn(append([]string(nil), before...))
	if equal(before, after) {
		return false, nil
	}

	raw, err := json.Marshal(after)
	if err != nil {
		return false, err
	}
	data[key] = raw
	if err := s.save(data); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pick store: %w", err)
	}

	data := map[string]json.RawMessage{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &data); err != nil {
			// a corrupt file behaves like empty storage
			return map[string]json.RawMessage{}, nil
		}
	}
	return data, nil
}

func (s *Store) save(data map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".picks-*")
	if err != nil {
		return fmt.Errorf("write pick store: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write pick store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write pick store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write pick store: %w", err)
	}
	return nil
}

func decodeIDs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil || ids == nil {
		return []string{}
	}
	return ids
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Select returns the items whose id is picked, in the order of items.
// Picked ids with no matching item are skipped.
func Select[T any](items []T, picked []string, idOf func(T) string) []T {
	set := make(map[string]struct{}, len(picked))
	for _, id := range picked {
		set[id] = struct{}{}
	}
	out := make([]T, 0, len(picked))
	for _, it := range items {
		if _, ok := set[idOf(it)]; ok {
			out = append(out, it)
		}
	}
	return out
}
