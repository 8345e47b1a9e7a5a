package internal

import "strings"

// Store is the ordered, in-memory collection of records. Insertion order is
// display order and ids are unique at all times. Store is not safe for
// concurrent use; it is owned by App, which is driven by one event loop.
type Store struct {
	records []Record
}

// NewStore returns a store holding records (re-validated as by ReplaceAll).
func NewStore(records []Record) *Store {
	s := &Store{}
	s.ReplaceAll(records)
	return s
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of all records in display order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	i := s.index(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i], true
}

// Resolve maps a full id or a unique id prefix to the full id.
func (s *Store) Resolve(idOrPrefix string) (string, bool) {
	if idOrPrefix == "" {
		return "", false
	}
	if s.index(idOrPrefix) >= 0 {
		return idOrPrefix, true
	}
	match := ""
	for _, r := range s.records {
		if strings.HasPrefix(r.ID, idOrPrefix) {
			if match != "" {
				return "", false
			}
			match = r.ID
		}
	}
	return match, match != ""
}

func (s *Store) index(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends r with a freshly generated id and returns that id. Any id on
// r is ignored.
func (s *Store) Add(r Record) string {
	r.ID = s.freshID()
	r.normalize()
	s.records = append(s.records, r)
	return r.ID
}

// Update sets one field of the record with the given id. A missing id is a
// no-op and reports false.
func (s *Store) Update(id string, f Field, value string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.records[i].set(f, value)
	return true
}

// Remove deletes the record with the given id if present.
func (s *Store) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return true
}

// Duplicate inserts a copy of the record with the given id directly after
// it. The copy gets a new id and " (copy)" appended to its name.
func (s *Store) Duplicate(id string) (string, bool) {
	i := s.index(id)
	if i < 0 {
		return "", false
	}
	dup := s.records[i]
	dup.ID = s.freshID()
	dup.Name += " (copy)"

	s.records = append(s.records, Record{})
	copy(s.records[i+2:], s.records[i+1:])
	s.records[i+1] = dup
	return dup.ID, true
}

// ReplaceAll swaps the whole collection for records. Records are
// normalized, and empty or repeated ids are replaced with fresh ones so the
// uniqueness invariant survives hand-edited imports.
func (s *Store) ReplaceAll(records []Record) {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		r.normalize()
		if r.ID == "" || seen[r.ID] {
			r.ID = NewID()
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	s.records = out
}

// Clear removes every record.
func (s *Store) Clear() {
	s.records = nil
}

func (s *Store) freshID() string {
	for {
		id := NewID()
		if s.index(id) < 0 {
			return id
		}
	}
}
