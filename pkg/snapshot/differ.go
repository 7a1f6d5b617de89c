package snapshot

import "sort"

// Set is the set of records currently considered active
type Set struct {
	records map[string]Record
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{records: make(map[string]Record)}
}

// Len returns the number of records in the set
func (s *Set) Len() int {
	return len(s.records)
}

// Contains reports whether a record with the same tokens is present
func (s *Set) Contains(r Record) bool {
	_, ok := s.records[r.Key()]
	return ok
}

// Add inserts the record. It reports false if it was already present.
func (s *Set) Add(r Record) bool {
	key := r.Key()
	if _, ok := s.records[key]; ok {
		return false
	}
	s.records[key] = r
	return true
}

// Remove evicts the record. It reports false if it was not present.
func (s *Set) Remove(r Record) bool {
	key := r.Key()
	if _, ok := s.records[key]; !ok {
		return false
	}
	delete(s.records, key)
	return true
}

// Records returns the members sorted by line
func (s *Set) Records() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sortRecords(out)
	return out
}

// Diff is the outcome of applying one snapshot
type Diff struct {
	// Header is set only the first time a header is seen
	Header  string
	Added   []Record
	Removed []Record
}

// Empty reports whether the diff carries nothing to report
func (d Diff) Empty() bool {
	return d.Header == "" && len(d.Added) == 0 && len(d.Removed) == 0
}

// Differ compares consecutive snapshots against the retained set.
// It is not safe for concurrent use.
type Differ struct {
	retained   *Set
	headerSeen bool
}

// NewDiffer creates a differ with an empty retained set
func NewDiffer() *Differ {
	return &Differ{retained: NewSet()}
}

// Apply folds a snapshot into the retained set and returns what changed.
// After Apply the retained set equals the records of snap.
func (d *Differ) Apply(snap Snapshot) Diff {
	var diff Diff

	if !d.headerSeen && snap.Header != "" {
		d.headerSeen = true
		diff.Header = snap.Header
	}

	current := make(map[string]struct{}, len(snap.Records))
	for _, rec := range snap.Records {
		current[rec.Key()] = struct{}{}
		if d.retained.Add(rec) {
			diff.Added = append(diff.Added, rec)
		}
	}

	for key, rec := range d.retained.records {
		if _, ok := current[key]; ok {
			continue
		}
		delete(d.retained.records, key)
		diff.Removed = append(diff.Removed, rec)
	}
	sortRecords(diff.Removed)

	return diff
}

// Retained returns the currently retained records sorted by line
func (d *Differ) Retained() []Record {
	return d.retained.Records()
}

// Len returns the size of the retained set
func (d *Differ) Len() int {
	return d.retained.Len()
}

func sortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Line < rs[j].Line
	})
}
