package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// WidgetRecord is one persisted widget placement within a container.
// Alias is the record's identity key inside its context; ClassName names the
// registered widget type; Configuration is an opaque bag of plain,
// serializable values (never a live widget instance); SortOrder drives
// display ordering and is neither contiguous nor unique.
type WidgetRecord struct {
	Alias         string                 `json:"alias"`
	ClassName     string                 `json:"class"`
	Configuration map[string]interface{} `json:"configuration"`
	SortOrder     int                    `json:"sortOrder"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r *WidgetRecord) Clone() *WidgetRecord {
	out := &WidgetRecord{
		Alias:     r.Alias,
		ClassName: r.ClassName,
		SortOrder: r.SortOrder,
	}
	if r.Configuration != nil {
		out.Configuration = make(map[string]interface{}, len(r.Configuration))
		for k, v := range r.Configuration {
			out.Configuration[k] = v
		}
	}
	return out
}

// recordPayload is the wire value stored under each alias key:
// alias -> {class, configuration, sortOrder}.
type recordPayload struct {
	ClassName     string                 `json:"class"`
	Configuration map[string]interface{} `json:"configuration"`
	SortOrder     int                    `json:"sortOrder"`
}

// RecordSet is the container's value: records addressable by alias, with
// insertion order preserved across JSON round trips. Not safe for concurrent
// use; callers serialize access around the read-modify-write cycle.
type RecordSet struct {
	order   []string
	records map[string]*WidgetRecord
}

// NewRecordSet creates an empty record set.
func NewRecordSet() *RecordSet {
	return &RecordSet{
		records: make(map[string]*WidgetRecord),
	}
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	return len(s.order)
}

// Has reports whether an alias is present.
func (s *RecordSet) Has(alias string) bool {
	_, ok := s.records[alias]
	return ok
}

// Get returns the stored record for alias. The pointer is the live entry;
// callers outside the container package should Clone before handing it out.
func (s *RecordSet) Get(alias string) (*WidgetRecord, bool) {
	rec, ok := s.records[alias]
	return rec, ok
}

// Put inserts a record, or replaces the record at its existing position when
// the alias is already present.
func (s *RecordSet) Put(rec *WidgetRecord) {
	if _, ok := s.records[rec.Alias]; !ok {
		s.order = append(s.order, rec.Alias)
	}
	s.records[rec.Alias] = rec
}

// Delete removes the record for alias, reporting whether it was present.
func (s *RecordSet) Delete(alias string) bool {
	if _, ok := s.records[alias]; !ok {
		return false
	}
	delete(s.records, alias)
	for i, a := range s.order {
		if a == alias {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Aliases returns the aliases in insertion order.
func (s *RecordSet) Aliases() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Records returns the records in insertion order.
func (s *RecordSet) Records() []*WidgetRecord {
	out := make([]*WidgetRecord, 0, len(s.order))
	for _, alias := range s.order {
		out = append(out, s.records[alias])
	}
	return out
}

// Sorted returns the records ascending by SortOrder. The sort is stable, so
// records sharing a SortOrder keep their insertion order.
func (s *RecordSet) Sorted() []*WidgetRecord {
	out := s.Records()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// MaxSortOrder returns the highest SortOrder present, or 0 when empty.
func (s *RecordSet) MaxSortOrder() int {
	max := 0
	for _, rec := range s.records {
		if rec.SortOrder > max {
			max = rec.SortOrder
		}
	}
	return max
}

// Clone returns a deep copy of the set.
func (s *RecordSet) Clone() *RecordSet {
	out := NewRecordSet()
	for _, rec := range s.Records() {
		out.Put(rec.Clone())
	}
	return out
}

// MarshalJSON writes the wire layout: an object mapping alias to
// {class, configuration, sortOrder}, keys in insertion order.
func (s *RecordSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, alias := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(alias)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		rec := s.records[alias]
		val, err := json.Marshal(recordPayload{
			ClassName:     rec.ClassName,
			Configuration: rec.Configuration,
			SortOrder:     rec.SortOrder,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the wire layout, preserving key order via a token walk.
func (s *RecordSet) UnmarshalJSON(data []byte) error {
	s.order = nil
	s.records = make(map[string]*WidgetRecord)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record set: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		alias, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record set: expected alias key, got %v", tok)
		}
		var payload recordPayload
		if err := dec.Decode(&payload); err != nil {
			return fmt.Errorf("record set: decode %q: %w", alias, err)
		}
		s.Put(&WidgetRecord{
			Alias:         alias,
			ClassName:     payload.ClassName,
			Configuration: payload.Configuration,
			SortOrder:     payload.SortOrder,
		})
	}

	// Consume the closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
