package bulk

import "github.com/harrison/bulkcomplete/internal/models"

// idSet is an insertion-ordered set of assessment ids.
type idSet struct {
	order []int64
	index map[int64]struct{}
}

func newIDSet() *idSet {
	return &idSet{index: map[int64]struct{}{}}
}

func (s *idSet) Add(id int64) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *idSet) Delete(id int64) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *idSet) Has(id int64) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) Len() int {
	return len(s.order)
}

// IDs returns the ids in insertion order. The result is never nil.
func (s *idSet) IDs() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

// EditEntry collects the latest snapshot of every edited attribute of one assessment.
type EditEntry struct {
	AssessmentID int64
	Slug         string
	order        []int
	attributes   map[int]models.Attribute
}

// Attributes returns the edited attribute snapshots in first-edit order.
func (e *EditEntry) Attributes() []models.Attribute {
	out := make([]models.Attribute, 0, len(e.order))
	for _, idx := range e.order {
		out = append(out, e.attributes[idx].Clone())
	}
	return out
}

func (e *EditEntry) set(index int, attr models.Attribute) {
	if _, ok := e.attributes[index]; !ok {
		e.order = append(e.order, index)
	}
	e.attributes[index] = attr.Clone()
}

// editMap is an insertion-ordered map of assessment id to its edits.
type editMap struct {
	order   []int64
	entries map[int64]*EditEntry
}

func newEditMap() *editMap {
	return &editMap{entries: map[int64]*EditEntry{}}
}

// Ensure returns the entry for id, creating an empty one when missing.
func (m *editMap) Ensure(id int64, slug string) *EditEntry {
	if e, ok := m.entries[id]; ok {
		return e
	}
	e := &EditEntry{
		AssessmentID: id,
		Slug:         slug,
		attributes:   map[int]models.Attribute{},
	}
	m.entries[id] = e
	m.order = append(m.order, id)
	return e
}

// Record stores the latest snapshot of the attribute at index. The last change wins.
func (m *editMap) Record(id int64, slug string, index int, attr models.Attribute) {
	m.Ensure(id, slug).set(index, attr)
}

func (m *editMap) Len() int {
	return len(m.order)
}

// Entries returns the entries in insertion order.
func (m *editMap) Entries() []*EditEntry {
	out := make([]*EditEntry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out
}
