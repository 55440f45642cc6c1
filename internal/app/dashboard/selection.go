package dashboard

import "sort"

// Selection is a set of course codes
type Selection struct {
	codes map[string]struct{}
}

// NewSelection returns an empty set
func NewSelection() *Selection {
	return &Selection{codes: make(map[string]struct{})}
}

// Toggle adds code when absent and removes it when present. It returns
// whether code is selected afterwards.
func (s *Selection) Toggle(code string) bool {
	if _, ok := s.codes[code]; ok {
		delete(s.codes, code)
		return false
	}
	s.codes[code] = struct{}{}
	return true
}

func (s *Selection) Has(code string) bool {
	_, ok := s.codes[code]
	return ok
}

func (s *Selection) Len() int {
	return len(s.codes)
}

// Codes returns the selected codes sorted
func (s *Selection) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Reset empties the set
func (s *Selection) Reset() {
	s.codes = make(map[string]struct{})
}
