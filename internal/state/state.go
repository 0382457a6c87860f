// Package state persists the identifiers each source has already
// delivered (or deliberately skipped) so restarts do not re-send them.
package state

// MaxIDsPerSource bounds each source's seen list; the oldest ids are
// evicted first.
const MaxIDsPerSource = 1000

// SeenState maps a source state key to its seen identifiers, oldest first.
type SeenState map[string][]string

// Has reports whether key has ever been recorded. A source without an
// entry has never been polled successfully.
func (s SeenState) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Set returns the seen identifiers for key as a lookup set.
func (s SeenState) Set(key string) map[string]struct{} {
	ids := s[key]
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Append records ids for key and trims the list to MaxIDsPerSource.
// Calling it with no ids still creates the entry.
func (s SeenState) Append(key string, ids ...string) {
	list := append(s[key], ids...)
	if len(list) > MaxIDsPerSource {
		list = append([]string(nil), list[len(list)-MaxIDsPerSource:]...)
	}
	if list == nil {
		list = []string{}
	}
	s[key] = list
}

// Len returns the number of ids recorded for key.
func (s SeenState) Len(key string) int { return len(s[key]) }
