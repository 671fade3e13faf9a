package domain

// CategoryQueries is a named group of candidate queries.
type CategoryQueries struct {
	Name    string
	Queries []string
}

// QueryPool holds the candidate queries for every session.
type QueryPool struct {
	// Sessions maps a session name to its candidate queries.
	Sessions map[string][]string

	// Categories are topic groups in a fixed order. Unknown sessions draw a
	// merged pool from them.
	Categories []CategoryQueries
}

// Candidates returns the candidate queries for a session and whether the
// session name was known. Unknown names get the categories merged in order,
// without duplicates, capped at fallbackCap (no cap when fallbackCap <= 0).
func (p QueryPool) Candidates(session string, fallbackCap int) ([]string, bool) {
	if queries, ok := p.Sessions[session]; ok {
		out := make([]string, len(queries))
		copy(out, queries)
		return out, true
	}

	seen := make(map[string]struct{})
	var merged []string
	for _, cat := range p.Categories {
		for _, q := range cat.Queries {
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			merged = append(merged, q)
			if fallbackCap > 0 && len(merged) == fallbackCap {
				return merged, false
			}
		}
	}
	return merged, false
}

// Size returns the number of queries across sessions and categories.
func (p QueryPool) Size() int {
	n := 0
	for _, qs := range p.Sessions {
		n += len(qs)
	}
	for _, c := range p.Categories {
		n += len(c.Queries)
	}
	return n
}
