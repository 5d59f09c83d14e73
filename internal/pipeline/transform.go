package pipeline

import "regexp"

// Transform rewrites a word into a synthetic word via search/replace,
// co-counted alongside the original (§4.3). wfilter, wsearch, and wreplace
// are required together; Transform assumes all three are already present.
type Transform struct {
	filter  *regexp.Regexp
	search  *regexp.Regexp
	replace string
}

// NewTransform compiles wfilter and wsearch. Bad regexes are a
// configuration-invalid error, reported before any pass runs.
func NewTransform(filterExpr, searchExpr, replace string) (*Transform, error) {
	filter, err := regexp.Compile(filterExpr)
	if err != nil {
		return nil, err
	}
	search, err := regexp.Compile(searchExpr)
	if err != nil {
		return nil, err
	}
	return &Transform{filter: filter, search: search, replace: replace}, nil
}

// Apply produces w's synthetic word, if wfilter and wsearch both match w.
// ok is false when either fails to match, meaning w has no synthetic form.
func (t *Transform) Apply(w string) (synthetic string, ok bool) {
	if !t.filter.MatchString(w) || !t.search.MatchString(w) {
		return "", false
	}
	cur := w
	for {
		loc := t.search.FindStringIndex(cur)
		if loc == nil {
			break
		}
		if cur[loc[0]:loc[1]] == t.replace {
			// Endless-loop guard: the source span already equals the
			// replacement, so further substitution would never terminate.
			break
		}
		cur = cur[:loc[0]] + t.replace + cur[loc[1]:]
	}
	return cur, true
}
