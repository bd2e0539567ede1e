// search/search.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package search implements Atlas's free-text searcher: a case-insensitive,
// token-indexed lookup across every navaid, airport, fix, and airway that
// returns results sorted by distance from a moving centre-of-interest, with
// bounded work per call so a UI can drive it incrementally.
package search

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/atlasfg/atlas/geo"
)

// Searchable is anything the searcher can index and rank: a navaid, fix,
// airport, or airway segment. Tokens returns the case-folded words the
// entity should match against (including its type tag, e.g. "VOR:");
// AsString returns its user-facing representation; Cart returns its ECEF
// position for distance-based ranking. Cart is named distinctly from
// culler.Object's Location (which returns geo.LatLon for grid bucketing)
// so a single entity type can implement both interfaces.
type Searchable interface {
	Tokens() []string
	AsString() string
	Cart() geo.Vec3
}

// Searcher holds every indexed Searchable and answers incremental,
// distance-sorted queries against them.
type Searcher struct {
	all []Searchable

	// tokens maps a lower-cased token to every Searchable that carries
	// it, kept sorted by token so a seed token can be located with a
	// binary search and scanned as a contiguous range (the Go analogue
	// of a multimap with a case-free comparator).
	tokens []tokenEntry

	// Incremental query state (spec §4.3 / §9 "incremental search
	// resumption"): the query string, the distance-sort comparator's
	// centre, the accumulated result set, and the cursor into tokens
	// where the seed-token scan left off.
	lastQuery  string
	centre     geo.Vec3
	haveCentre bool
	results    []Searchable
	cursor     int
}

type tokenEntry struct {
	token string
	owner Searchable
}

// New returns an empty Searcher.
func New() *Searcher {
	return &Searcher{}
}

// Add indexes s: every token it reports is inserted into the token
// multimap. The token list is kept sorted, so Add is O(n log n) over
// the final size if entities are added one at a time; callers loading a
// whole database should prefer AddAll, which sorts once.
func (s *Searcher) Add(e Searchable) {
	s.all = append(s.all, e)
	for _, tok := range e.Tokens() {
		s.tokens = append(s.tokens, tokenEntry{token: strings.ToLower(tok), owner: e})
	}
	sort.Slice(s.tokens, func(i, j int) bool { return s.tokens[i].token < s.tokens[j].token })
	s.invalidate()
}

// AddAll indexes a batch of entities at once, sorting the token table a
// single time rather than after every insertion.
func (s *Searcher) AddAll(entities []Searchable) {
	s.all = append(s.all, entities...)
	for _, e := range entities {
		for _, tok := range e.Tokens() {
			s.tokens = append(s.tokens, tokenEntry{token: strings.ToLower(tok), owner: e})
		}
	}
	sort.Slice(s.tokens, func(i, j int) bool { return s.tokens[i].token < s.tokens[j].token })
	s.invalidate()
}

// invalidate resets incremental-search state; called whenever the index
// is mutated, per spec §4.2's dirty-flag propagation to attached search
// state.
func (s *Searcher) invalidate() {
	s.lastQuery = ""
	s.results = nil
	s.cursor = 0
}

// query splits a search string into complete tokens (every
// whitespace-separated word except possibly the last) and an incomplete
// trailing token (present unless the string ends in whitespace).
type query struct {
	complete   []string
	incomplete string
	hasPartial bool
}

func parseQuery(str string) query {
	endsWithSpace := strings.HasSuffix(str, " ") || strings.HasSuffix(str, "\t")
	fields := strings.Fields(str)

	var q query
	if len(fields) == 0 {
		return q
	}
	if endsWithSpace {
		q.complete = lo.Map(fields, func(f string, _ int) string { return strings.ToLower(f) })
	} else {
		q.complete = lo.Map(fields[:len(fields)-1], func(f string, _ int) string { return strings.ToLower(f) })
		q.incomplete = strings.ToLower(fields[len(fields)-1])
		q.hasPartial = true
	}
	return q
}

// seed picks the token the range scan starts from: the last complete
// token if there is one, else the incomplete token.
func (q query) seed() (tok string, prefixOnly bool, ok bool) {
	if len(q.complete) > 0 {
		return q.complete[len(q.complete)-1], false, true
	}
	if q.hasPartial {
		return q.incomplete, true, true
	}
	return "", false, false
}

// FindMatches tokenises str and scans the token index for entities
// matching every token, inserting matches into a result set ordered by
// squared distance from centre. If str is textually identical to the
// previous call, the scan resumes from its saved cursor and stops after
// max new matches are added (max <= 0 means unbounded); otherwise the
// search restarts from scratch. If only centre changed since the last
// call, the existing result set is re-sorted without rescanning the
// index. FindMatches returns true if the result set changed.
func (s *Searcher) FindMatches(str string, centre geo.Vec3, max int) bool {
	q := parseQuery(str)
	seed, prefixOnly, ok := q.seed()
	if !ok {
		changed := len(s.results) > 0
		s.lastQuery, s.results, s.cursor = str, nil, 0
		return changed
	}

	centreChanged := !s.haveCentre || centre != s.centre
	s.centre, s.haveCentre = centre, true

	if str == s.lastQuery {
		if centreChanged {
			s.resort()
		}
		return s.resumeScan(q, seed, prefixOnly, max)
	}

	s.lastQuery = str
	s.results = nil
	s.cursor = 0
	return s.resumeScan(q, seed, prefixOnly, max)
}

func (s *Searcher) resort() {
	sort.Slice(s.results, func(i, j int) bool {
		return geo.Distance(s.results[i].Cart(), s.centre) < geo.Distance(s.results[j].Cart(), s.centre)
	})
}

// resumeScan walks s.tokens starting at s.cursor, looking for entries
// whose token equals (complete seed) or is prefixed by (incomplete seed)
// the seed token, testing each candidate against the full query and
// inserting passing entities into the sorted result set. It stops after
// max new matches (if max > 0) or when the token range is exhausted.
func (s *Searcher) resumeScan(q query, seed string, prefixOnly bool, max int) bool {
	added := 0
	changed := false

	start := s.cursor
	if start == 0 {
		start = sort.Search(len(s.tokens), func(i int) bool { return s.tokens[i].token >= seed })
	}

	i := start
	for ; i < len(s.tokens); i++ {
		te := s.tokens[i]
		if prefixOnly {
			if !strings.HasPrefix(te.token, seed) {
				break
			}
		} else if te.token != seed {
			break
		}

		if s.matches(te.owner, q) && !s.alreadyPresent(te.owner) {
			s.insertResult(te.owner)
			changed = true
			added++
			if max > 0 && added >= max {
				i++
				break
			}
		}
	}
	s.cursor = i

	return changed
}

func (s *Searcher) alreadyPresent(e Searchable) bool {
	return lo.ContainsBy(s.results, func(r Searchable) bool { return r == e })
}

func (s *Searcher) insertResult(e Searchable) {
	d := geo.Distance(e.Cart(), s.centre)
	idx := sort.Search(len(s.results), func(i int) bool {
		return geo.Distance(s.results[i].Cart(), s.centre) >= d
	})
	s.results = append(s.results, nil)
	copy(s.results[idx+1:], s.results[idx:])
	s.results[idx] = e
}

// matches reports whether every complete token in q matches exactly some
// token of e, and (if present) the incomplete token prefix-matches some
// token of e.
func (s *Searcher) matches(e Searchable, q query) bool {
	tokens := lo.Map(e.Tokens(), func(t string, _ int) string { return strings.ToLower(t) })

	for _, c := range q.complete {
		if !lo.Contains(tokens, c) {
			return false
		}
	}
	if q.hasPartial {
		if !lo.ContainsBy(tokens, func(t string) bool { return strings.HasPrefix(t, q.incomplete) }) {
			return false
		}
	}
	return true
}

// Results returns the current accumulated, distance-sorted match set.
func (s *Searcher) Results() []Searchable {
	return s.results
}
