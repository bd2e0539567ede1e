// search/search_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package search

import (
	"strings"
	"testing"

	"github.com/atlasfg/atlas/geo"
)

type fakeEntity struct {
	name string
	loc  geo.Vec3
}

func (f *fakeEntity) Tokens() []string {
	return append([]string{"VOR:"}, strings.Fields(f.name)...)
}
func (f *fakeEntity) AsString() string { return "VOR: " + f.name }
func (f *fakeEntity) Cart() geo.Vec3   { return f.loc }

func TestFindMatchesBasic(t *testing.T) {
	s := New()
	sfo := &fakeEntity{name: "SFO SAN FRANCISCO VOR", loc: geo.Vec3{X: 1}}
	oak := &fakeEntity{name: "OAK OAKLAND VOR", loc: geo.Vec3{X: 2}}
	s.AddAll([]Searchable{sfo, oak})

	changed := s.FindMatches("sfo", geo.Vec3{}, 0)
	if !changed {
		t.Fatalf("expected a change on first search")
	}
	results := s.Results()
	if len(results) != 1 || results[0] != Searchable(sfo) {
		t.Fatalf("expected exactly [sfo], got %v", results)
	}
}

func TestFindMatchesWhitespaceOnly(t *testing.T) {
	s := New()
	s.Add(&fakeEntity{name: "FOO", loc: geo.Vec3{}})
	if s.FindMatches("   ", geo.Vec3{}, 0) {
		t.Errorf("whitespace-only query should yield no results/no change")
	}
	if len(s.Results()) != 0 {
		t.Errorf("expected no results for whitespace-only query")
	}
}

func TestFindMatchesIncrementalResume(t *testing.T) {
	s := New()
	var entities []Searchable
	for i := 0; i < 10; i++ {
		entities = append(entities, &fakeEntity{name: "CALIFORNIA" + string(rune('A'+i)), loc: geo.Vec3{X: float64(i)}})
	}
	s.AddAll(entities)

	s.FindMatches("cal", geo.Vec3{}, 2)
	first := len(s.Results())
	if first == 0 {
		t.Fatalf("expected some matches on first incremental call")
	}

	s.FindMatches("cal", geo.Vec3{}, 2)
	second := len(s.Results())
	if second < first {
		t.Errorf("incremental search should never shrink the result set")
	}

	// A trailing space makes "cal" a complete token rather than a
	// prefix; since no entity is named exactly "cal", this should
	// yield a strict subset (here, none) of the prefix search.
	s2 := New()
	s2.AddAll(entities)
	s2.FindMatches("cal ", geo.Vec3{}, 0)
	if len(s2.Results()) != 0 {
		t.Errorf("expected no matches for complete token 'cal' with no exact-token entity")
	}
}

func TestFindMatchesRequiresAllCompleteTokens(t *testing.T) {
	s := New()
	sfo := &fakeEntity{name: "SFO SAN FRANCISCO VOR", loc: geo.Vec3{}}
	s.Add(sfo)

	s.FindMatches("san oak", geo.Vec3{}, 0)
	if len(s.Results()) != 0 {
		t.Errorf("query requiring an absent token should match nothing")
	}
}

func TestFindMatchesReordersOnCentreChange(t *testing.T) {
	s := New()
	near := &fakeEntity{name: "NEAR VOR", loc: geo.Vec3{X: 1}}
	far := &fakeEntity{name: "FAR VOR", loc: geo.Vec3{X: 100}}
	s.AddAll([]Searchable{near, far})

	s.FindMatches("vor", geo.Vec3{X: 0}, 0)
	if s.Results()[0] != Searchable(near) {
		t.Fatalf("expected near first when centre is at 0")
	}

	s.FindMatches("vor", geo.Vec3{X: 100}, 0)
	if s.Results()[0] != Searchable(far) {
		t.Errorf("expected far first after centre moved to 100")
	}
}
