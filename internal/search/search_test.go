package search

import (
	"strings"
	"testing"

	"github.com/repolens/repolens/internal/extract"
	"github.com/repolens/repolens/internal/lang"
)

func fixtureRecords() map[string]*extract.Record {
	return map[string]*extract.Record{
		"src/auth/login.py": {
			Language:  lang.Python,
			Functions: []string{"login_user", "verify_token"},
			Classes:   []string{"SessionManager"},
			Imports:   []string{"jwt"},
		},
		"src/api/handlers.js": {
			Language:  lang.JavaScript,
			Functions: []string{"getUserProfile"},
		},
		"src/utils/format.py": {
			Language:  lang.Python,
			Functions: []string{"format_date"},
		},
	}
}

func TestExpandQuery(t *testing.T) {
	expanded := ExpandQuery("auth flow")
	set := map[string]bool{}
	for _, term := range expanded {
		set[term] = true
	}
	for _, want := range []string{"auth", "flow", "login", "jwt", "session"} {
		if !set[want] {
			t.Errorf("expansion missing %q: %v", want, expanded)
		}
	}
	if !sortedStrings(expanded) {
		t.Error("expansion must be sorted for determinism")
	}
}

func sortedStrings(list []string) bool {
	for i := 1; i < len(list); i++ {
		if list[i-1] > list[i] {
			return false
		}
	}
	return true
}

func TestSearchDirectNameMatch(t *testing.T) {
	results := Search("login", fixtureRecords(), 0)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	top := results[0]
	if top.Name != "login_user" || top.Type != "function" {
		t.Errorf("top = %+v, want the login_user function", top)
	}
}

func TestSearchSynonymExpansion(t *testing.T) {
	results := Search("authentication", fixtureRecords(), 0)
	found := false
	for _, r := range results {
		if r.Name == "verify_token" {
			found = true
		}
	}
	if !found {
		t.Errorf("synonym expansion should reach verify_token: %+v", results)
	}
}

func TestSearchCamelCaseSplit(t *testing.T) {
	results := Search("profile", fixtureRecords(), 0)
	found := false
	for _, r := range results {
		if r.Name == "getUserProfile" {
			found = true
		}
	}
	if !found {
		t.Errorf("camelCase identifiers must be matchable by word: %+v", results)
	}
}

func TestSearchTypeBoost(t *testing.T) {
	records := map[string]*extract.Record{
		"a.py": {Language: lang.Python, Functions: []string{"cache"}, Imports: []string{"cache"}},
	}
	results := Search("cache", records, 0)
	if len(results) < 2 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Type != "function" || results[1].Type != "import" {
		t.Errorf("function must outrank import on identical names: %+v", results)
	}
}

func TestSearchBlankAndLimit(t *testing.T) {
	if got := Search("   ", fixtureRecords(), 0); len(got) != 0 {
		t.Errorf("blank query must return nothing: %+v", got)
	}

	records := map[string]*extract.Record{}
	records["src/big.py"] = &extract.Record{Language: lang.Python}
	for i := 0; i < 30; i++ {
		records["src/big.py"].Functions = append(records["src/big.py"].Functions,
			"handle_thing_"+strings.Repeat("x", i+1))
	}
	got := Search("handle", records, 0)
	if len(got) != DefaultLimit {
		t.Errorf("limit: got %d results", len(got))
	}
}

func TestRunGroupsByType(t *testing.T) {
	resp := Run("login", fixtureRecords())
	if resp.TotalResults != len(resp.Results) {
		t.Errorf("count mismatch: %d vs %d", resp.TotalResults, len(resp.Results))
	}
	if len(resp.Grouped["function"]) == 0 {
		t.Errorf("grouped view missing functions: %+v", resp.Grouped)
	}
}

func TestSearchDeterministic(t *testing.T) {
	records := fixtureRecords()
	first := Search("auth", records, 0)
	for i := 0; i < 10; i++ {
		again := Search("auth", records, 0)
		if len(again) != len(first) {
			t.Fatal("result count differs between runs")
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("result order differs at %d", j)
			}
		}
	}
}
