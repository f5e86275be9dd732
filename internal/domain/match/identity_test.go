package match

import "testing"

func TestNormalizeTeamName_Synonyms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
	}{
		{"RCB", "Royal Challengers Bangalore"},
		{"Royal Challengers Bengaluru", "rcb"},
		{"CSK", "Chennai Super Kings"},
		{"Kings XI Punjab", "Punjab Kings"},
		{"MI", "Mumbai Indians"},
		{"Windies", "West Indies"},
	}
	for _, tc := range cases {
		if got, want := NormalizeTeamName(tc.a), NormalizeTeamName(tc.b); got != want {
			t.Fatalf("NormalizeTeamName(%q)=%q, NormalizeTeamName(%q)=%q, want equal", tc.a, got, tc.b, want)
		}
	}
}

func TestNormalizeTeamName_LongestSubstringWins(t *testing.T) {
	t.Parallel()

	if got := NormalizeTeamName("Mumbai Indians Women"); got != "mumbaiindians" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := NormalizeTeamName("India Women"); got != "india" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNormalizeTeamName_UnknownReturnsCleaned(t *testing.T) {
	t.Parallel()

	if got := NormalizeTeamName("  Nepal XI!! "); got != "nepalxi" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := NormalizeTeamName(" -- "); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestNormalizeTeamName_ShortAliasOnlyMatchesExactly(t *testing.T) {
	t.Parallel()

	// "sa" is an alias of South Africa but must not hit names that merely contain it.
	if got := NormalizeTeamName("Samoa"); got != "samoa" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestGenerateMatchKey(t *testing.T) {
	t.Parallel()

	got := GenerateMatchKey("Mumbai Indians", "Chennai Super Kings")
	if got != "match_MumbaiIndians_ChennaiSuperKings" {
		t.Fatalf("unexpected key %q", got)
	}

	if GenerateMatchKey("A", "B") == GenerateMatchKey("B", "A") {
		t.Fatalf("expected key to depend on home/away order")
	}

	if got := GenerateMatchKey("Sunrisers  Hyderabad!", "Delhi-Capitals"); got != "match_SunrisersHyderabad_DelhiCapitals" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestPairKey_GroupsSpellings(t *testing.T) {
	t.Parallel()

	if PairKey("RCB", "CSK") != PairKey("Royal Challengers Bangalore", "Chennai Super Kings") {
		t.Fatalf("expected equal pair keys across spellings")
	}
	if PairKey("RCB", "CSK") == PairKey("CSK", "RCB") {
		t.Fatalf("expected pair key to keep home/away order")
	}
}

func TestSameFixture(t *testing.T) {
	t.Parallel()

	matched, swapped := SameFixture("RCB", "MI", "Royal Challengers Bengaluru", "Mumbai Indians")
	if !matched || swapped {
		t.Fatalf("expected direct match, got matched=%v swapped=%v", matched, swapped)
	}

	matched, swapped = SameFixture("RCB", "MI", "Mumbai Indians", "Royal Challengers Bengaluru")
	if !matched || !swapped {
		t.Fatalf("expected swapped match, got matched=%v swapped=%v", matched, swapped)
	}

	if matched, _ = SameFixture("RCB", "MI", "RCB", "CSK"); matched {
		t.Fatalf("expected different fixtures not to match")
	}
}

func TestParseSynonymsYAML(t *testing.T) {
	t.Parallel()

	sets, err := ParseSynonymsYAML([]byte(`
- canonical: Nepal
  aliases: [NEP, Nepal XI]
`))
	if err != nil {
		t.Fatalf("parse synonyms: %v", err)
	}

	n := NewNormalizer(append(DefaultSynonyms(), sets...))
	if got := n.NormalizeTeamName("NEP"); got != "nepal" {
		t.Fatalf("unexpected key %q", got)
	}

	if _, err := ParseSynonymsYAML([]byte("- canonical: Nepal\n  aliases: [N]\n")); err == nil {
		t.Fatalf("expected error for single character alias")
	}
}
