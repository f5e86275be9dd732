package match

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// minSubstringMatch is the shortest alias allowed to match as a substring.
// Shorter aliases (MI, SA, NZ) only match exactly.
const minSubstringMatch = 3

// SynonymSet groups every spelling of one team. Canonical is the display
// name; its cleaned form is the key returned by NormalizeTeamName.
type SynonymSet struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

type synonymEntry struct {
	key     string
	aliases []string
}

// Normalizer resolves team name spellings to a canonical key.
type Normalizer struct {
	entries []synonymEntry
}

func NewNormalizer(sets []SynonymSet) *Normalizer {
	n := &Normalizer{entries: make([]synonymEntry, 0, len(sets))}
	for _, set := range sets {
		key := cleanName(set.Canonical)
		if key == "" {
			continue
		}

		aliases := []string{key}
		for _, alias := range set.Aliases {
			cleaned := cleanName(alias)
			if len(cleaned) < 2 {
				continue
			}
			aliases = append(aliases, cleaned)
		}
		n.entries = append(n.entries, synonymEntry{key: key, aliases: aliases})
	}
	return n
}

var defaultNormalizer = NewNormalizer(DefaultSynonyms())

// NormalizeTeamName resolves name with the built-in synonym table.
func NormalizeTeamName(name string) string {
	return defaultNormalizer.NormalizeTeamName(name)
}

// PairKey groups feed rows describing the same fixture within one pass.
func PairKey(home, away string) string {
	return defaultNormalizer.PairKey(home, away)
}

func SameFixture(aHome, aAway, bHome, bAway string) (matched, swapped bool) {
	return defaultNormalizer.SameFixture(aHome, aAway, bHome, bAway)
}

// NormalizeTeamName lowercases, strips non-alphanumerics and maps the result
// onto a synonym set. Exact alias hits win; otherwise the longest alias that
// contains, or is contained in, the cleaned name decides. Unknown names come
// back cleaned.
func (n *Normalizer) NormalizeTeamName(name string) string {
	cleaned := cleanName(name)
	if cleaned == "" || n == nil {
		return cleaned
	}

	for _, entry := range n.entries {
		for _, alias := range entry.aliases {
			if alias == cleaned {
				return entry.key
			}
		}
	}

	bestKey := ""
	bestLen := 0
	for _, entry := range n.entries {
		for _, alias := range entry.aliases {
			shorter := min(len(alias), len(cleaned))
			if shorter < minSubstringMatch {
				continue
			}
			if !strings.Contains(cleaned, alias) && !strings.Contains(alias, cleaned) {
				continue
			}
			if shorter > bestLen {
				bestKey = entry.key
				bestLen = shorter
			}
		}
	}
	if bestKey != "" {
		return bestKey
	}

	return cleaned
}

func (n *Normalizer) PairKey(home, away string) string {
	return n.NormalizeTeamName(home) + "|" + n.NormalizeTeamName(away)
}

// SameFixture reports whether two home/away pairs name the same teams.
// swapped is true when they match only with home and away reversed.
func (n *Normalizer) SameFixture(aHome, aAway, bHome, bAway string) (matched, swapped bool) {
	ah, aa := n.NormalizeTeamName(aHome), n.NormalizeTeamName(aAway)
	bh, ba := n.NormalizeTeamName(bHome), n.NormalizeTeamName(bAway)
	if ah == "" || aa == "" {
		return false, false
	}
	if ah == bh && aa == ba {
		return true, false
	}
	if ah == ba && aa == bh {
		return true, true
	}
	return false, false
}

// GenerateMatchKey builds the persistent match id from raw team names.
// Order matters: GenerateMatchKey(a, b) != GenerateMatchKey(b, a).
func GenerateMatchKey(home, away string) string {
	return "match_" + alnum(home) + "_" + alnum(away)
}

// ParseSynonymsYAML reads extra synonym sets, e.g.
//
//	- canonical: Mumbai Indians
//	  aliases: [MI, Mumbai]
func ParseSynonymsYAML(data []byte) ([]SynonymSet, error) {
	var sets []SynonymSet
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("decode team synonyms: %w", err)
	}
	for i, set := range sets {
		if cleanName(set.Canonical) == "" {
			return nil, fmt.Errorf("team synonym %d: canonical name is required", i)
		}
		for _, alias := range set.Aliases {
			if len(cleanName(alias)) < 2 {
				return nil, fmt.Errorf("team synonym %q: alias %q is shorter than 2 characters", set.Canonical, alias)
			}
		}
	}
	return sets, nil
}

func cleanName(name string) string {
	return strings.ToLower(alnum(name))
}

func alnum(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func DefaultSynonyms() []SynonymSet {
	return []SynonymSet{
		{Canonical: "Chennai Super Kings", Aliases: []string{"CSK", "Chennai"}},
		{Canonical: "Mumbai Indians", Aliases: []string{"MI", "Mumbai"}},
		{Canonical: "Royal Challengers Bangalore", Aliases: []string{"RCB", "Royal Challengers Bengaluru", "Bangalore", "Bengaluru"}},
		{Canonical: "Kolkata Knight Riders", Aliases: []string{"KKR", "Kolkata"}},
		{Canonical: "Sunrisers Hyderabad", Aliases: []string{"SRH", "Hyderabad"}},
		{Canonical: "Rajasthan Royals", Aliases: []string{"RR", "Rajasthan"}},
		{Canonical: "Delhi Capitals", Aliases: []string{"DC", "Delhi Daredevils", "Delhi"}},
		{Canonical: "Punjab Kings", Aliases: []string{"PBKS", "Kings XI Punjab", "KXIP", "Punjab"}},
		{Canonical: "Lucknow Super Giants", Aliases: []string{"LSG", "Lucknow"}},
		{Canonical: "Gujarat Titans", Aliases: []string{"GT", "Gujarat"}},
		{Canonical: "India", Aliases: []string{"IND"}},
		{Canonical: "Australia", Aliases: []string{"AUS"}},
		{Canonical: "England", Aliases: []string{"ENG"}},
		{Canonical: "Pakistan", Aliases: []string{"PAK"}},
		{Canonical: "South Africa", Aliases: []string{"SA", "RSA", "Proteas"}},
		{Canonical: "New Zealand", Aliases: []string{"NZ", "Black Caps"}},
		{Canonical: "Sri Lanka", Aliases: []string{"SL"}},
		{Canonical: "Bangladesh", Aliases: []string{"BAN"}},
		{Canonical: "Afghanistan", Aliases: []string{"AFG"}},
		{Canonical: "West Indies", Aliases: []string{"WI", "Windies"}},
		{Canonical: "Ireland", Aliases: []string{"IRE"}},
		{Canonical: "Zimbabwe", Aliases: []string{"ZIM"}},
	}
}
