// Package report computes participation statistics over the cleaned dataset
// and renders them as delimited tables, a workbook, and charts.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/table"
)

// Count is a key with its tally.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// LegislatorTerm is the number of body memberships a legislator held in one term.
type LegislatorTerm struct {
	Legislator string `json:"legislator"`
	Term       string `json:"term"`
	Bodies     int    `json:"bodies"`
}

// PartyAverage is the mean number of memberships per legislator of a party.
type PartyAverage struct {
	Party   string  `json:"party"`
	Average float64 `json:"average"`
}

// Stats holds every aggregate produced by the report stage.
type Stats struct {
	LegislatorTerms    []LegislatorTerm `json:"legislator_terms"`
	PartyAverages      []PartyAverage   `json:"party_averages"`
	PopularBodies      []Count          `json:"popular_bodies"`
	TermParticipation  []Count          `json:"term_participation"`
	StateParticipation []Count          `json:"state_participation"`
	TopLegislators     []Count          `json:"top_legislators"`
}

// Compute aggregates the cleaned dataset. Rows with a null grouping key are
// left out of that grouping.
func Compute(ds *table.Table) *Stats {
	type pair struct{ a, b string }

	perLegTerm := make(map[pair]int)
	perPartyLeg := make(map[pair]int)
	bodyLegs := make(map[string]map[string]bool)
	stateLegs := make(map[string]map[string]bool)
	perTerm := make(map[string]int)
	perLeg := make(map[string]int)

	for i := range ds.Len() {
		name := ds.Get(i, model.ColLegislatorName)
		term := ds.Get(i, model.ColTerm)
		party := ds.Get(i, model.ColParty)
		body := ds.Get(i, model.ColBodyName)
		state := ds.Get(i, model.ColState)

		if term.Valid {
			perTerm[term.Value]++
		}
		if !name.Valid {
			continue
		}
		perLeg[name.Value]++
		if term.Valid {
			perLegTerm[pair{name.Value, term.Value}]++
		}
		if party.Valid {
			perPartyLeg[pair{party.Value, name.Value}]++
		}
		if body.Valid {
			addDistinct(bodyLegs, body.Value, name.Value)
		}
		if state.Valid {
			addDistinct(stateLegs, state.Value, name.Value)
		}
	}

	s := &Stats{}

	for k, n := range perLegTerm {
		s.LegislatorTerms = append(s.LegislatorTerms, LegislatorTerm{Legislator: k.a, Term: k.b, Bodies: n})
	}
	sort.Slice(s.LegislatorTerms, func(i, j int) bool {
		a, b := s.LegislatorTerms[i], s.LegislatorTerms[j]
		if a.Legislator != b.Legislator {
			return a.Legislator < b.Legislator
		}
		return compareTerms(a.Term, b.Term) < 0
	})

	sums := make(map[string]int)
	legs := make(map[string]int)
	for k, n := range perPartyLeg {
		sums[k.a] += n
		legs[k.a]++
	}
	for party, total := range sums {
		s.PartyAverages = append(s.PartyAverages, PartyAverage{Party: party, Average: float64(total) / float64(legs[party])})
	}
	sort.Slice(s.PartyAverages, func(i, j int) bool { return s.PartyAverages[i].Party < s.PartyAverages[j].Party })

	s.PopularBodies = descending(distinctCounts(bodyLegs))
	s.StateParticipation = descending(distinctCounts(stateLegs))
	s.TopLegislators = descending(perLeg)

	for term, n := range perTerm {
		s.TermParticipation = append(s.TermParticipation, Count{Key: term, Count: n})
	}
	sort.Slice(s.TermParticipation, func(i, j int) bool {
		return compareTerms(s.TermParticipation[i].Key, s.TermParticipation[j].Key) < 0
	})

	return s
}

// TopParties returns the n parties with the highest average, ties by name.
func (s *Stats) TopParties(n int) []PartyAverage {
	out := append([]PartyAverage(nil), s.PartyAverages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average > out[j].Average })
	return head(out, n)
}

func addDistinct(m map[string]map[string]bool, key, member string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]bool)
		m[key] = set
	}
	set[member] = true
}

func distinctCounts(m map[string]map[string]bool) map[string]int {
	out := make(map[string]int, len(m))
	for k, set := range m {
		out[k] = len(set)
	}
	return out
}

// descending orders counts high to low, ties by key.
func descending(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, n := range m {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// compareTerms orders "L9" before "L10"; other codes compare as text.
func compareTerms(a, b string) int {
	na, okA := termNumber(a)
	nb, okB := termNumber(b)
	switch {
	case okA && okB && na != nb:
		if na < nb {
			return -1
		}
		return 1
	case okA != okB:
		if okA {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func termNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "L"))
	return n, err == nil
}

func head[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
