package services

import (
	"sort"

	"github.com/google/uuid"
)

// Diversity caps, scoped to the entire selected output rather than any
// single source tier.
const (
	maxPerMerchant = 3
	maxPerCategory = 5
)

type scoredCandidate struct {
	candidate
	score float64
}

// diversitySelection walks a sorted candidate list greedily, keeping the
// per-merchant and per-category counters across calls so a general-tier
// fill can continue where the main selection stopped.
type diversitySelection struct {
	limit          int
	selected       []scoredCandidate
	seen           map[uuid.UUID]bool
	merchantCounts map[uuid.UUID]int
	categoryCounts map[uuid.UUID]int
}

func newDiversitySelection(limit int) *diversitySelection {
	return &diversitySelection{
		limit:          limit,
		seen:           make(map[uuid.UUID]bool),
		merchantCounts: make(map[uuid.UUID]int),
		categoryCounts: make(map[uuid.UUID]int),
	}
}

func (ds *diversitySelection) full() bool {
	return len(ds.selected) >= ds.limit
}

// take accepts candidates from the sorted list until the limit is reached
// or the list is exhausted. Caps are hard: the page may under-fill rather
// than violate them.
func (ds *diversitySelection) take(sorted []scoredCandidate) {
	for _, sc := range sorted {
		if ds.full() {
			return
		}
		if ds.seen[sc.reel.ID] {
			continue
		}
		if ds.merchantCounts[sc.reel.MerchantID] >= maxPerMerchant {
			continue
		}
		var categoryID *uuid.UUID
		if sc.facts != nil {
			categoryID = sc.facts.CategoryID
		}
		if categoryID != nil && ds.categoryCounts[*categoryID] >= maxPerCategory {
			continue
		}

		ds.selected = append(ds.selected, sc)
		ds.seen[sc.reel.ID] = true
		ds.merchantCounts[sc.reel.MerchantID]++
		if categoryID != nil {
			ds.categoryCounts[*categoryID]++
		}
	}
}

// sortByScore orders candidates by final score descending, newest first on
// ties.
func sortByScore(items []scoredCandidate) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].reel.CreatedAt.After(items[j].reel.CreatedAt)
	})
}
