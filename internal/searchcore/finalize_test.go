package searchcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortResults_RelevanceTiesBreakByUpdatedAtThenID(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	results := []Result{
		{Item: ItemView{ID: "b", UpdatedAt: older}, RelevanceScore: 0.5},
		{Item: ItemView{ID: "a", UpdatedAt: older}, RelevanceScore: 0.5},
		{Item: ItemView{ID: "c", UpdatedAt: newer}, RelevanceScore: 0.5},
		{Item: ItemView{ID: "z", UpdatedAt: older}, RelevanceScore: 0.9},
	}

	sortResults(results, SortByRelevance)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Item.ID
	}
	assert.Equal(t, []string{"z", "c", "a", "b"}, ids)
}

func TestSortResults_RelevanceTiesAreDeterministicAcrossInputOrder(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	build := func(order []string) []Result {
		out := make([]Result, len(order))
		for i, id := range order {
			out[i] = Result{Item: ItemView{ID: id, UpdatedAt: older}, RelevanceScore: 0.5}
		}
		return out
	}

	a := build([]string{"b", "a", "c"})
	b := build([]string{"c", "b", "a"})
	sortResults(a, SortByRelevance)
	sortResults(b, SortByRelevance)

	assert.Equal(t, []string{"a", "b", "c"}, idsOf(a))
	assert.Equal(t, []string{"a", "b", "c"}, idsOf(b))
}

func idsOf(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.ID
	}
	return out
}
