package searchcore

import "sort"

// finalize applies filtering, sorting, grouping, and hard result budgeting
// to a raw phase-2 result set.
func (c *Core) finalize(query string, results []Result, opts Options) QueryResult {
	filtered := filterResults(results, opts)
	sortResults(filtered, opts.SortBy)

	if len(filtered) > opts.MaxResults {
		filtered = filtered[:opts.MaxResults]
	}

	budgeted := applyBudget(filtered)

	qr := QueryResult{Query: query, Total: len(budgeted), Results: budgeted}
	if opts.GroupByCategory {
		qr.GroupedByCategory = groupByCategory(budgeted)
	}
	return qr
}

func filterResults(results []Result, opts Options) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.RelevanceScore < opts.MinRelevance {
			continue
		}
		if len(opts.IncludeCategories) > 0 && !anyMatch(r.Item.Categories, opts.IncludeCategories) {
			continue
		}
		if len(opts.IncludeTags) > 0 && !anyMatch(r.Item.Tags, opts.IncludeTags) {
			continue
		}
		if len(opts.IncludeSourceTypes) > 0 && !contains(opts.IncludeSourceTypes, r.Item.SourceType) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func anyMatch(have, want []string) bool {
	for _, h := range have {
		if contains(want, h) {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// sortResults orders results by by. The relevance ordering (the default)
// breaks ties by updated_at descending then id ascending, so equal scores
// resolve the same way on every call regardless of arrival order; the date
// and title orderings are stable sorts with no further tie-break, so equal
// keys keep their arrival order.
func sortResults(results []Result, by SortBy) {
	switch by {
	case SortByDate:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Item.UpdatedAt.After(results[j].Item.UpdatedAt)
		})
	case SortByTitle:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Item.Title < results[j].Item.Title
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i], results[j]
			if a.RelevanceScore != b.RelevanceScore {
				return a.RelevanceScore > b.RelevanceScore
			}
			if !a.Item.UpdatedAt.Equal(b.Item.UpdatedAt) {
				return a.Item.UpdatedAt.After(b.Item.UpdatedAt)
			}
			return a.Item.ID < b.Item.ID
		})
	}
}

func groupByCategory(results []Result) map[string][]Result {
	grouped := make(map[string][]Result)
	for _, r := range results {
		key := "uncategorized"
		if len(r.Item.Categories) > 0 {
			key = r.Item.Categories[0]
		}
		grouped[key] = append(grouped[key], r)
	}
	return grouped
}
