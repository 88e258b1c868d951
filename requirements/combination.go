package requirements

// Product returns the cartesian product of groups: every combination that picks
// exactly one item from each group, in group order. Combinations are produced
// group by group and item by item, so the first item of every group forms the
// first combination. The product of no groups is a single empty combination;
// an empty group yields no combinations at all.
func Product[T any](groups [][]T) [][]T {
	result := [][]T{{}}
	for _, group := range groups {
		next := make([][]T, 0, len(result)*len(group))
		for _, partial := range result {
			for _, item := range group {
				combo := make([]T, len(partial), len(partial)+1)
				copy(combo, partial)
				next = append(next, append(combo, item))
			}
		}
		result = next
	}
	return result
}
