package client

import "sort"

// IntersectSeasons returns the seasons present in both lists, sorted
// ascending. Disjoint inputs yield an empty slice, never nil, so callers
// can distinguish "no overlap" from "not compared yet".
func IntersectSeasons(a, b []int) []int {
	seen := make(map[int]struct{}, len(a))
	for _, y := range a {
		seen[y] = struct{}{}
	}

	out := []int{}
	added := make(map[int]struct{})
	for _, y := range b {
		if _, ok := seen[y]; !ok {
			continue
		}
		if _, dup := added[y]; dup {
			continue
		}
		added[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
