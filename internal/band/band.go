// Package band assigns zebra stripes to runs of rows sharing a group.
//
// Bands are handed out in first-seen order over the sorted, filtered
// sequence and wrap modulo the palette size, so neighbouring groups
// alternate. They are recomputed on every pass: inserting a new group can
// shift the bands of every group after it.
package band

// Assign returns one band per group key. Keys are compared as given; pass
// the same keys the rows were sorted by so a group never splits.
func Assign(groups []string, palette int) []int {
	if palette < 1 {
		palette = 1
	}
	bands := make([]int, len(groups))
	seen := make(map[string]int)
	for i, g := range groups {
		b, ok := seen[g]
		if !ok {
			b = len(seen) % palette
			seen[g] = b
		}
		bands[i] = b
	}
	return bands
}
