// Package diff partitions two ordered sets into removed, unchanged and
// added elements.
package diff

// Compute compares previous with desired by equality. removed and unchanged
// keep previous's order, added keeps desired's order. The inputs are never
// modified and the results never share backing arrays with them.
func Compute[T comparable](previous, desired []T) (removed, unchanged, added []T) {
	for _, p := range previous {
		if contains(desired, p) {
			unchanged = append(unchanged, p)
		} else {
			removed = append(removed, p)
		}
	}

	for _, d := range desired {
		if !contains(previous, d) && !contains(added, d) {
			added = append(added, d)
		}
	}

	return removed, unchanged, added
}

// Changed reports whether applying the partition would touch anything.
func Changed[T any](removed, added []T) bool {
	return len(removed) > 0 || len(added) > 0
}

func contains[T comparable](haystack []T, needle T) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
