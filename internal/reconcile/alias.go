package reconcile

// MergeAlias appends candidate to list unless it is empty, equal to the
// canonical name for the same language, or already present. Existing entries
// are never reordered or removed, so merging the same candidate twice is a no-op.
func MergeAlias(list []string, candidate, canonical string) ([]string, bool) {
	if candidate == "" || candidate == canonical {
		return list, false
	}
	for _, alias := range list {
		if alias == candidate {
			return list, false
		}
	}

	merged := make([]string, len(list), len(list)+1)
	copy(merged, list)
	return append(merged, candidate), true
}
