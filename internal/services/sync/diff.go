package sync

// Diff returns the identifiers present in current but not in previous.
// Pure set difference: identifiers that left the collections are never
// produced, so earlier synchronizations are never undone.
func Diff(current, previous map[string]struct{}) map[string]struct{} {
	additions := make(map[string]struct{})
	for id := range current {
		if _, known := previous[id]; !known {
			additions[id] = struct{}{}
		}
	}
	return additions
}
