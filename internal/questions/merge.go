package questions

// Merge combines a new batch with the current list. When isAppend is false
// incoming replaces existing. When true the result is existing followed by
// incoming. No de-duplication is performed and neither input is modified.
func Merge(existing, incoming Set, isAppend bool) Set {
	if !isAppend {
		out := make(Set, len(incoming))
		copy(out, incoming)
		return out
	}
	out := make(Set, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	out = append(out, incoming...)
	return out
}
