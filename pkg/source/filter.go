package source

// Unseen returns the items whose ID is not in seen, keeping input order.
// Repeated IDs within items are returned once.
func Unseen(items []Item, seen map[string]struct{}) []Item {
	var fresh []Item
	emitted := make(map[string]struct{})
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		if _, ok := emitted[item.ID]; ok {
			continue
		}
		emitted[item.ID] = struct{}{}
		fresh = append(fresh, item)
	}
	return fresh
}

// IDs returns the identifiers of items in order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// MeetsThreshold reports whether score plus comments reaches min.
// An item exactly at the threshold passes.
func MeetsThreshold(item Item, min int) bool {
	return item.Score+item.Comments >= min
}

// Reversed returns a copy of items in reverse order.
func Reversed(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}
