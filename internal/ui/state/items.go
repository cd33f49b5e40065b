package state

// Item is one selectable row. ID is stable (a file path for the image
// picker); Label is what the filter matches against; Detail is rendered
// dimmed after the label.
type Item struct {
	ID     string
	Label  string
	Detail string
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
