package cart

// Line is one catalog item held in the cart together with a quantity.
// Name, price, manufacturer and category are captured when the item is
// added and are not re-read from the catalog afterwards.
type Line struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Category     string  `json:"category,omitempty"`
	Quantity     int     `json:"quantity"`
}

// Candidate is what Add accepts: a line without a quantity.
type Candidate struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Category     string  `json:"category,omitempty"`
}

// Snapshot is an ordered cart state. At most one line exists per item ID
// and insertion order is preserved across mutations except removal.
// Mutations never modify a snapshot in place; each returns a fresh one.
type Snapshot []Line

func (s Snapshot) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, l := range s {
		ids = append(ids, l.ID)
	}
	return ids
}

func (s Snapshot) Contains(id string) bool {
	for _, l := range s {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Filter keeps only the lines whose ID is in ids, preserving cart order.
func (s Snapshot) Filter(ids []string) Snapshot {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(Snapshot, 0, len(s))
	for _, l := range s {
		if _, ok := want[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}
