package cart

// Add merges the candidate into the snapshot. An existing line with the
// same ID gets its quantity incremented by one; otherwise a new line with
// quantity 1 is appended. No stock check happens here, stock is advisory
// and enforced only when the checkout is gated.
func (s Snapshot) Add(c Candidate) Snapshot {
	for i, l := range s {
		if l.ID == c.ID {
			out := s.clone()
			out[i].Quantity++
			return out
		}
	}
	out := make(Snapshot, len(s), len(s)+1)
	copy(out, s)
	return append(out, Line{
		ID:           c.ID,
		Name:         c.Name,
		Price:        c.Price,
		Manufacturer: c.Manufacturer,
		Category:     c.Category,
		Quantity:     1,
	})
}

// Remove filters out the line with the given ID. Removing an absent ID is
// a no-op.
func (s Snapshot) Remove(id string) Snapshot {
	out := make(Snapshot, 0, len(s))
	for _, l := range s {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

// SetQuantity replaces the quantity of the line with the given ID.
// Quantities below 1 are rejected silently: removal is the only path to
// zero. Setting the quantity of an absent ID is a no-op.
func (s Snapshot) SetQuantity(id string, quantity int) Snapshot {
	if quantity < 1 {
		return s
	}
	for i, l := range s {
		if l.ID == id {
			out := s.clone()
			out[i].Quantity = quantity
			return out
		}
	}
	return s
}

// Clear returns an empty snapshot.
func (s Snapshot) Clear() Snapshot {
	return Snapshot{}
}
