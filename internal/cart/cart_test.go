package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func napa() Candidate {
	return Candidate{ID: "m1", Name: "Napa Extra", Price: 2.5, Manufacturer: "Beximco"}
}

func TestAddMergesSameID(t *testing.T) {
	var s Snapshot
	for i := 0; i < 5; i++ {
		s = s.Add(napa())
	}

	require.Len(t, s, 1)
	assert.Equal(t, "m1", s[0].ID)
	assert.Equal(t, 5, s[0].Quantity)
}

func TestAddAppendsNewLineWithQuantityOne(t *testing.T) {
	s := Snapshot{}.Add(napa()).Add(Candidate{ID: "m2", Name: "Seclo", Price: 7})

	require.Len(t, s, 2)
	assert.Equal(t, 1, s[1].Quantity)
	assert.Equal(t, "Seclo", s[1].Name)
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	s := Snapshot{}.
		Add(Candidate{ID: "a"}).
		Add(Candidate{ID: "b"}).
		Add(Candidate{ID: "c"}).
		Add(Candidate{ID: "a"}) // merge must not reorder

	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
	assert.Equal(t, 2, s[0].Quantity)
}

func TestAddDoesNotMutateReceiver(t *testing.T) {
	before := Snapshot{}.Add(napa())
	_ = before.Add(napa())
	_ = before.SetQuantity("m1", 9)
	_ = before.Remove("m1")

	require.Len(t, before, 1)
	assert.Equal(t, 1, before[0].Quantity)
}

func TestRemove(t *testing.T) {
	s := Snapshot{}.Add(Candidate{ID: "a"}).Add(Candidate{ID: "b"}).Add(Candidate{ID: "c"})

	s = s.Remove("b")
	assert.Equal(t, []string{"a", "c"}, s.IDs())

	// absent ID is a no-op
	s = s.Remove("zzz")
	assert.Equal(t, []string{"a", "c"}, s.IDs())
}

func TestSetQuantityFloor(t *testing.T) {
	s := Snapshot{}.Add(napa())

	for _, q := range []int{0, -1, -100} {
		assert.Equal(t, s, s.SetQuantity("m1", q), "quantity %d must be rejected", q)
	}

	s = s.SetQuantity("m1", 4)
	assert.Equal(t, 4, s[0].Quantity)

	// absent ID is a no-op
	assert.Equal(t, s, s.SetQuantity("zzz", 3))
}

func TestClear(t *testing.T) {
	s := Snapshot{}.Add(napa()).Add(Candidate{ID: "m2"})
	assert.Empty(t, s.Clear())
}

func TestFilterPreservesCartOrder(t *testing.T) {
	s := Snapshot{}.Add(Candidate{ID: "a"}).Add(Candidate{ID: "b"}).Add(Candidate{ID: "c"})

	got := s.Filter([]string{"c", "a", "nope"})
	assert.Equal(t, []string{"a", "c"}, got.IDs())

	assert.Empty(t, s.Filter(nil))
}
