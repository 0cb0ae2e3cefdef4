package cartstore

import (
	"encoding/json"

	"github.com/medistore/cart-api/internal/cart"
)

// SchemaVersion tags the serialized slot so future shape changes can be
// migrated or discarded instead of silently misparsed.
const SchemaVersion = 1

type envelope struct {
	Version int         `json:"version"`
	Items   []cart.Line `json:"items"`
}

// Encode serializes a snapshot into the versioned slot format.
func Encode(snap cart.Snapshot) ([]byte, error) {
	items := []cart.Line(snap)
	if items == nil {
		items = []cart.Line{}
	}
	return json.Marshal(envelope{Version: SchemaVersion, Items: items})
}

// Decode parses slot bytes back into a snapshot. It accepts the current
// versioned envelope and the legacy bare-array format. Corrupt data and
// unknown versions degrade to an empty snapshot, never an error: a broken
// slot must read as an empty cart.
func Decode(raw []byte) cart.Snapshot {
	if len(raw) == 0 {
		return cart.Snapshot{}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Version != 0 {
		if env.Version != SchemaVersion {
			return cart.Snapshot{}
		}
		return cart.Snapshot(env.Items)
	}

	// Legacy slots were a bare item array.
	var items []cart.Line
	if err := json.Unmarshal(raw, &items); err != nil {
		return cart.Snapshot{}
	}
	return cart.Snapshot(items)
}
