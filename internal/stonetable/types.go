package stonetable

// Qualifier maps qualifier names to their values within a single column family.
type Qualifier map[string][]byte

// Row defines a row of data in Stonetable:
//
// Example:
//
//	Row{
//	  Key: "row1",
//	  Columns: map[string]Qualifier{
//	    "family1": {
//	      "qualifier1": []byte("value1"),
//	      "qualifier2": []byte("value2"),
//	    },
//	    "family2": {
//	      "qualifier1": []byte("value3"),
//	    },
//	  },
//	}
//	This represents a row with key "row1" containing two families: "family1" and "family2",
//	each with their respective qualifiers and values.
//
// Row keys are ordered byte-lexicographically; that ordering is what scans and
// pre-split boundaries operate on.
type Row struct {
	Key     string               `json:"key"`
	Columns map[string]Qualifier `json:"cols"` // family -> qualifier -> value
}

// CellCount returns the number of (family, qualifier, value) cells in the row.
func (r *Row) CellCount() int {
	n := 0
	for _, quals := range r.Columns {
		n += len(quals)
	}
	return n
}

// TableDescriptor describes a table held by the coordinator: its column
// families and the pre-split boundaries it was created with.
type TableDescriptor struct {
	Name     string   `json:"name"`
	Families []string `json:"families"`
	Splits   []string `json:"splits,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
}

// HasFamily reports whether the descriptor contains the named column family.
func (d *TableDescriptor) HasFamily(family string) bool {
	for _, f := range d.Families {
		if f == family {
			return true
		}
	}
	return false
}

// KeyRange is a half-open key interval [Start, End) served by a single node.
// An empty Start means the range is unbounded below; an empty End means it is
// unbounded above.
type KeyRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Node  string `json:"node"` // serving address, host:port
}

// Contains reports whether the key falls inside the range.
func (r *KeyRange) Contains(key string) bool {
	if r.Start != "" && key < r.Start {
		return false
	}
	if r.End != "" && key >= r.End {
		return false
	}
	return true
}
