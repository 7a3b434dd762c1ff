package iso8583

// Registry is the read-only table of data element definitions for one
// message format. It is fully populated at construction and never
// mutated afterwards, so it needs no synchronization.
type Registry struct {
	defs map[int]FieldDefinition
}

// NewRegistry builds a registry from the given definitions. Definitions
// outside 2..128 are rejected.
func NewRegistry(defs map[int]FieldDefinition) (*Registry, error) {
	r := &Registry{defs: make(map[int]FieldDefinition, len(defs))}
	for id, def := range defs {
		if id < MinFieldNumber || id > MaxFieldNumber {
			return nil, &FieldError{Field: id, Err: ErrFieldIDOutOfRange}
		}
		r.defs[id] = def
	}
	return r, nil
}

// Lookup returns the definition for a data element.
func (r *Registry) Lookup(fieldNum int) (FieldDefinition, error) {
	def, ok := r.defs[fieldNum]
	if !ok {
		return FieldDefinition{}, &FieldError{Field: fieldNum, Err: ErrUnsupportedField}
	}
	return def, nil
}

// Has reports whether a data element is defined.
func (r *Registry) Has(fieldNum int) bool {
	_, ok := r.defs[fieldNum]
	return ok
}

// MandatoryFields returns the ids of all mandatory data elements in
// ascending order.
func (r *Registry) MandatoryFields() []int {
	ids := make([]int, 0, len(r.defs))
	for id := MinFieldNumber; id <= MaxFieldNumber; id++ {
		if def, ok := r.defs[id]; ok && def.Mandatory {
			ids = append(ids, id)
		}
	}
	return ids
}

// DefaultRegistry returns the field table for a typical Visa 0100
// authorization request. The variable-length prefix convention is
// decimal ASCII throughout; see the README before pointing this at a
// real network.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(map[int]FieldDefinition{
		2:  {Name: "Primary Account Number", Format: VarNumeric, Length: 19, MinLength: 13, Mandatory: true},
		3:  {Name: "Processing Code", Format: FixedNumeric, Length: 6, Mandatory: true},
		4:  {Name: "Amount, Transaction", Format: FixedNumeric, Length: 12, Mandatory: true},
		11: {Name: "System Trace Audit Number", Format: FixedNumeric, Length: 6, Mandatory: true},
		12: {Name: "Time, Local Transaction", Format: FixedNumeric, Length: 6, Mandatory: true},
		13: {Name: "Date, Local Transaction", Format: FixedNumeric, Length: 4, Mandatory: true},
		14: {Name: "Date, Expiration", Format: FixedNumeric, Length: 4},
		22: {Name: "POS Entry Mode", Format: FixedNumeric, Length: 3, Mandatory: true},
		32: {Name: "Acquiring Institution ID", Format: VarNumeric, Length: 11, MinLength: 1, Mandatory: true},
		52: {Name: "PIN Data", Format: RawBinary, Length: 8},
		55: {Name: "ICC Data", Format: VarBinary, Length: 999},
	})
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return r
}
