package types

// Null represents the null literal, distinct from undefined (nil).
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String returns "null".
func (Null) String() string { return "null" }

// NullValue is the singleton value used for null.
var NullValue = Null{}

// IsNullish reports whether v is undefined (nil) or null.
func IsNullish(v interface{}) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Flags modifies how expressions are evaluated.
type Flags uint32

// FlagNone is the default evaluation mode.
const FlagNone Flags = 0

const (
	// FlagStrict disables coalescing of null/undefined to the empty string.
	FlagStrict Flags = 1 << iota
	// FlagObserveLeafOnly records only the last member of an access chain.
	FlagObserveLeafOnly
	// FlagMustEvaluate turns calls to nil functions into errors.
	FlagMustEvaluate
	// FlagTraversingParentScope resolves names defined nowhere in the scope
	// chain to scope.Marker instead of the local binding context.
	FlagTraversingParentScope
)

// Has reports whether all bits of other are set.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}
