package uid

// NumberID generates unique numeric identifiers, typically used as primary keys.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers, typically used for correlation
// IDs and tokens.
type StringID interface {
	Generate() string
}
