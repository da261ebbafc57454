package diagram

// IDGenerator produces user-visible node ids for newly added nodes.
type IDGenerator interface {
	// NextID returns a fresh id. Implementations are not required to
	// guarantee uniqueness.
	NextID() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// NextID calls f.
func (f IDGeneratorFunc) NextID() string {
	return f()
}
