package lattice

// Index is an integer lattice coordinate.
type Index [3]int

// Add adds two indices. Return v = a + b.
func (a Index) Add(b Index) Index {
	return Index{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub subtracts two indices. Return v = a - b.
func (a Index) Sub(b Index) Index {
	return Index{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// AddScalar adds a scalar to each component of the index.
func (a Index) AddScalar(b int) Index {
	return Index{a[0] + b, a[1] + b, a[2] + b}
}
