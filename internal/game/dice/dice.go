// Package dice provides the randomness abstraction used by the combat AI.
package dice

// Source is the randomness provider for AI decisions.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Pick returns a uniformly chosen index in [0, n), or -1 when n <= 0.
//
// Precondition: src must be non-nil.
func Pick(src Source, n int) int {
	if n <= 0 {
		return -1
	}
	return src.Intn(n)
}
