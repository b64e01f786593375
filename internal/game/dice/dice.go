// Package dice provides the randomness abstraction used by chance-based
// behaviors, along with the one-in-N roll and its audit result.
package dice

import "fmt"

// Source is the randomness provider for rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// OneInResult holds the audit trail for a single one-in-N roll.
//
// Postcondition: Passed == (Value == 0).
type OneInResult struct {
	N      int  // odds denominator
	Value  int  // drawn value in [0, N)
	Passed bool // true when Value == 0
}

// String returns a human-readable audit string in the format:
//
//	"1 in 3 → 0 (pass)"
func (r OneInResult) String() string {
	outcome := "fail"
	if r.Passed {
		outcome = "pass"
	}
	return fmt.Sprintf("1 in %d → %d (%s)", r.N, r.Value, outcome)
}

// OneIn draws from src and passes with probability 1/n.
//
// Precondition: src must be non-nil. n <= 1 always passes without drawing.
// Postcondition: for n > 1, result.Passed holds with probability exactly 1/n
// when src is uniform.
func OneIn(src Source, n int) OneInResult {
	if n <= 1 {
		return OneInResult{N: 1, Value: 0, Passed: true}
	}
	v := src.Intn(n)
	return OneInResult{N: n, Value: v, Passed: v == 0}
}
