package stride

// Undetected is the stride reported when no magnification factor could be
// established. Callers must treat it as failure, never as "already 1:1".
const Undetected = 1

// Reason explains how a stride was, or was not, established.
type Reason string

const (
	// ReasonDetected means a stride of two or more was found.
	ReasonDetected Reason = "detected"
	// ReasonDisproved means a scanned frame held a lone one-pixel run.
	ReasonDisproved Reason = "disproved"
	// ReasonNoEvidence means no candidate run lengths were collected.
	ReasonNoEvidence Reason = "no_evidence"
	// ReasonSingleRun means the smallest candidate was one pixel.
	ReasonSingleRun Reason = "single_pixel_run"
	// ReasonInconsistent means a candidate was not a multiple of the smallest.
	ReasonInconsistent Reason = "inconsistent"
	// ReasonMisaligned means the stride does not divide the frame size.
	ReasonMisaligned Reason = "misaligned"
)

// Reduce picks the stride from a set of run lengths.
//
// The smallest length is the stride if every other length is a multiple of
// it. A smallest length of one, an empty set, or any length that is not a
// multiple yields Undetected. There is no fallback to a smaller common
// divisor; see ReduceGCD for that.
func Reduce(candidates CandidateSet) (int, Reason) {
	lengths := nonZero(candidates.Sorted())
	if len(lengths) == 0 {
		return Undetected, ReasonNoEvidence
	}

	smallest := lengths[0]
	if smallest == 1 {
		return Undetected, ReasonSingleRun
	}

	for _, length := range lengths[1:] {
		if length%smallest != 0 {
			return Undetected, ReasonInconsistent
		}
	}
	return smallest, ReasonDetected
}

// ReduceGCD picks the greatest common divisor of all run lengths.
//
// It accepts every set Reduce accepts, with the same answer, and also
// recovers a stride when the smallest run happens to be a multiple of the
// block size, e.g. {6, 9} gives 3 where Reduce fails.
func ReduceGCD(candidates CandidateSet) (int, Reason) {
	lengths := nonZero(candidates.Sorted())
	if len(lengths) == 0 {
		return Undetected, ReasonNoEvidence
	}
	if lengths[0] == 1 {
		return Undetected, ReasonSingleRun
	}

	g := lengths[0]
	for _, length := range lengths[1:] {
		g = gcd(g, length)
	}
	if g < 2 {
		return Undetected, ReasonInconsistent
	}
	return g, ReasonDetected
}

// nonZero drops a leading zero from an ascending slice.
func nonZero(sorted []int) []int {
	if len(sorted) > 0 && sorted[0] == 0 {
		return sorted[1:]
	}
	return sorted
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
