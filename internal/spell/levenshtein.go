package spell

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	d, _ := boundedDistance([]rune(a), []rune(b), max(len(a), len(b)))
	return d
}

// boundedDistance computes the edit distance between a and b, giving up as soon
// as every cell of a DP row exceeds limit. The bool is false when the distance
// is known to be greater than limit.
func boundedDistance(a, b []rune, limit int) (int, bool) {
	if diff := len(a) - len(b); diff > limit || -diff > limit {
		return 0, false
	}
	if len(a) == 0 {
		return len(b), true
	}
	if len(b) == 0 {
		return len(a), true
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > limit {
			return 0, false
		}
		prev, curr = curr, prev
	}

	d := prev[len(b)]
	if d > limit {
		return 0, false
	}
	return d, true
}
