// Package distance provides the edit-distance math used by the classifier.
package distance

// Levenshtein returns the rune-based edit distance between a and b.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// Calculator computes distances against exemplar sets with an optional
// per-comparison bound for early exit.
type Calculator struct {
	bound int // <= 0 means unbounded
}

// NewCalculator creates a calculator. A positive bound caps every comparison:
// distances above it are reported as bound+1.
func NewCalculator(bound int) *Calculator {
	return &Calculator{bound: bound}
}

// Distance returns the edit distance between a and b, capped at bound+1 when
// a bound is set.
func (c *Calculator) Distance(a, b string) int {
	if c.bound <= 0 {
		return Levenshtein(a, b)
	}
	return bounded(a, b, c.bound)
}

// Nearest returns the exemplar closest to word and its distance. The search
// tightens its bound as better candidates are found. An empty exemplar set
// yields the empty string at distance len(word).
func (c *Calculator) Nearest(word string, exemplars []string) (string, int) {
	if len(exemplars) == 0 {
		return "", len([]rune(word))
	}

	best := exemplars[0]
	bestDist := c.Distance(word, exemplars[0])
	for _, ex := range exemplars[1:] {
		if bestDist == 0 {
			break
		}
		d := bounded(word, ex, bestDist)
		if d < bestDist {
			best = ex
			bestDist = d
		}
	}
	return best, bestDist
}

// bounded computes Levenshtein distance with early exit: if the distance
// exceeds max, max+1 is returned.
func bounded(a, b string, max int) int {
	ra := []rune(a)
	rb := []rune(b)
	if diff := len(ra) - len(rb); diff > max || -diff > max {
		return max + 1
	}
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if rowMin > max {
			return max + 1
		}
		prev, cur = cur, prev
	}

	if prev[len(rb)] > max {
		return max + 1
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
