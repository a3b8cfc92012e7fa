package service

// MeanScore folds review scores into a title rating. A title without reviews
// has no rating, so nil is returned rather than zero.
func MeanScore(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return &mean
}
