package forest

import (
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions sample indices so each class contributes
// round(fraction*n) of its samples to validation, keeping at least one in
// training. Both partitions are returned in ascending index order.
func StratifiedSplit(y []int, fraction float64, seed int64) (train, validation []int) {
	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	labels := make([]int, 0, len(byClass))
	for label := range byClass {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic split
	for _, label := range labels {
		idx := byClass[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		k := int(math.Round(fraction * float64(len(idx))))
		k = max(0, min(k, len(idx)-1))
		validation = append(validation, idx[:k]...)
		train = append(train, idx[k:]...)
	}

	sort.Ints(train)
	sort.Ints(validation)
	return train, validation
}
