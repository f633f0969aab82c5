package curation

import (
	"math/rand"

	"github.com/courtside-ml/takeforge/pkg/corpus"
)

// SplitDataset shuffles the examples in place with the supplied random
// source, then partitions them at floor(trainFraction * N). The two shards
// are disjoint and exhaustive.
func SplitDataset(examples []corpus.Example, trainFraction float64, rng *rand.Rand) (train, val []corpus.Example) {
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	split := int(trainFraction * float64(len(examples)))
	return examples[:split], examples[split:]
}
