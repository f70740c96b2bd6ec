package services

import (
	"crypto/rand"
	"math/big"

	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"
)

// NumberGenerator draws lottery combinations
type NumberGenerator struct {
	source interfaces.RandomSource
}

// NewNumberGenerator creates a generator over the given source. A nil source
// uses crypto/rand.
func NewNumberGenerator(source interfaces.RandomSource) *NumberGenerator {
	if source == nil {
		source = CryptoSource{}
	}
	return &NumberGenerator{source: source}
}

// Draw returns CombinationSize distinct numbers in [MinNumber, MaxNumber],
// sampled without replacement and sorted ascending for storage
func (g *NumberGenerator) Draw() entities.Combination {
	poolSize := entities.MaxNumber - entities.MinNumber + 1
	pool := make([]int, poolSize)
	for i := range pool {
		pool[i] = entities.MinNumber + i
	}

	// Fisher-Yates shuffle (partial - only the first CombinationSize elements)
	for i := 0; i < entities.CombinationSize; i++ {
		j := i + g.source.Intn(poolSize-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	drawn := make(entities.Combination, entities.CombinationSize)
	copy(drawn, pool[:entities.CombinationSize])
	return drawn.Sorted()
}

// CryptoSource is a RandomSource backed by crypto/rand
type CryptoSource struct{}

// Intn returns a uniform integer in [0, n). It panics if the system random
// source fails.
func (CryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return int(v.Int64())
}
