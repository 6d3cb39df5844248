package evo

import (
	"fmt"
	"math"
	"math/rand"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

// MutationCountPolicy determines how many mutation operations are applied to
// each child program.
type MutationCountPolicy interface {
	Name() string
	MutationCount(program *model.Program, rng *rand.Rand) (int, error)
}

type ConstMutations struct {
	Count int
}

func (ConstMutations) Name() string {
	return "const"
}

func (p ConstMutations) MutationCount(_ *model.Program, _ *rand.Rand) (int, error) {
	if p.Count <= 0 {
		return 0, fmt.Errorf("const mutation count must be > 0")
	}
	return p.Count, nil
}

// NCountLinearMutations scales the count with the program's node count.
type NCountLinearMutations struct {
	Multiplier float64
	MaxCount   int
}

func (NCountLinearMutations) Name() string {
	return "ncount_linear"
}

func (p NCountLinearMutations) MutationCount(program *model.Program, _ *rand.Rand) (int, error) {
	if p.Multiplier <= 0 {
		return 0, fmt.Errorf("linear multiplier must be > 0")
	}
	count := int(math.Round(float64(genotype.CountNodes(program)) * p.Multiplier))
	return clampCount(count, p.MaxCount), nil
}

// NCountExponentialMutations draws uniformly from [1, nodes^Power].
type NCountExponentialMutations struct {
	Power    float64
	MaxCount int
}

func (NCountExponentialMutations) Name() string {
	return "ncount_exponential"
}

func (p NCountExponentialMutations) MutationCount(program *model.Program, rng *rand.Rand) (int, error) {
	if p.Power <= 0 {
		return 0, fmt.Errorf("exponential power must be > 0")
	}
	upper := int(math.Round(math.Pow(float64(max(1, genotype.CountNodes(program))), p.Power)))
	upper = clampCount(upper, p.MaxCount)
	if rng == nil {
		return upper, nil
	}
	return 1 + rng.Intn(upper), nil
}

func clampCount(count, maxCount int) int {
	if count < 1 {
		count = 1
	}
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}
	return count
}
