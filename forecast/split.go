package forecast

import (
	"math"
	"math/rand"
)

// trainTestSplit shuffles 0..n-1 with a generator seeded by seed and takes
// the first ceil(testFraction*n) positions as the test partition.
func trainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest]
}
