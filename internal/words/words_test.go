package words

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleDistinct(t *testing.T) {
	c := NewCorpus([]string{"a", "b", "c", "d", "e"}, rand.New(rand.NewSource(1)))

	got := c.Sample(3)
	require.Len(t, got, 3)

	seen := map[string]bool{}
	for _, w := range got {
		assert.False(t, seen[w], "word %q sampled twice", w)
		seen[w] = true
	}
}

func TestSampleClampsToCorpusSize(t *testing.T) {
	c := NewCorpus([]string{"x", "y"}, rand.New(rand.NewSource(1)))
	got := c.Sample(10)
	assert.Len(t, got, 2)
}

func TestSampleDoesNotMutateCorpus(t *testing.T) {
	c := NewCorpus([]string{"a", "b", "c"}, rand.New(rand.NewSource(7)))
	for i := 0; i < 20; i++ {
		c.Sample(2)
	}
	assert.Equal(t, []string{"a", "b", "c"}, c.words)
}

func TestDefaultCorpusNonEmpty(t *testing.T) {
	c := Default()
	require.Greater(t, c.Len(), 0)
	got := c.Sample(3)
	assert.Len(t, got, 3)
}

func TestPickIndexInRange(t *testing.T) {
	c := NewCorpus([]string{"a"}, rand.New(rand.NewSource(3)))
	for i := 0; i < 100; i++ {
		idx := c.PickIndex(3)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 3)
	}
	assert.Equal(t, 0, c.PickIndex(0))
}
