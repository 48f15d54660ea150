// Package words holds the guessing-word corpus and the sampling logic used to
// build per-round word option lists.
package words

import "math/rand"

// defaultCorpus is the built-in word list used when no corpus is configured.
var defaultCorpus = []string{
	"cat", "dog", "house", "tree", "car", "boat", "sun", "moon", "star",
	"fish", "bird", "flower", "mountain", "beach", "computer", "phone",
	"book", "chair", "table", "door", "window", "pizza", "hamburger",
	"airplane", "train", "bicycle", "robot", "monster", "dragon", "unicorn",
	"rainbow", "cloud", "rain", "snow", "fire", "guitar", "drum", "piano",
	"tiger", "lion", "elephant", "giraffe", "octopus", "dolphin", "shark",
	"king", "queen", "castle", "knight", "wizard", "superhero", "pirate",
}

// Corpus is an immutable word list that can hand out uniform samples.
type Corpus struct {
	words []string
	rng   *rand.Rand
}

// NewCorpus builds a corpus from the given list, falling back to the built-in
// list when empty. The rng may be nil, in which case the global source is
// used; tests inject a seeded one.
func NewCorpus(list []string, rng *rand.Rand) *Corpus {
	if len(list) == 0 {
		list = defaultCorpus
	}
	words := make([]string, len(list))
	copy(words, list)
	return &Corpus{words: words, rng: rng}
}

// Default returns a corpus over the built-in word list.
func Default() *Corpus {
	return NewCorpus(nil, nil)
}

// Len reports the corpus size.
func (c *Corpus) Len() int { return len(c.words) }

// Sample returns n distinct words drawn uniformly without replacement via
// shuffle-then-take. If n exceeds the corpus size, the whole corpus is
// returned in shuffled order.
func (c *Corpus) Sample(n int) []string {
	shuffled := make([]string, len(c.words))
	copy(shuffled, c.words)
	shuffle := rand.Shuffle
	if c.rng != nil {
		shuffle = c.rng.Shuffle
	}
	shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// PickIndex returns a uniform index into a slice of the given length, used
// for the auto-select fallback over a round's offered options.
func (c *Corpus) PickIndex(length int) int {
	if length <= 0 {
		return 0
	}
	if c.rng != nil {
		return c.rng.Intn(length)
	}
	return rand.Intn(length)
}
