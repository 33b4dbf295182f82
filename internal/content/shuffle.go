package content

import (
	"math/rand"
	"sync"
	"time"

	"simulado-service/internal/domain"
)

// Shuffler randomizes answer-option order at read time. Apply always works on
// a deep copy: the cached canonical document must never be reordered in place,
// or every later reader would see the corrupted order.
type Shuffler struct {
	shuffleQuestions bool

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewShuffler builds a Shuffler. When shuffleQuestions is set the top-level
// question order is permuted as well as each question's alternativas.
func NewShuffler(shuffleQuestions bool) *Shuffler {
	return &Shuffler{
		shuffleQuestions: shuffleQuestions,
		rnd:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Apply returns a copy of the document with each question's alternativas
// independently permuted. The answer key references option text, so the
// correct-answer association is preserved under any permutation.
func (s *Shuffler) Apply(doc domain.Simulado) domain.Simulado {
	out := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuffleQuestions {
		s.rnd.Shuffle(len(out.Questoes), func(i, j int) {
			out.Questoes[i], out.Questoes[j] = out.Questoes[j], out.Questoes[i]
		})
	}
	for qi := range out.Questoes {
		alts := out.Questoes[qi].Alternativas
		s.rnd.Shuffle(len(alts), func(i, j int) {
			alts[i], alts[j] = alts[j], alts[i]
		})
	}
	return out
}
