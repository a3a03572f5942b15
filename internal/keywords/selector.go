// Package keywords chooses the search term for the next cycle. Two
// strategies exist: a plain rotation over the configured vocabulary and a
// score-weighted selection that reinforces terms which keep producing
// actionable decisions.
package keywords

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"resalescout/logger"
	"resalescout/services/store"
)

// Selector returns the term to use for the next cycle
type Selector interface {
	Next(ctx context.Context) (string, error)
}

// NewSelector builds a selector for the configured strategy name.
func NewSelector(strategy string, vocabulary []string, stats store.Stats, decay float64, poolSize int) Selector {
	if strategy == "rotation" {
		return NewRotation(vocabulary)
	}
	return NewScored(vocabulary, stats, decay, poolSize)
}

// Rotation cycles through the vocabulary without repeats until the whole
// list is exhausted, then starts over.
type Rotation struct {
	mu        sync.Mutex
	terms     []string
	remaining []string
}

// NewRotation creates a rotation selector over vocabulary
func NewRotation(vocabulary []string) *Rotation {
	return &Rotation{terms: vocabulary}
}

// Next returns the next unused term of the current round
func (r *Rotation) Next(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.remaining) == 0 {
		r.remaining = append([]string(nil), r.terms...)
	}
	term := r.remaining[0]
	r.remaining = r.remaining[1:]
	return term, nil
}

// Scored ranks terms by their learned score and samples uniformly from the
// top of the ranking. Sampling instead of taking the maximum keeps some
// exploration in the mix.
type Scored struct {
	vocabulary []string
	stats      store.Stats
	decay      float64
	poolSize   int
	log        *logger.Logger
}

// NewScored creates a score-weighted selector over vocabulary
func NewScored(vocabulary []string, stats store.Stats, decay float64, poolSize int) *Scored {
	if poolSize <= 0 {
		poolSize = 5
	}
	return &Scored{
		vocabulary: vocabulary,
		stats:      stats,
		decay:      decay,
		poolSize:   poolSize,
		log:        logger.ForCycle(),
	}
}

// Next ranks the vocabulary by score and picks uniformly at random from
// the top-K pool. Empty or unreadable persisted stats degrade to a
// uniform pick over the static vocabulary.
func (s *Scored) Next(ctx context.Context) (string, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Keyword stats unreadable, falling back to static vocabulary")
		stats = nil
	}
	if len(stats) == 0 {
		return s.vocabulary[rand.IntN(len(s.vocabulary))], nil
	}

	ranked := make([]store.KeywordStat, 0, len(s.vocabulary))
	for _, term := range s.vocabulary {
		stat, ok := stats[term]
		if !ok {
			// Unseen terms start at zero, which outranks decayed losers.
			stat = store.KeywordStat{Term: term}
		}
		ranked = append(ranked, stat)
	}

	sort.Slice(ranked, func(i, j int) bool {
		si, sj := ranked[i].Score(s.decay), ranked[j].Score(s.decay)
		if si != sj {
			return si > sj
		}
		return ranked[i].Term < ranked[j].Term
	})

	pool := s.poolSize
	if pool > len(ranked) {
		pool = len(ranked)
	}
	return ranked[rand.IntN(pool)].Term, nil
}
