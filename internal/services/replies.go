// Package services – reply pools
//
// Several states answer with one of a few canned phrasings so the bot reads
// less robotic. Selection goes through an injected random source, keeping the
// mapping pure and letting tests substitute a deterministic source.
package services

import "math/rand"

// RandSource yields a non-negative pseudo-random int below n. *rand.Rand
// satisfies it; tests use a fixed-sequence fake.
type RandSource interface {
	Intn(n int) int
}

// Replies picks flavor text from fixed pools.
type Replies struct {
	src RandSource
}

// NewReplies builds a picker around the given source. A nil source falls back
// to a time-seeded rand.
func NewReplies(src RandSource) *Replies {
	if src == nil {
		src = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Replies{src: src}
}

// Reply pools. Content is immaterial; the session stays on the same state
// whenever one of these is sent.
var (
	poolInvalidChoice = []string{
		"Hmm, that's not one of the options. Try the number again.",
		"That choice didn't match the menu. Pick a listed number.",
		"Not quite — reply with one of the numbers shown above.",
	}
	poolSaved = []string{
		"Done, saved. ✅",
		"Got it, that's updated.",
		"All set. ✅",
	}
	poolGreeting = []string{
		"Hi again! Type 'new receipt' to bill a customer, or 'help' for everything I can do.",
		"Welcome back! Say 'new receipt' to get started, or 'help' for the full command list.",
	}
)

// InvalidChoice returns one canned invalid-menu-choice reply.
func (r *Replies) InvalidChoice() string { return r.pick(poolInvalidChoice) }

// Saved returns one canned single-field-update confirmation.
func (r *Replies) Saved() string { return r.pick(poolSaved) }

// Greeting returns one canned idle greeting.
func (r *Replies) Greeting() string { return r.pick(poolGreeting) }

func (r *Replies) pick(pool []string) string {
	return pool[r.src.Intn(len(pool))]
}
