package sequence

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ErrExhausted is returned when every attempt produced a number that
// already exists in storage.
var ErrExhausted = errors.New("identifier space exhausted after max attempts")

const maxAttempts = 20

// ExistsFunc reports whether a candidate number is already taken. A
// duplicate-key error from a concurrent insert is the caller's signal
// to retry, so implementations only need a point-in-time answer.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// Generator issues human-readable unique numbers of the form
// PREFIX-YEAR-NNNN, checking each candidate against storage.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
	now  func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
}

// NewGeneratorWithClock is for tests that need a fixed year.
func NewGeneratorWithClock(seed int64, now func() time.Time) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)),
		now:  now,
	}
}

// Next returns a fresh unique number. Collisions trigger another draw,
// up to maxAttempts, then ErrExhausted.
func (g *Generator) Next(ctx context.Context, prefix string, exists ExistsFunc) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	year := g.now().Year()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s-%d-%04d", prefix, year, g.suffix())
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: prefix %s", ErrExhausted, prefix)
}

func (g *Generator) suffix() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Intn(10000)
}
