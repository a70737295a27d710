package sequence_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/sequence"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func TestNextFormat(t *testing.T) {
	gen := sequence.NewGeneratorWithClock(1, fixedClock)

	number, err := gen.Next(context.Background(), "con", func(context.Context, string) (bool, error) {
		return false, nil
	})

	assert.NoError(t, err)
	assert.Regexp(t, `^CON-2026-\d{4}$`, number)
}

func TestNextRetriesOnCollision(t *testing.T) {
	gen := sequence.NewGeneratorWithClock(1, fixedClock)

	calls := 0
	number, err := gen.Next(context.Background(), "CON", func(_ context.Context, candidate string) (bool, error) {
		calls++
		return calls == 1, nil
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, number)
	assert.Equal(t, 2, calls)
}

func TestNextExhaustsAfterMaxAttempts(t *testing.T) {
	gen := sequence.NewGeneratorWithClock(1, fixedClock)

	calls := 0
	_, err := gen.Next(context.Background(), "CON", func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})

	assert.ErrorIs(t, err, sequence.ErrExhausted)
	assert.Equal(t, 20, calls)
}

func TestNextPropagatesLookupError(t *testing.T) {
	gen := sequence.NewGeneratorWithClock(1, fixedClock)

	boom := fmt.Errorf("connection reset")
	_, err := gen.Next(context.Background(), "CON", func(context.Context, string) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestNextSequentialCallsDiffer(t *testing.T) {
	gen := sequence.NewGeneratorWithClock(7, fixedClock)

	issued := map[string]bool{}
	exists := func(_ context.Context, candidate string) (bool, error) {
		return issued[candidate], nil
	}

	for i := 0; i < 50; i++ {
		number, err := gen.Next(context.Background(), "CON", exists)
		assert.NoError(t, err)
		assert.False(t, issued[number], "number %s issued twice", number)
		issued[number] = true
	}
}
