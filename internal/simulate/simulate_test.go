package simulate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/groundctl/groundctl/internal/api"
	apitesting "github.com/groundctl/groundctl/internal/api/testing"
	"github.com/groundctl/groundctl/internal/clock"
	"github.com/groundctl/groundctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPoster struct {
	mu     sync.Mutex
	events []telemetry.EventCreate
	failAt int
}

func (p *recordingPoster) PostEvent(ctx context.Context, e telemetry.EventCreate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAt > 0 && len(p.events)+1 == p.failAt {
		return errors.New("connection refused")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestSessionID(t *testing.T) {
	assert.Equal(t, "sim-1700000000", SessionID(time.Unix(1_700_000_000, 0)))
}

func TestGenerator_Profile(t *testing.T) {
	g := NewGenerator("sim-1", 42)
	assert.Equal(t, "sim-1", g.Session())

	var prevPressure float64
	for i := 0; i < 400; i++ {
		e := g.Next()
		assert.Equal(t, fmt.Sprintf("T+%d", i), e.Timestamp)
		assert.Equal(t, "sim-1", e.Identifier)
		assert.Greater(t, e.Velocity, 0.0)
		assert.LessOrEqual(t, e.Velocity, 305.0)
		assert.GreaterOrEqual(t, e.AirPressure, 1.0)
		assert.LessOrEqual(t, e.AirPressure, GroundPressure+0.5)
		if i == 0 {
			assert.InDelta(t, GroundPressure, e.AirPressure, 0.5)
		}
		if i == 60 {
			assert.Less(t, e.AirPressure, prevPressure, "pressure falls during the climb")
		}
		if i == 59 {
			prevPressure = e.AirPressure
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator("s", 7)
	b := NewGenerator("s", 7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestRun_Count(t *testing.T) {
	poster := &recordingPoster{}
	var seen []string
	sent, err := Run(context.Background(), Options{
		Poster:    poster,
		Generator: NewGenerator("s", 1),
		Interval:  time.Millisecond,
		Count:     3,
		OnEvent:   func(e telemetry.EventCreate) { seen = append(seen, e.Timestamp) },
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, []string{"T+0", "T+1", "T+2"}, seen)
}

func TestRun_PostFailure(t *testing.T) {
	poster := &recordingPoster{failAt: 2}
	sent, err := Run(context.Background(), Options{
		Poster:    poster,
		Generator: NewGenerator("s", 1),
		Interval:  time.Millisecond,
	})
	require.Error(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, err.Error(), "T+1")
}

func TestRun_StopsOnCancel(t *testing.T) {
	clk := clock.Fake(time.Unix(0, 0))
	poster := &recordingPoster{}
	ctx, cancel := context.WithCancel(context.Background())

	type result struct {
		sent int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		sent, err := Run(ctx, Options{Poster: poster, Generator: NewGenerator("s", 1), Clock: clk})
		done <- result{sent, err}
	}()

	clk.WaitForTimers(1)
	require.Eventually(t, func() bool { return poster.count() == 1 }, time.Second, time.Millisecond)
	clk.Advance(DefaultInterval)
	require.Eventually(t, func() bool { return poster.count() == 2 }, time.Second, time.Millisecond)

	cancel()
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, 2, r.sent)
	assert.Equal(t, 0, clk.PendingCount())
}

func TestRun_MissingPoster(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}

func TestRun_AgainstBackend(t *testing.T) {
	b := apitesting.NewBackend()
	defer b.Close()

	client, err := api.New(api.Options{BaseURL: b.URL()})
	require.NoError(t, err)

	sent, err := Run(context.Background(), Options{
		Poster:    client,
		Generator: NewGenerator("sim-test", 3),
		Interval:  time.Millisecond,
		Count:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, sent)

	events := b.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "T+3", events[0].Timestamp, "backend lists newest first")
	assert.Equal(t, "sim-test", events[0].Identifier)
}
