package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFake_Now(t *testing.T) {
	c := Fake(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(3 * time.Second)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
}

func TestFake_AfterFunc(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(2*time.Second, func() { fired++ })

	assert.Equal(t, 1, c.PendingCount())

	c.Advance(1999 * time.Millisecond)
	assert.Equal(t, 0, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.PendingCount())

	c.Advance(10 * time.Second)
	assert.Equal(t, 1, fired, "one-shot timers fire once")
}

func TestFake_AfterFuncStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports inactive")
	assert.Equal(t, 0, c.PendingCount())

	c.Advance(5 * time.Second)
	assert.False(t, fired)
}

func TestFake_AfterFuncNonPositive(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(0, func() { fired = true })

	assert.True(t, fired)
	assert.False(t, timer.Stop())
}

func TestFake_CallbackCanScheduleTimer(t *testing.T) {
	c := Fake(epoch)
	var order []string
	c.AfterFunc(time.Second, func() {
		order = append(order, "first")
		c.AfterFunc(time.Second, func() { order = append(order, "second") })
	})

	c.Advance(time.Second)
	assert.Equal(t, []string{"first"}, order)
	assert.Equal(t, 1, c.PendingCount())

	c.Advance(time.Second)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestFake_DeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	c.Advance(5 * time.Second)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestFake_Ticker(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)

	c.Advance(time.Second)
	select {
	case got := <-ticker.C:
		assert.Equal(t, epoch.Add(time.Second), got)
	default:
		t.Fatal("expected a tick")
	}

	ticker.Stop()
	assert.Equal(t, 0, c.PendingCount())

	c.Advance(time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker must not tick")
	default:
	}
}

func TestFake_TickerDropsWhenFull(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)

	c.Advance(3 * time.Second)
	require.Len(t, ticker.C, 1)
	<-ticker.C
	assert.Len(t, ticker.C, 0)
}

func TestFake_NewTickerPanicsOnZero(t *testing.T) {
	c := Fake(epoch)
	assert.Panics(t, func() { c.NewTicker(0) })
}

func TestFake_WaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})

	go func() {
		c.AfterFunc(time.Second, func() {})
		close(done)
	}()

	c.WaitForTimers(1)
	<-done
	assert.Equal(t, 1, c.PendingCount())
}

func TestReal(t *testing.T) {
	c := Real()
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)

	fired := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("real AfterFunc did not fire")
	}

	ticker := c.NewTicker(time.Millisecond)
	defer ticker.Stop()
	select {
	case <-ticker.C:
	case <-time.After(2 * time.Second):
		t.Fatal("real ticker did not tick")
	}
}
