package media

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func clockSourceForTest(duration float64) (*clockSource, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	src := newClockSource("unused.mp4", Metadata{Duration: duration, Width: 1920, Height: 1080})
	src.now = clock.now
	return src, clock
}

func TestPositionAdvancesOnlyWhilePlaying(t *testing.T) {
	src, clock := clockSourceForTest(60)

	assert.Equal(t, 0.0, src.Position())

	clock.advance(5 * time.Second)
	assert.Equal(t, 0.0, src.Position(), "paused source does not move")

	src.Play(1.0)
	clock.advance(2 * time.Second)
	assert.InDelta(t, 2.0, src.Position(), 1e-9)

	src.Pause()
	clock.advance(10 * time.Second)
	assert.InDelta(t, 2.0, src.Position(), 1e-9, "pause freezes the position")

	src.Play(1.0)
	clock.advance(3 * time.Second)
	assert.InDelta(t, 5.0, src.Position(), 1e-9)
}

func TestPositionRespectsPlaybackSpeed(t *testing.T) {
	src, clock := clockSourceForTest(60)

	src.Play(2.0)
	clock.advance(4 * time.Second)
	assert.InDelta(t, 8.0, src.Position(), 1e-9)
}

func TestPositionCapsAtDuration(t *testing.T) {
	src, clock := clockSourceForTest(10)

	src.Play(1.0)
	clock.advance(25 * time.Second)
	assert.InDelta(t, 10.0, src.Position(), 1e-9)
}

func TestBoundsAndDuration(t *testing.T) {
	src, _ := clockSourceForTest(42.5)

	w, h := src.Bounds()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
	assert.Equal(t, 42.5, src.Duration())
}

func TestClampDecodeTimeStaysBeforeEOF(t *testing.T) {
	// A decode at exactly the duration must land on the last frame, not
	// past it.
	assert.InDelta(t, 10.0-eofBackoff, clampDecodeTime(10, 10), 1e-9)
	assert.InDelta(t, 10.0-eofBackoff, clampDecodeTime(9.99, 10), 1e-9)

	// Interior timestamps pass through untouched.
	assert.Equal(t, 4.2, clampDecodeTime(4.2, 10))
	assert.Equal(t, 0.0, clampDecodeTime(0, 10))

	// Sources shorter than one frame interval decode from the start.
	assert.Equal(t, 0.0, clampDecodeTime(0.01, 0.02))
}

func TestPlayTwiceDoesNotResetPosition(t *testing.T) {
	src, clock := clockSourceForTest(60)

	src.Play(1.0)
	clock.advance(3 * time.Second)
	src.Play(1.0)
	clock.advance(2 * time.Second)
	assert.InDelta(t, 5.0, src.Position(), 1e-9)
}
