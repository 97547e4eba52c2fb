package media

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/entity"
)

func TestChunkCollectorPreservesOrder(t *testing.T) {
	c := &chunkCollector{}
	for _, p := range [][]byte{{1}, {2, 2}, {3, 3, 3}} {
		n, err := c.Write(p)
		require.NoError(t, err)
		assert.Equal(t, len(p), n)
	}

	clip, err := entity.AssembleClip(c.Chunks())
	require.NoError(t, err)
	assert.Equal(t, entity.Clip{1, 2, 2, 3, 3, 3}, clip)
}

func TestChunkCollectorCopiesInput(t *testing.T) {
	c := &chunkCollector{}
	buf := []byte{7, 7}
	_, err := c.Write(buf)
	require.NoError(t, err)

	buf[0] = 9
	assert.Equal(t, entity.EncodedChunk{7, 7}, c.Chunks()[0])
}

func TestChunkCollectorSnapshotDoesNotAlias(t *testing.T) {
	c := &chunkCollector{}
	c.Write([]byte{1})
	c.Write([]byte{2})

	snap := c.Chunks()
	snap[0] = entity.EncodedChunk{9}

	assert.Equal(t, []entity.EncodedChunk{{1}, {2}}, c.Chunks())
}

// testSession builds a VP9Session around a drained pipe instead of a real
// ffmpeg process.
func testSession(t *testing.T, spec entity.OutputSpec, now func() time.Time) (*VP9Session, *chunkCollector) {
	t.Helper()
	pr, pw := io.Pipe()
	go io.Copy(io.Discard, pr)

	collector := &chunkCollector{}
	s := &VP9Session{
		spec:      spec,
		input:     pw,
		collector: collector,
		eg:        &errgroup.Group{},
		interval:  time.Second / 30,
		now:       now,
		logger:    zap.NewNop(),
	}
	return s, collector
}

func TestStopTwiceReturnsSameClip(t *testing.T) {
	s, collector := testSession(t, entity.NativeOutput(2, 2), time.Now)
	collector.Write([]byte{1, 2})
	collector.Write([]byte{3})

	ctx := context.Background()
	first, err := s.Stop(ctx)
	require.NoError(t, err)

	// Chunk arriving after finalize must not alter the result.
	collector.Write([]byte{9})

	second, err := s.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, entity.Clip{1, 2, 3}, second)
}

func TestStopWithNoChunksFails(t *testing.T) {
	s, _ := testSession(t, entity.NativeOutput(2, 2), time.Now)

	clip, err := s.Stop(context.Background())
	assert.ErrorIs(t, err, entity.ErrEmptyCapture)
	assert.Nil(t, clip)

	// Idempotent on the failure path too.
	_, err = s.Stop(context.Background())
	assert.ErrorIs(t, err, entity.ErrEmptyCapture)
}

func TestWriteFrameSamplesAtFixedCadence(t *testing.T) {
	var mu sync.Mutex
	clock := time.Unix(0, 0)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	advance := func(d time.Duration) {
		mu.Lock()
		clock = clock.Add(d)
		mu.Unlock()
	}

	pr, pw := io.Pipe()
	written := make(chan int, 16)
	go func() {
		buf := make([]byte, 4*2*2)
		for {
			n, err := io.ReadFull(pr, buf)
			if err != nil {
				close(written)
				return
			}
			written <- n
		}
	}()

	s := &VP9Session{
		spec:      entity.NativeOutput(2, 2),
		input:     pw,
		collector: &chunkCollector{},
		eg:        &errgroup.Group{},
		interval:  time.Second / 30,
		now:       now,
		logger:    zap.NewNop(),
	}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	ctx := context.Background()

	// First frame passes, a burst within the same interval is dropped.
	require.NoError(t, s.WriteFrame(ctx, img))
	require.NoError(t, s.WriteFrame(ctx, img))
	require.NoError(t, s.WriteFrame(ctx, img))

	advance(40 * time.Millisecond)
	require.NoError(t, s.WriteFrame(ctx, img))
	pw.Close()

	count := 0
	for range written {
		count++
	}
	assert.Equal(t, 2, count, "only one frame per sample interval reaches the encoder")
}

func TestWriteFrameAfterStopFails(t *testing.T) {
	s, collector := testSession(t, entity.NativeOutput(2, 2), time.Now)
	collector.Write([]byte{1})

	_, err := s.Stop(context.Background())
	require.NoError(t, err)

	err = s.WriteFrame(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))
	assert.Error(t, err)
}
