package entity

// EncodedChunk is an opaque binary fragment emitted by the encoder.
// Chunks are append-only; their emission order is the clip's playback order.
type EncodedChunk []byte

// Clip is a finalized binary clip: the in-order concatenation of every
// chunk from one capture session. Immutable once assembled.
type Clip []byte

// AssembleClip concatenates chunks in emission order. Returns
// ErrEmptyCapture when no chunks were emitted, never a zero-byte clip.
func AssembleClip(chunks []EncodedChunk) (Clip, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCapture
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total == 0 {
		return nil, ErrEmptyCapture
	}
	clip := make(Clip, 0, total)
	for _, c := range chunks {
		clip = append(clip, c...)
	}
	return clip, nil
}
