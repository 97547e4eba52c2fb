package entity

import (
	"fmt"
	"sort"
)

// SubtitleCue is a timed caption entry. Cues are ordered by start time;
// overlap between cues is allowed.
type SubtitleCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func (c SubtitleCue) Validate() error {
	if c.Start < 0 {
		return fmt.Errorf("cue start %.3f is negative", c.Start)
	}
	if c.Start >= c.End {
		return fmt.Errorf("cue start %.3f not before end %.3f", c.Start, c.End)
	}
	return nil
}

// SortCues orders cues by start time in place.
func SortCues(cues []SubtitleCue) {
	sort.Slice(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})
}

// ValidateCues checks every cue and that the list is sorted by start.
func ValidateCues(cues []SubtitleCue) error {
	for i, c := range cues {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("cue %d: %w", i, err)
		}
		if i > 0 && cues[i-1].Start > c.Start {
			return fmt.Errorf("cue %d out of order", i)
		}
	}
	return nil
}
