package bbcradio

import (
	"testing"
	"time"

	"fvepg/internal/app/epg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func london(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	return loc
}

func newInferenceSource(t *testing.T) *Source {
	t.Helper()
	return &Source{
		config: &Config{
			BaseURL:     "https://schedules.example.com",
			EarlyCutoff: 7 * 60,
			LateCutoff:  30,
		},
		loc:    london(t),
		logger: zap.L(),
	}
}

func seg(label string, items ...scheduleItem) scheduleSegment {
	return scheduleSegment{Label: label, Items: items}
}

func item(hour, minute int, title string) scheduleItem {
	return scheduleItem{Minutes: hour*60 + minute, Title: title}
}

func TestInferProgrammesContiguous(t *testing.T) {
	s := newInferenceSource(t)
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	channel := &epg.Channel{ID: "BBCRadio4.uk"}

	segments := []scheduleSegment{
		seg("morning", item(9, 0, "A"), item(10, 30, "B")),
		seg("afternoon", item(13, 0, "C")),
		seg("evening", item(19, 0, "D"), item(21, 15, "E")),
	}
	next := item(6, 0, "Next Day Opener")

	programmes := s.inferProgrammes(channel, day, segments, &next)
	require.Len(t, programmes, 5)

	// Every stop is the next item's start: no gaps, no overlaps.
	for i := 0; i < len(programmes)-1; i++ {
		assert.Equal(t, programmes[i+1].Start, programmes[i].Stop,
			"programme %q should end where %q starts", programmes[i].Title, programmes[i+1].Title)
	}

	// The last item rolls over to the next day's first broadcast.
	last := programmes[len(programmes)-1]
	assert.Equal(t, time.Date(2024, 1, 11, 6, 0, 0, 0, london(t)).UTC(), last.Stop)
}

func TestFlattenDropsAdjacentDayEdges(t *testing.T) {
	s := newInferenceSource(t)

	flat := s.flatten([]scheduleSegment{
		seg("early", item(5, 30, "Night Owl"), item(7, 0, "Breakfast Dup")),
		seg("morning", item(9, 0, "Mid Morning")),
		seg("late", item(0, 30, "Midnight Edge"), item(0, 45, "Next Page Dup")),
	})

	// 07:00 is at the early cutoff and is dropped; 00:30 is at the late
	// cutoff and is kept (only strictly later items are dropped).
	require.Len(t, flat, 3)
	assert.Equal(t, "Night Owl", flat[0].item.Title)
	assert.Equal(t, "Mid Morning", flat[1].item.Title)
	assert.Equal(t, "Midnight Edge", flat[2].item.Title)
}

func TestInferProgrammesLateSegmentRollover(t *testing.T) {
	// Synthetic page from the edge of the layout: an early item just before
	// the cutoff and a late item just inside it.
	s := newInferenceSource(t)
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	channel := &epg.Channel{ID: "BBCRadio4.uk"}

	segments := []scheduleSegment{
		seg("early", item(6, 50, "A")),
		seg("late", item(0, 10, "B")),
	}
	next := item(6, 0, "C")

	programmes := s.inferProgrammes(channel, day, segments, &next)
	require.Len(t, programmes, 2)

	loc := london(t)

	// A is bounded by B's start on the same calendar day.
	assert.Equal(t, "A", programmes[0].Title)
	assert.Equal(t, time.Date(2024, 1, 10, 6, 50, 0, 0, loc).UTC(), programmes[0].Start)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 10, 0, 0, loc).UTC(), programmes[0].Stop)
	assert.Equal(t, programmes[1].Start, programmes[0].Stop)

	// B is bounded by C's start rolled forward one day.
	assert.Equal(t, "B", programmes[1].Title)
	assert.Equal(t, time.Date(2024, 1, 11, 6, 0, 0, 0, loc).UTC(), programmes[1].Stop)
}

func TestInferProgrammesWithoutNextDaySkipsLast(t *testing.T) {
	s := newInferenceSource(t)
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	channel := &epg.Channel{ID: "BBCRadio4.uk"}

	segments := []scheduleSegment{
		seg("morning", item(9, 0, "A"), item(11, 0, "B")),
	}

	// No next-day page: the final item cannot be bounded and is skipped,
	// the rest still come out.
	programmes := s.inferProgrammes(channel, day, segments, nil)
	require.Len(t, programmes, 1)
	assert.Equal(t, "A", programmes[0].Title)
}

func TestInferProgrammesAcrossSpringForward(t *testing.T) {
	// 2024-03-31 is the London spring-forward day: 00:30 is still GMT,
	// 09:00 is BST.
	s := newInferenceSource(t)
	day := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	channel := &epg.Channel{ID: "BBCRadio4.uk"}

	segments := []scheduleSegment{
		seg("morning", item(9, 0, "Morning Show")),
		seg("late", item(0, 30, "Night Shift")),
	}
	next := item(6, 0, "Opener")

	programmes := s.inferProgrammes(channel, day, segments, &next)
	require.Len(t, programmes, 2)

	assert.Equal(t, time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC), programmes[0].Start)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 30, 0, 0, time.UTC), programmes[0].Stop)
}

func TestNextItemAfter(t *testing.T) {
	flat := []flatItem{
		{segment: 0, item: item(9, 0, "A")},
		{segment: 0, item: item(10, 0, "B")},
		{segment: 1, item: item(13, 0, "C")},
	}
	next := item(6, 0, "D")

	stop, ok := nextItemAfter(flat, 0, &next)
	require.True(t, ok)
	assert.Equal(t, stopTime{minutes: 10 * 60}, stop)

	stop, ok = nextItemAfter(flat, 2, &next)
	require.True(t, ok)
	assert.Equal(t, stopTime{minutes: 6 * 60, nextDay: true}, stop)

	_, ok = nextItemAfter(flat, 2, nil)
	assert.False(t, ok)
}
