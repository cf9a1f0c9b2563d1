package bbcradio

import (
	"time"

	"fvepg/internal/app/epg"

	"go.uber.org/zap"
)

// flatItem is one retained listing entry in the day's flattened broadcast
// order, remembering which segment it came from.
type flatItem struct {
	segment int // index into the retained segment order
	item    scheduleItem
}

// stopTime is the resolved end boundary of one flattened item.
type stopTime struct {
	minutes int  // minutes since midnight
	nextDay bool // boundary lies on the following calendar day
}

// flatten drops edge items that belong to the adjacent day's page and
// returns the rest in broadcast order. "early" items at or after the early
// cutoff and "late" items after the late cutoff appear correctly on the
// neighbouring page, so dropping them here is dedup rather than data loss.
func (s *Source) flatten(segments []scheduleSegment) []flatItem {
	var flat []flatItem
	for segIdx, segment := range segments {
		for _, item := range segment.Items {
			if segment.Label == "early" && item.Minutes >= s.config.EarlyCutoff {
				continue
			}
			if segment.Label == "late" && item.Minutes > s.config.LateCutoff {
				continue
			}
			flat = append(flat, flatItem{segment: segIdx, item: item})
		}
	}
	return flat
}

// nextItemAfter resolves the stop boundary of flat[pos]: the start of the
// next retained item on the same day, or for the day's last item the start
// of the next day's first broadcast rolled forward one day. Returns false
// when the item cannot be bounded.
func nextItemAfter(flat []flatItem, pos int, nextDayFirst *scheduleItem) (stopTime, bool) {
	if pos < len(flat)-1 {
		// A single retained item in the final segment cannot bound its
		// predecessors there; skip rather than guess.
		last := flat[len(flat)-1].segment
		if flat[pos].segment == last && segmentCount(flat, last) == 1 {
			return stopTime{}, false
		}
		return stopTime{minutes: flat[pos+1].item.Minutes}, true
	}

	if nextDayFirst == nil {
		return stopTime{}, false
	}
	return stopTime{minutes: nextDayFirst.Minutes, nextDay: true}, true
}

// segmentCount counts the retained items of one segment.
func segmentCount(flat []flatItem, segment int) int {
	n := 0
	for _, f := range flat {
		if f.segment == segment {
			n++
		}
	}
	return n
}

// inferProgrammes turns one day's segments into bounded programme
// candidates. For consecutive emitted items A and B of the same day,
// A.Stop == B.Start: the inferred timeline is contiguous except at skipped
// items.
func (s *Source) inferProgrammes(channel *epg.Channel, day time.Time, segments []scheduleSegment, nextDayFirst *scheduleItem) []epg.Programme {
	flat := s.flatten(segments)

	programmes := make([]epg.Programme, 0, len(flat))
	for pos, f := range flat {
		stop, ok := nextItemAfter(flat, pos, nextDayFirst)
		if !ok {
			s.logger.Warn("A schedule item cannot be bounded. Skip it.",
				zap.String("channel", channel.ID), zap.Time("day", day),
				zap.String("title", f.item.Title), zap.Error(epg.ErrDataIncomplete))
			continue
		}

		stopDay := day
		if stop.nextDay {
			stopDay = day.AddDate(0, 0, 1)
		}

		programmes = append(programmes, epg.Programme{
			Channel: channel.ID,
			Title:   f.item.Title,
			Desc:    f.item.Synopsis,
			Start:   s.at(day, f.item.Minutes),
			Stop:    s.at(stopDay, stop.minutes),
			Icon:    f.item.Icon,
		})
	}
	return programmes
}

// at materializes a minutes-since-midnight offset on the given calendar day
// in the guide timezone, normalized to UTC. Going through time.Date keeps
// daylight-saving days correct.
func (s *Source) at(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, s.loc).UTC()
}
