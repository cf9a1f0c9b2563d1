package epg

import (
	"slices"

	"go.uber.org/zap"
)

type programmeKey struct {
	channel string
	start   int64
}

// AssembleTimeline merges one channel's candidates across all time windows
// into an ordered timeline. Candidates must arrive in window order: when two
// share a (channel, start) pair the later window's candidate wins, since a
// later fetch may carry updated metadata. Candidates violating start < stop
// or missing required fields indicate an adapter bug and are dropped with a
// warning. Gaps between adapters' outputs are left alone.
func AssembleTimeline(candidates []Programme) []Programme {
	logger := zap.L()

	seen := make(map[programmeKey]int, len(candidates))
	result := make([]Programme, 0, len(candidates))
	for _, p := range candidates {
		if p.Channel == "" || p.Title == "" {
			logger.Warn("Dropping a programme with missing required fields.",
				zap.String("channel", p.Channel), zap.Time("start", p.Start))
			continue
		}
		if !p.Start.Before(p.Stop) {
			logger.Warn("Dropping a programme that violates start < stop.",
				zap.String("channel", p.Channel), zap.String("title", p.Title),
				zap.Time("start", p.Start), zap.Time("stop", p.Stop))
			continue
		}

		key := programmeKey{channel: p.Channel, start: p.Start.Unix()}
		if i, ok := seen[key]; ok {
			// Same slot fetched again in a later window: replace in place.
			result[i] = p
			continue
		}
		seen[key] = len(result)
		result = append(result, p)
	}

	slices.SortFunc(result, func(a, b Programme) int {
		return a.Start.Compare(b.Start)
	})
	return result
}
