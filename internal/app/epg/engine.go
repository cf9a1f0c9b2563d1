package epg

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultChannelConcurrency = 4

// Engine drives the whole aggregation run: for every channel it picks the
// adapter matching the channel's source kind, processes the channel's time
// windows, and assembles the results into one ordered timeline. Channels are
// independent and run on a bounded worker pool; each channel's assembler is
// the sole writer of that channel's result slot.
type Engine struct {
	sources  map[SourceKind]Source
	loc      *time.Location
	now      func() time.Time
	parallel int

	logger *zap.Logger
}

// NewEngine wires the configured source adapters. The now func exists so
// tests can pin the clock; pass nil for wall-clock time.
func NewEngine(sources []Source, loc *time.Location, parallel int, now func() time.Time) *Engine {
	byKind := make(map[SourceKind]Source, len(sources))
	for _, s := range sources {
		byKind[s.Kind()] = s
	}
	if parallel <= 0 {
		parallel = defaultChannelConcurrency
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		sources:  byKind,
		loc:      loc,
		now:      now,
		parallel: parallel,
		logger:   zap.L(),
	}
}

// Run aggregates the guide for every channel in the registry. A failed
// window is "no data", not an error; only cancellation aborts the run, and a
// cancelled run returns no partial guides.
func (e *Engine) Run(ctx context.Context, channels []Channel) ([]ChannelGuide, error) {
	results := make([][]Programme, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i := range channels {
		i := i
		g.Go(func() error {
			progs, err := e.runChannel(gctx, &channels[i])
			if err != nil {
				return err
			}
			results[i] = progs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	guides := make([]ChannelGuide, 0, len(channels))
	for i, ch := range channels {
		if results[i] == nil {
			continue
		}
		guides = append(guides, ChannelGuide{
			Channel:    ch,
			Programmes: results[i],
		})
	}
	return guides, nil
}

// runChannel processes one channel's windows in order and assembles the
// final timeline. Returns an error only when the run is cancelled.
func (e *Engine) runChannel(ctx context.Context, channel *Channel) ([]Programme, error) {
	source, ok := e.sources[channel.Kind]
	if !ok {
		e.logger.Warn("No adapter for the channel's source. Skip it.",
			zap.String("channel", channel.ID), zap.String("src", string(channel.Kind)))
		return nil, nil
	}

	var candidates []Programme
	for _, window := range Windows(channel.Kind, e.now(), e.loc) {
		progs, err := source.Programmes(ctx, channel, window)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Treat the window as empty and move on.
			e.logger.Warn("Failed to get the programme list for a window. Skip it.",
				zap.String("channel", channel.ID), zap.Time("windowStart", window.Start),
				zap.Error(err))
			continue
		}
		candidates = append(candidates, progs...)
	}

	programmes := AssembleTimeline(candidates)
	e.logger.Sugar().Infof("Channel %s: %d programmes assembled.", channel.ID, len(programmes))
	return programmes, nil
}
