// Package freeview pulls listings from the Freeview guide API. Listings are
// fetched per network and filtered down to the channel's own service id; a
// second per-programme detail lookup enriches description and icon. Detail
// lookups are best-effort: a failed or unparseable detail response keeps the
// basic candidate.
package freeview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"fvepg/internal/app/epg"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultDetailConcurrency = 4
	defaultDetailRate        = 8 // detail lookups per second
)

type Config struct {
	BaseURL          string  `json:"baseURL" yaml:"baseURL"`                   // e.g. https://www.freeview.co.uk/api
	ImageQuerySuffix string  `json:"imageQuerySuffix" yaml:"imageQuerySuffix"` // appended to every chosen icon URL
	DetailParallel   int     `json:"detailParallel" yaml:"detailParallel"`     // concurrent detail lookups
	DetailRate       float64 `json:"detailRate" yaml:"detailRate"`             // detail lookups per second
}

type Source struct {
	fetcher epg.Fetcher
	config  *Config
	limiter *rate.Limiter

	logger *zap.Logger
}

var _ epg.Source = (*Source)(nil)

func NewSource(fetcher epg.Fetcher, config *Config) (*Source, error) {
	if config == nil || config.BaseURL == "" {
		return nil, fmt.Errorf("freeview: baseURL is required")
	}
	if config.DetailParallel <= 0 {
		config.DetailParallel = defaultDetailConcurrency
	}
	if config.DetailRate <= 0 {
		config.DetailRate = defaultDetailRate
	}
	return &Source{
		fetcher: fetcher,
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.DetailRate), 1),
		logger:  zap.L(),
	}, nil
}

func (s *Source) Kind() epg.SourceKind {
	return epg.SourceFreeview
}

type guideResponse struct {
	Data struct {
		Programs []guideProgram `json:"programs"`
	} `json:"data"`
}

type guideProgram struct {
	ServiceID string       `json:"service_id"`
	Events    []guideEvent `json:"events"`
}

type guideEvent struct {
	ProgramID string `json:"program_id"`
	MainTitle string `json:"main_title"`
	Image     string `json:"image_url"` // fallback icon when the detail lookup has none
	StartTime string `json:"start_time"`
	Duration  string `json:"duration"`
}

type detailResponse struct {
	Data struct {
		Programs []struct {
			Synopsis struct {
				Medium string `json:"medium"`
			} `json:"synopsis"`
			Image string `json:"image_url"`
		} `json:"programs"`
	} `json:"data"`
}

// Programmes fetches the network's guide for the window's day, keeps the
// channel's own events and enriches them with per-programme details.
func (s *Source) Programmes(ctx context.Context, channel *epg.Channel, window epg.TimeWindow) ([]epg.Programme, error) {
	params := url.Values{}
	params.Set("nid", channel.NetworkID)
	params.Set("start", fmt.Sprintf("%d", window.Day().Unix()))

	status, body, err := s.fetcher.Fetch(ctx, s.config.BaseURL+"/tv-guide", params)
	if err != nil {
		return nil, err
	}
	if !epg.Fetched(status) {
		return nil, fmt.Errorf("%w: http status code: %d", epg.ErrNoData, status)
	}

	events, err := filterChannelEvents(channel, body)
	if err != nil {
		return nil, err
	}

	// Normalize first, enrich after: the transformation stays testable
	// without the detail endpoint.
	programmes := make([]epg.Programme, 0, len(events))
	for _, event := range events {
		p, err := s.normalizeEvent(channel, event)
		if err != nil {
			return nil, err
		}
		programmes = append(programmes, p)
	}

	s.enrich(ctx, channel, events, programmes)
	return programmes, nil
}

// filterChannelEvents parses the guide payload and keeps the events of the
// channel's own service id.
func filterChannelEvents(channel *epg.Channel, body []byte) ([]guideEvent, error) {
	var resp guideResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", epg.ErrFormat, err)
	}

	for _, program := range resp.Data.Programs {
		if program.ServiceID == channel.SiteID {
			return program.Events, nil
		}
	}
	return nil, fmt.Errorf("%w: no guide entry for service %s", epg.ErrFormat, channel.SiteID)
}

// normalizeEvent builds the basic candidate: stop is start plus the event's
// ISO duration.
func (s *Source) normalizeEvent(channel *epg.Channel, event guideEvent) (epg.Programme, error) {
	if event.MainTitle == "" {
		return epg.Programme{}, &epg.AdapterError{Source: epg.SourceFreeview, Reason: "guide event has no title"}
	}
	if event.StartTime == "" || event.Duration == "" {
		return epg.Programme{}, &epg.AdapterError{Source: epg.SourceFreeview, Reason: "guide event has no start time or duration"}
	}

	start, err := time.Parse(time.RFC3339, event.StartTime)
	if err != nil {
		return epg.Programme{}, fmt.Errorf("%w: bad start time %q", epg.ErrFormat, event.StartTime)
	}

	duration, err := epg.ParseDuration(event.Duration)
	if err != nil {
		return epg.Programme{}, err
	}

	start = start.UTC()
	return epg.Programme{
		Channel: channel.ID,
		Title:   event.MainTitle,
		Start:   start,
		Stop:    start.Add(duration),
		Icon:    s.icon(event.Image, ""),
	}, nil
}

// enrich runs the per-programme detail lookups on a bounded, rate-limited
// pool and fills description and icon in place. Failures leave the basic
// candidate untouched.
func (s *Source) enrich(ctx context.Context, channel *epg.Channel, events []guideEvent, programmes []epg.Programme) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.DetailParallel)
	for i := range programmes {
		i := i
		if events[i].ProgramID == "" {
			continue
		}
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}

			desc, image, err := s.fetchDetail(gctx, channel, events[i].ProgramID)
			if err != nil {
				s.logger.Warn("Failed to get programme details. Keep the basic candidate.",
					zap.String("channel", channel.ID), zap.String("programId", events[i].ProgramID),
					zap.Error(err))
				return nil
			}

			programmes[i].Desc = desc
			programmes[i].Icon = s.icon(image, events[i].Image)
			return nil
		})
	}
	// Errors only arise from cancellation; the candidates already built are
	// still returned by the caller and dropped with the run.
	_ = g.Wait()
}

// fetchDetail performs the secondary per-programme lookup.
func (s *Source) fetchDetail(ctx context.Context, channel *epg.Channel, programID string) (string, string, error) {
	params := url.Values{}
	params.Set("sid", channel.SiteID)
	params.Set("pid", programID)

	status, body, err := s.fetcher.Fetch(ctx, s.config.BaseURL+"/program", params)
	if err != nil {
		return "", "", err
	}
	if !epg.Fetched(status) {
		return "", "", fmt.Errorf("%w: http status code: %d", epg.ErrNoData, status)
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", fmt.Errorf("%w: %w", epg.ErrFormat, err)
	}
	if len(resp.Data.Programs) == 0 {
		return "", "", fmt.Errorf("%w: empty detail response", epg.ErrFormat)
	}

	detail := resp.Data.Programs[0]
	return detail.Synopsis.Medium, detail.Image, nil
}

// icon picks the preferred image URL (detail image over listing fallback)
// and appends the fixed query suffix.
func (s *Source) icon(image, fallback string) string {
	chosen := image
	if chosen == "" {
		chosen = fallback
	}
	if chosen == "" {
		return ""
	}
	return chosen + s.config.ImageQuerySuffix
}
