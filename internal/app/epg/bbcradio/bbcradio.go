// Package bbcradio scrapes BBC radio schedule pages. A page covers one
// (station, calendar day) pair and groups its broadcasts into labeled
// time-of-day segments whose items carry only an on-air start time; stop
// times are inferred from the next item in broadcast order, looking across
// segment and day boundaries (see boundary.go).
package bbcradio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fvepg/internal/app/epg"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Segment labels in broadcast order, as rendered by the schedule pages.
var segmentLabels = map[string]bool{
	"early":     true,
	"morning":   true,
	"afternoon": true,
	"evening":   true,
	"late":      true,
}

type Config struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"` // e.g. https://www.bbc.co.uk/schedules

	// Edge-item cutoffs, as minutes since midnight. Items in the "early"
	// segment starting at or after EarlyCutoff, and items in the "late"
	// segment starting after LateCutoff, belong to the adjacent day's page
	// and are dropped as duplicates. Tuned to the current page layout, hence
	// configurable.
	EarlyCutoff int `json:"-" yaml:"-"`
	LateCutoff  int `json:"-" yaml:"-"`
}

type Source struct {
	fetcher epg.Fetcher
	config  *Config
	loc     *time.Location

	logger *zap.Logger
}

var _ epg.Source = (*Source)(nil)

func NewSource(fetcher epg.Fetcher, config *Config, loc *time.Location) (*Source, error) {
	if config == nil || config.BaseURL == "" {
		return nil, fmt.Errorf("bbcradio: baseURL is required")
	}
	return &Source{
		fetcher: fetcher,
		config:  config,
		loc:     loc,
		logger:  zap.L(),
	}, nil
}

func (s *Source) Kind() epg.SourceKind {
	return epg.SourceBBCRadio
}

// scheduleSegment is a read-only view over one labeled band of a day page.
type scheduleSegment struct {
	Label string
	Items []scheduleItem
}

// scheduleItem is one start-only listing entry.
type scheduleItem struct {
	Minutes  int // start time as minutes since midnight
	Title    string
	Synopsis string
	Icon     string
}

// Programmes scrapes the window's day page plus the following day's page
// (needed to bound the last item) and runs boundary inference.
func (s *Source) Programmes(ctx context.Context, channel *epg.Channel, window epg.TimeWindow) ([]epg.Programme, error) {
	day := window.Day()

	segments, err := s.fetchDay(ctx, channel, day)
	if err != nil {
		return nil, err
	}

	// The next day's page only serves to bound the last item. If it cannot
	// be fetched the last item is skipped, not the whole window.
	var nextDayFirst *scheduleItem
	if nextSegments, err := s.fetchDay(ctx, channel, day.AddDate(0, 0, 1)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Failed to get the next day's schedule page.",
			zap.String("channel", channel.ID), zap.Error(err))
	} else if len(nextSegments) > 0 && len(nextSegments[0].Items) > 0 {
		nextDayFirst = &nextSegments[0].Items[0]
	}

	return s.inferProgrammes(channel, day, segments, nextDayFirst), nil
}

// fetchDay downloads and parses one (station, day) schedule page.
func (s *Source) fetchDay(ctx context.Context, channel *epg.Channel, day time.Time) ([]scheduleSegment, error) {
	url := fmt.Sprintf("%s/%s/%s", s.config.BaseURL, channel.SiteID, day.Format("2006/01/02"))
	status, body, err := s.fetcher.Fetch(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if !epg.Fetched(status) {
		return nil, fmt.Errorf("%w: http status code: %d", epg.ErrNoData, status)
	}

	return parseSchedulePage(body)
}

// parseSchedulePage extracts the ordered segments from a day page.
func parseSchedulePage(body []byte) ([]scheduleSegment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", epg.ErrFormat, err)
	}

	var segments []scheduleSegment
	var parseErr error
	doc.Find("section[id]").EachWithBreak(func(_ int, sec *goquery.Selection) bool {
		label := strings.ToLower(sec.AttrOr("id", ""))
		if !segmentLabels[label] {
			return true
		}

		segment := scheduleSegment{Label: label}
		sec.Find("div.broadcast").EachWithBreak(func(_ int, block *goquery.Selection) bool {
			item, err := parseBroadcastBlock(block)
			if err != nil {
				parseErr = err
				return false
			}
			segment.Items = append(segment.Items, item)
			return true
		})
		if parseErr != nil {
			return false
		}

		segments = append(segments, segment)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no schedule segments in page", epg.ErrFormat)
	}
	return segments, nil
}

// parseBroadcastBlock extracts one item block's start time and metadata.
func parseBroadcastBlock(block *goquery.Selection) (scheduleItem, error) {
	startText := strings.TrimSpace(block.Find("span.timezone--time").First().Text())
	minutes, err := parseClock(startText)
	if err != nil {
		return scheduleItem{}, err
	}

	title := strings.TrimSpace(block.Find("span.programme__title").First().Text())
	if title == "" {
		return scheduleItem{}, &epg.AdapterError{Source: epg.SourceBBCRadio, Reason: "broadcast block has no title"}
	}

	return scheduleItem{
		Minutes:  minutes,
		Title:    title,
		Synopsis: strings.TrimSpace(block.Find("p.programme__synopsis").First().Text()),
		Icon:     block.Find("img.image").First().AttrOr("src", ""),
	}, nil
}

// parseClock converts an "hh:mm" on-air time into minutes since midnight.
func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("%w: bad on-air time %q", epg.ErrFormat, v)
	}
	return t.Hour()*60 + t.Minute(), nil
}
