// Package bt pulls schedules from the BT/YouView metabroadcast API. The API
// speaks timestamps with a literal "Z" suffix that are really wall-clock
// times in the guide timezone, so parsing goes through the zone's offset
// rules rather than reading them as UTC.
package bt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fvepg/internal/app/epg"

	"go.uber.org/zap"
)

const (
	scheduleSource = "api.youview.tv"
	annotations    = "content.description"
)

type Config struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"` // e.g. https://voila.metabroadcast.com/4/schedules
	APIKey  string `json:"apiKey" yaml:"apiKey"`
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
		return nil, fmt.Errorf("bt: baseURL is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("bt: apiKey is required")
	}
	return &Source{
		fetcher: fetcher,
		config:  config,
		loc:     loc,
		logger:  zap.L(),
	}, nil
}

func (s *Source) Kind() epg.SourceKind {
	return epg.SourceBT
}

type scheduleResponse struct {
	Schedule struct {
		Entries []scheduleEntry `json:"entries"`
	} `json:"schedule"`
}

type scheduleEntry struct {
	Broadcast struct {
		TransmissionTime    string `json:"transmission_time"`
		TransmissionEndTime string `json:"transmission_end_time"`
	} `json:"broadcast"`
	Item struct {
		DisplayTitle struct {
			Title string `json:"title"`
		} `json:"display_title"`
		Description string `json:"description"`
		Image       string `json:"image"`
	} `json:"item"`
}

// Programmes fetches the schedule between the window boundaries and
// normalizes the entries.
func (s *Source) Programmes(ctx context.Context, channel *epg.Channel, window epg.TimeWindow) ([]epg.Programme, error) {
	params := url.Values{}
	params.Set("key", s.config.APIKey)
	params.Set("from", epg.Civil(window.Start))
	params.Set("to", epg.Civil(window.End))
	params.Set("source", scheduleSource)
	params.Set("annotations", annotations)

	status, body, err := s.fetcher.Fetch(ctx, fmt.Sprintf("%s/%s.json", s.config.BaseURL, channel.SiteID), params)
	if err != nil {
		return nil, err
	}
	if !epg.Fetched(status) {
		return nil, fmt.Errorf("%w: http status code: %d", epg.ErrNoData, status)
	}

	return s.parseSchedule(channel, body)
}

// parseSchedule normalizes one raw schedule payload.
func (s *Source) parseSchedule(channel *epg.Channel, body []byte) ([]epg.Programme, error) {
	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", epg.ErrFormat, err)
	}

	programmes := make([]epg.Programme, 0, len(resp.Schedule.Entries))
	for _, entry := range resp.Schedule.Entries {
		title := strings.TrimSpace(entry.Item.DisplayTitle.Title)
		if title == "" {
			return nil, &epg.AdapterError{Source: epg.SourceBT, Reason: "schedule entry has no title"}
		}

		start, err := s.parseWallClock(entry.Broadcast.TransmissionTime)
		if err != nil {
			return nil, err
		}
		stop, err := s.parseWallClock(entry.Broadcast.TransmissionEndTime)
		if err != nil {
			return nil, err
		}

		programmes = append(programmes, epg.Programme{
			Channel: channel.ID,
			Title:   title,
			Desc:    strings.TrimSpace(entry.Item.Description),
			Start:   start,
			Stop:    stop,
			Icon:    entry.Item.Image,
		})
	}
	return programmes, nil
}

// parseWallClock reads a "2006-01-02T15:04:05.000Z" timestamp whose digits
// are local time in the guide timezone, and returns the UTC instant.
func (s *Source) parseWallClock(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, &epg.AdapterError{Source: epg.SourceBT, Reason: "schedule entry has no transmission time"}
	}

	t, err := time.ParseInLocation("2006-01-02T15:04:05.000", strings.TrimSuffix(v, "Z"), s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad transmission time %q", epg.ErrFormat, v)
	}
	return t.UTC(), nil
}
