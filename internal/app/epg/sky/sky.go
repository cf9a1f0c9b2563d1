// Package sky pulls listings from the Sky EPG services API. Items carry an
// epoch start and a duration in minutes; icons are built by templating the
// item's image id into a static base URL.
package sky

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fvepg/internal/app/epg"

	"go.uber.org/zap"
)

const windowSeconds = 86400

type Config struct {
	BaseURL      string `json:"baseURL" yaml:"baseURL"`           // e.g. https://epgservices.sky.com/5.2.2/api/2.0/channel/json
	ImageBaseURL string `json:"imageBaseURL" yaml:"imageBaseURL"` // icon id is appended to this
}

type Source struct {
	fetcher epg.Fetcher
	config  *Config

	logger *zap.Logger
}

var _ epg.Source = (*Source)(nil)

func NewSource(fetcher epg.Fetcher, config *Config) (*Source, error) {
	if config == nil || config.BaseURL == "" {
		return nil, fmt.Errorf("sky: baseURL is required")
	}
	return &Source{
		fetcher: fetcher,
		config:  config,
		logger:  zap.L(),
	}, nil
}

func (s *Source) Kind() epg.SourceKind {
	return epg.SourceSky
}

// listings is keyed by the service id the listing was requested for.
type listingResponse struct {
	Listings map[string][]listingItem `json:"listings"`
}

type listingItem struct {
	Title    string  `json:"t"`
	Desc     string  `json:"d"`
	Start    int64   `json:"s"`
	Duration []int64 `json:"m"` // [_, minutes]
	Img      string  `json:"img"`
}

// Programmes fetches one 24h window of listings and normalizes them.
func (s *Source) Programmes(ctx context.Context, channel *epg.Channel, window epg.TimeWindow) ([]epg.Programme, error) {
	url := fmt.Sprintf("%s/%s/%d/%d/4", s.config.BaseURL, channel.SiteID, window.EpochSeconds(), windowSeconds)
	status, body, err := s.fetcher.Fetch(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if !epg.Fetched(status) {
		return nil, fmt.Errorf("%w: http status code: %d", epg.ErrNoData, status)
	}

	return s.parseListings(channel, body)
}

// parseListings normalizes one raw listing payload.
func (s *Source) parseListings(channel *epg.Channel, body []byte) ([]epg.Programme, error) {
	var resp listingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", epg.ErrFormat, err)
	}

	items, ok := resp.Listings[channel.SiteID]
	if !ok {
		return nil, fmt.Errorf("%w: no listings for service %s", epg.ErrFormat, channel.SiteID)
	}

	programmes := make([]epg.Programme, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			return nil, &epg.AdapterError{Source: epg.SourceSky, Reason: "listing item has no title"}
		}
		if item.Start <= 0 || len(item.Duration) < 2 {
			return nil, &epg.AdapterError{Source: epg.SourceSky, Reason: "listing item has no start or duration"}
		}

		start := time.Unix(item.Start, 0).UTC()
		stop := start.Add(time.Duration(item.Duration[1]) * time.Minute)

		// Absent image id means no icon, not an error.
		var icon string
		if item.Img != "" {
			icon = s.config.ImageBaseURL + item.Img
		}

		programmes = append(programmes, epg.Programme{
			Channel: channel.ID,
			Title:   item.Title,
			Desc:    item.Desc,
			Start:   start,
			Stop:    stop,
			Icon:    icon,
		})
	}
	return programmes, nil
}
