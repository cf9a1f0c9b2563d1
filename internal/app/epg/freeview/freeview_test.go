package freeview

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"fvepg/internal/app/epg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned responses keyed by URL path suffix.
type fakeFetcher struct {
	mu        sync.Mutex
	guide     string
	details   map[string]string // keyed by pid
	detailErr bool

	detailCalls int
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, params url.Values) (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rawURL == "https://fv.example.com/api/tv-guide" {
		return 200, []byte(f.guide), nil
	}
	if rawURL == "https://fv.example.com/api/program" {
		f.detailCalls++
		if f.detailErr {
			return 500, nil, nil
		}
		if body, ok := f.details[params.Get("pid")]; ok {
			return 200, []byte(body), nil
		}
		return 404, nil, nil
	}
	return 404, nil, nil
}

func newTestSource(t *testing.T, fetcher epg.Fetcher) *Source {
	t.Helper()
	source, err := NewSource(fetcher, &Config{
		BaseURL:          "https://fv.example.com/api",
		ImageQuerySuffix: "?w=800",
		DetailParallel:   2,
		DetailRate:       1000,
	})
	require.NoError(t, err)
	return source
}

const guideFixture = `{
  "data": {
    "programs": [
      {
        "service_id": "9999",
        "events": [
          {"program_id": "other", "main_title": "Other Channel", "start_time": "2024-01-01T20:00:00+00:00", "duration": "PT1H"}
        ]
      },
      {
        "service_id": "6272",
        "events": [
          {
            "program_id": "crid-1",
            "main_title": "Film Night",
            "image_url": "https://img.fv.example.com/listing1.jpg",
            "start_time": "2024-01-01T20:00:00+00:00",
            "duration": "PT1H30M"
          },
          {
            "main_title": "Short Feature",
            "start_time": "2024-01-01T21:30:00+00:00",
            "duration": "PT30M"
          }
        ]
      }
    ]
  }
}`

const detailFixture = `{
  "data": {
    "programs": [
      {
        "synopsis": {"medium": "A classic picture."},
        "image_url": "https://img.fv.example.com/detail1.jpg"
      }
    ]
  }
}`

func testChannel() *epg.Channel {
	return &epg.Channel{ID: "Film4.uk", Kind: epg.SourceFreeview, SiteID: "6272", NetworkID: "64865"}
}

func testWindow() epg.TimeWindow {
	return epg.TimeWindow{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestFreeviewProgrammes(t *testing.T) {
	fetcher := &fakeFetcher{
		guide:   guideFixture,
		details: map[string]string{"crid-1": detailFixture},
	}
	source := newTestSource(t, fetcher)

	programmes, err := source.Programmes(context.Background(), testChannel(), testWindow())
	require.NoError(t, err)
	require.Len(t, programmes, 2)

	first := programmes[0]
	assert.Equal(t, "Film4.uk", first.Channel)
	assert.Equal(t, "Film Night", first.Title)

	// PT1H30M on top of 20:00 ends at 21:30.
	assert.Equal(t, time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 21, 30, 0, 0, time.UTC), first.Stop)

	// Detail lookup enriched description and icon; the detail image beats
	// the listing fallback and carries the query suffix.
	assert.Equal(t, "A classic picture.", first.Desc)
	assert.Equal(t, "https://img.fv.example.com/detail1.jpg?w=800", first.Icon)

	// The second event has no program id, so only one detail fetch ran.
	assert.Equal(t, 1, fetcher.detailCalls)
	assert.Empty(t, programmes[1].Desc)
	assert.Empty(t, programmes[1].Icon)
}

func TestFreeviewDetailFailureKeepsBasicCandidate(t *testing.T) {
	fetcher := &fakeFetcher{guide: guideFixture, detailErr: true}
	source := newTestSource(t, fetcher)

	programmes, err := source.Programmes(context.Background(), testChannel(), testWindow())
	require.NoError(t, err)
	require.Len(t, programmes, 2)

	// The listing fallback image survives, still with the suffix.
	assert.Equal(t, "https://img.fv.example.com/listing1.jpg?w=800", programmes[0].Icon)
	assert.Empty(t, programmes[0].Desc)
}

func TestFreeviewUnparseableDetailKeepsBasicCandidate(t *testing.T) {
	fetcher := &fakeFetcher{
		guide:   guideFixture,
		details: map[string]string{"crid-1": "<html>not json</html>"},
	}
	source := newTestSource(t, fetcher)

	programmes, err := source.Programmes(context.Background(), testChannel(), testWindow())
	require.NoError(t, err)
	assert.Equal(t, "https://img.fv.example.com/listing1.jpg?w=800", programmes[0].Icon)
}

func TestFreeviewNoGuideEntryForService(t *testing.T) {
	fetcher := &fakeFetcher{guide: `{"data": {"programs": []}}`}
	source := newTestSource(t, fetcher)

	_, err := source.Programmes(context.Background(), testChannel(), testWindow())
	assert.ErrorIs(t, err, epg.ErrFormat)
}

func TestFreeviewMissingRequiredFields(t *testing.T) {
	fetcher := &fakeFetcher{guide: `{
  "data": {"programs": [{"service_id": "6272", "events": [{"main_title": "No Times"}]}]}
}`}
	source := newTestSource(t, fetcher)

	_, err := source.Programmes(context.Background(), testChannel(), testWindow())

	var adapterErr *epg.AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, epg.SourceFreeview, adapterErr.Source)
}

func TestFreeviewBadDuration(t *testing.T) {
	fetcher := &fakeFetcher{guide: `{
  "data": {"programs": [{"service_id": "6272", "events": [
    {"main_title": "Odd", "start_time": "2024-01-01T20:00:00+00:00", "duration": "P1Y"}
  ]}]}
}`}
	source := newTestSource(t, fetcher)

	_, err := source.Programmes(context.Background(), testChannel(), testWindow())
	assert.ErrorIs(t, err, epg.ErrFormat)
}
