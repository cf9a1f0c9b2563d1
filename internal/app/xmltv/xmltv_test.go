package xmltv

import (
	"bytes"
	"testing"
	"time"

	"fvepg/internal/app/epg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func london(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	return loc
}

func testGuides() []epg.ChannelGuide {
	return []epg.ChannelGuide{
		{
			Channel: epg.Channel{ID: "BBCOne.uk", Name: "BBC One", Kind: epg.SourceSky, SiteID: "2076", Lang: "en"},
			Programmes: []epg.Programme{
				{
					Channel: "BBCOne.uk",
					Title:   "News at Six",
					Desc:    "The latest headlines.",
					Start:   time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC),
					Stop:    time.Date(2024, 6, 1, 17, 30, 0, 0, time.UTC),
					Icon:    "https://img.example.com/news.png",
				},
				{
					Channel: "BBCOne.uk",
					Title:   "Quiz Night",
					Start:   time.Date(2024, 6, 1, 17, 30, 0, 0, time.UTC),
					Stop:    time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC),
				},
			},
		},
	}
}

func TestDocument(t *testing.T) {
	tv := Document(testGuides(), london(t))

	assert.Equal(t, GeneratorInfoName, tv.GeneratorInfoName)
	require.Len(t, tv.Channels, 1)
	require.Len(t, tv.Programmes, 2)

	assert.Equal(t, "BBCOne.uk", tv.Channels[0].ID)
	assert.Equal(t, "BBC One", tv.Channels[0].DisplayName.Value)
	assert.Equal(t, "en", tv.Channels[0].DisplayName.Lang)

	// 17:00 UTC on a BST date renders as 18:00 +0100.
	first := tv.Programmes[0]
	assert.Equal(t, "20240601180000 +0100", first.Start)
	assert.Equal(t, "20240601183000 +0100", first.Stop)
	assert.Equal(t, "BBCOne.uk", first.Channel)
	assert.Equal(t, "News at Six", first.Title.Value)
	require.NotNil(t, first.Desc)
	assert.Equal(t, "The latest headlines.", first.Desc.Value)
	require.NotNil(t, first.Icon)
	assert.Equal(t, "https://img.example.com/news.png", first.Icon.Src)

	// Optional elements are omitted when empty.
	second := tv.Programmes[1]
	assert.Nil(t, second.Desc)
	assert.Nil(t, second.Icon)
}

func TestDocumentDefaultsLang(t *testing.T) {
	guides := testGuides()
	guides[0].Channel.Lang = ""

	tv := Document(guides, london(t))
	assert.Equal(t, "en", tv.Channels[0].DisplayName.Lang)
	assert.Equal(t, "en", tv.Programmes[0].Title.Lang)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Document(testGuides(), london(t))))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `generator-info-name="freeview-epg"`)
	assert.Contains(t, out, `<programme start="20240601180000 +0100"`)
	assert.Contains(t, out, `<icon src="https://img.example.com/news.png"`)
	assert.Contains(t, out, `<desc lang="en">The latest headlines.</desc>`)
}
