package epg

import (
	"context"
	"time"
)

// SourceKind identifies the upstream a channel's schedule is pulled from.
type SourceKind string

const (
	SourceSky      SourceKind = "sky"
	SourceBT       SourceKind = "bt"
	SourceBBCRadio SourceKind = "bbc_radio"
	SourceFreeview SourceKind = "freeview"
	SourceOther    SourceKind = "other"
)

// Channel is one entry of the channel registry. The registry is read-only
// input; the engine never mutates it.
type Channel struct {
	ID        string     `json:"id"`                  // XMLTV channel id
	Name      string     `json:"name"`                // display name
	Kind      SourceKind `json:"src"`                 // upstream source
	SiteID    string     `json:"siteId"`              // upstream service/schedule id
	NetworkID string     `json:"networkId,omitempty"` // Freeview network id
	Lang      string     `json:"lang,omitempty"`
}

// Programme is the canonical normalized broadcast item. Start and Stop are
// UTC instants and Start < Stop holds for every programme an adapter emits.
type Programme struct {
	Channel string    `json:"channel"`
	Title   string    `json:"title"`
	Desc    string    `json:"desc,omitempty"`
	Start   time.Time `json:"start"`
	Stop    time.Time `json:"stop"`
	Icon    string    `json:"icon,omitempty"`
}

// ChannelGuide is the assembled, time-ordered schedule of one channel.
type ChannelGuide struct {
	Channel    Channel     `json:"channel"`
	Programmes []Programme `json:"programmes"`
}

// Source turns raw upstream listings for one (channel, window) pair into
// canonical programme candidates. Implementations fetch through an injected
// Fetcher and perform no retries; a non-2xx response means no data for the
// window.
type Source interface {
	Kind() SourceKind
	Programmes(ctx context.Context, channel *Channel, window TimeWindow) ([]Programme, error)
}
