package epg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoChannels = errors.New("the channel list is empty")

type channelListXML struct {
	XMLName  xml.Name     `xml:"channels"`
	Channels []channelXML `xml:"channel"`
}

type channelXML struct {
	Src       string `xml:"src,attr"`
	XMLTVID   string `xml:"xmltv_id,attr"`
	SiteID    string `xml:"site_id,attr"`
	NetworkID string `xml:"network_id,attr"`
	Lang      string `xml:"lang,attr"`
	Name      string `xml:",chardata"`
}

// LoadChannels reads the channel registry XML file. Channels with an
// unrecognized src attribute are kept as SourceOther so the caller can log
// and skip them.
func LoadChannels(fPath string) ([]Channel, error) {
	data, err := os.ReadFile(fPath)
	if err != nil {
		return nil, err
	}
	return ParseChannels(data)
}

// ParseChannels parses the registry document:
//
//	<channels>
//	  <channel src="sky" xmltv_id="BBCOne.uk" site_id="2076" lang="en">BBC One</channel>
//	</channels>
func ParseChannels(data []byte) ([]Channel, error) {
	var list channelListXML
	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if len(list.Channels) == 0 {
		return nil, ErrNoChannels
	}

	channels := make([]Channel, 0, len(list.Channels))
	for _, ch := range list.Channels {
		if ch.XMLTVID == "" || ch.SiteID == "" {
			return nil, fmt.Errorf("%w: channel %q is missing xmltv_id or site_id", ErrFormat, ch.Name)
		}

		kind := SourceKind(ch.Src)
		switch kind {
		case SourceSky, SourceBT, SourceBBCRadio, SourceFreeview:
		default:
			kind = SourceOther
		}

		channels = append(channels, Channel{
			ID:        ch.XMLTVID,
			Name:      strings.TrimSpace(ch.Name),
			Kind:      kind,
			SiteID:    ch.SiteID,
			NetworkID: ch.NetworkID,
			Lang:      ch.Lang,
		})
	}
	return channels, nil
}
