// Package xmltv renders assembled channel guides as an XMLTV document.
package xmltv

import (
	"encoding/xml"
	"io"
	"time"

	"fvepg/internal/app/epg"
)

const (
	GeneratorInfoName = "freeview-epg"
	GeneratorInfoURL  = "https://github.com/ExperiencersInternational/Freeview-EPG"

	// XMLTV timestamps carry the guide timezone's UTC offset so daylight
	// saving renders correctly.
	timeFormat  = "20060102150405 -0700"
	defaultLang = "en"
)

type TV struct {
	XMLName           xml.Name    `xml:"tv"`
	GeneratorInfoName string      `xml:"generator-info-name,attr,omitempty"`
	GeneratorInfoURL  string      `xml:"generator-info-url,attr,omitempty"`
	Channels          []Channel   `xml:"channel,omitempty"`
	Programmes        []Programme `xml:"programme,omitempty"`
}

type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName *Display `xml:"display-name"`
}

type Programme struct {
	Start   string   `xml:"start,attr"`
	Stop    string   `xml:"stop,attr"`
	Channel string   `xml:"channel,attr"`
	Title   *Display `xml:"title"`
	Desc    *Display `xml:"desc,omitempty"`
	Icon    *Icon    `xml:"icon,omitempty"`
}

type Display struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

type Icon struct {
	Src string `xml:"src,attr"`
}

// Document converts the assembled guides into the XMLTV structure, with
// timestamps rendered in the guide timezone.
func Document(guides []epg.ChannelGuide, loc *time.Location) *TV {
	channels := make([]Channel, 0, len(guides))
	programmes := make([]Programme, 0)
	for _, guide := range guides {
		lang := guide.Channel.Lang
		if lang == "" {
			lang = defaultLang
		}

		channels = append(channels, Channel{
			ID: guide.Channel.ID,
			DisplayName: &Display{
				Lang:  lang,
				Value: guide.Channel.Name,
			},
		})

		for _, p := range guide.Programmes {
			programme := Programme{
				Start:   p.Start.In(loc).Format(timeFormat),
				Stop:    p.Stop.In(loc).Format(timeFormat),
				Channel: p.Channel,
				Title: &Display{
					Lang:  lang,
					Value: p.Title,
				},
			}
			if p.Desc != "" {
				programme.Desc = &Display{
					Lang:  lang,
					Value: p.Desc,
				}
			}
			if p.Icon != "" {
				programme.Icon = &Icon{Src: p.Icon}
			}
			programmes = append(programmes, programme)
		}
	}

	return &TV{
		GeneratorInfoName: GeneratorInfoName,
		GeneratorInfoURL:  GeneratorInfoURL,
		Channels:          channels,
		Programmes:        programmes,
	}
}

// Write marshals the document with an XML header and indentation.
func Write(w io.Writer, tv *TV) error {
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}

	data, err := xml.MarshalIndent(tv, "", "  ")
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
