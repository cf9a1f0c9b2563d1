package router

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"fvepg/internal/app/epg"
	"fvepg/internal/app/xmltv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xmltvGzipFilename = "epg.xml.gz"

var (
	// Cache of the latest assembled guides
	epgPtr atomic.Pointer[[]epg.ChannelGuide]
)

func init() {
	empty := make([]epg.ChannelGuide, 0)
	epgPtr.Store(&empty)
}

// ChannelDateJSONEPG is one channel's schedule for one date.
type ChannelDateJSONEPG struct {
	ChannelID string    `json:"channel_id"`
	Date      string    `json:"date"`
	EPGData   []JSONEPG `json:"epg_data"`
}

type JSONEPG struct {
	Title string `json:"title"`
	Desc  string `json:"desc,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// GetJSONEPG returns one channel's programmes for one date as JSON.
func GetJSONEPG(c *gin.Context) {
	// Channel id and date query parameters
	chID := c.Query("ch")
	dateStr := c.DefaultQuery("date", time.Now().In(location).Format("2006-01-02"))

	if chID == "" {
		logger.Warn("The id of the channel is null.")
		c.Status(http.StatusBadRequest)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, location)
	if err != nil {
		logger.Error("Date format error", zap.Error(err))
		c.Status(http.StatusBadRequest)
		return
	}

	resp := ChannelDateJSONEPG{
		ChannelID: chID,
		Date:      dateStr,
		EPGData:   []JSONEPG{},
	}

	// Find the channel's guide in the cache
	for _, guide := range *epgPtr.Load() {
		if guide.Channel.ID != chID {
			continue
		}
		for _, p := range guide.Programmes {
			start := p.Start.In(location)
			if start.Year() != date.Year() || start.YearDay() != date.YearDay() {
				continue
			}
			resp.EPGData = append(resp.EPGData, JSONEPG{
				Title: p.Title,
				Desc:  p.Desc,
				Start: start.Format("15:04"),
				End:   p.Stop.In(location).Format("15:04"),
			})
		}
		break
	}

	c.PureJSON(http.StatusOK, &resp)
}

// GetXMLEPG returns the whole guide as an XMLTV document.
func GetXMLEPG(c *gin.Context) {
	c.XML(http.StatusOK, xmltv.Document(*epgPtr.Load(), location))
}

// GetXMLEPGWithGzip returns the XMLTV document as a gzip download.
func GetXMLEPGWithGzip(c *gin.Context) {
	tv := xmltv.Document(*epgPtr.Load(), location)

	// Announce a binary download to the client
	c.Header("Transfer-Encoding", "gzip")
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", xmltvGzipFilename))

	gzipWriter := gzip.NewWriter(c.Writer)
	defer gzipWriter.Close()

	if err := xmltv.Write(gzipWriter, tv); err != nil {
		logger.Error("Failed to write xml data.", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
}

// updateEPG refreshes the cached guides by running a full aggregation.
func updateEPG(ctx context.Context, aggregator *epg.Engine) error {
	channels := *channelsPtr.Load()
	if len(channels) == 0 {
		return errors.New("no channels")
	}

	guides, err := aggregator.Run(ctx, channels)
	if err != nil {
		return err
	}

	logger.Sugar().Infof("EPG data updated, channels: %d.", len(guides))
	epgPtr.Store(&guides)

	return nil
}
