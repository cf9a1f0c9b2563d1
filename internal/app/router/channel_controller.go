package router

import (
	"errors"
	"net/http"
	"sync/atomic"

	"fvepg/internal/app/config"
	"fvepg/internal/app/epg"

	"github.com/gin-gonic/gin"
)

var (
	// Cache of the latest channel registry
	channelsPtr atomic.Pointer[[]epg.Channel]
)

func init() {
	empty := make([]epg.Channel, 0)
	channelsPtr.Store(&empty)
}

// GetJSONChannels returns the channel registry as JSON.
func GetJSONChannels(c *gin.Context) {
	channels := *channelsPtr.Load()
	c.PureJSON(http.StatusOK, channels)
}

// updateChannels reloads the channel registry file into the cache.
func updateChannels(conf *config.Config) error {
	channels, err := epg.LoadChannels(conf.ChannelFile)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return errors.New("no channels")
	}

	logger.Sugar().Infof("Channel registry updated, rows: %d.", len(channels))
	channelsPtr.Store(&channels)

	return nil
}
