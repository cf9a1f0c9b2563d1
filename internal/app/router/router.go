package router

import (
	"context"
	"net/http"
	"time"

	"fvepg/internal/app/config"
	"fvepg/internal/app/epg"
	"fvepg/internal/app/epg/bbcradio"
	"fvepg/internal/app/epg/bt"
	"fvepg/internal/app/epg/freeview"
	"fvepg/internal/app/epg/sky"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger

	// Guide timezone, cached for the JSON/XMLTV renderers.
	location *time.Location
)

// NewEngine builds the aggregation engine from the configuration, loads the
// initial data and returns the HTTP router.
func NewEngine(ctx context.Context, conf *config.Config, interval time.Duration) (*gin.Engine, error) {
	// L(): the global logger
	logger = zap.L()

	gin.SetMode(gin.ReleaseMode)

	// Create the EPG aggregation engine
	aggregator, err := NewAggregator(conf)
	if err != nil {
		return nil, err
	}
	location = conf.Location

	// Load the channel registry and the initial guide
	if err = initData(ctx, aggregator, conf); err != nil {
		return nil, err
	}

	// Start the periodic refresh
	Schedule(ctx, aggregator, conf, interval)

	// Create the gin routing engine
	r := gin.New()

	// Request logging
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	// Channel registry - JSON format
	r.GET("/channel/json", GetJSONChannels)

	// EPG - JSON format
	r.GET("/epg/json", GetJSONEPG)
	// EPG - XMLTV format
	r.GET("/epg/xml", GetXMLEPG)
	r.GET("/epg/xml.gz", GetXMLEPGWithGzip)

	return r, nil
}

// NewAggregator wires the configured source adapters into an engine.
func NewAggregator(conf *config.Config) (*epg.Engine, error) {
	fetcher := epg.NewHTTPFetcher(&http.Client{
		Timeout: 30 * time.Second,
	}, conf.Headers)

	skySource, err := sky.NewSource(fetcher, conf.Sky)
	if err != nil {
		return nil, err
	}
	btSource, err := bt.NewSource(fetcher, conf.BT, conf.Location)
	if err != nil {
		return nil, err
	}
	bbcSource, err := bbcradio.NewSource(fetcher, conf.BBCRadioConfig, conf.Location)
	if err != nil {
		return nil, err
	}
	freeviewSource, err := freeview.NewSource(fetcher, conf.Freeview)
	if err != nil {
		return nil, err
	}

	return epg.NewEngine([]epg.Source{skySource, btSource, bbcSource, freeviewSource},
		conf.Location, conf.Parallel, nil), nil
}

// initData loads the initial data.
func initData(ctx context.Context, aggregator *epg.Engine, conf *config.Config) error {
	// Load the channel registry
	if err := updateChannels(conf); err != nil {
		return err
	}

	// Aggregate the guide once at startup
	if err := updateEPG(ctx, aggregator); err != nil {
		logger.Error("Failed to update EPG.", zap.Error(err))
	}
	return nil
}
