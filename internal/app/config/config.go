package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"fvepg/internal/app/epg/bbcradio"
	"fvepg/internal/app/epg/bt"
	"fvepg/internal/app/epg/freeview"
	"fvepg/internal/app/epg/sky"

	"gopkg.in/yaml.v3"
)

// Historical defaults. Everything here is ordinary configuration so tests
// and deployments can substitute their own endpoints and rules.
const (
	defaultTimezone    = "Europe/London"
	defaultChannelFile = "freeview_channels.xml"

	defaultSkyBaseURL      = "https://epgservices.sky.com/5.2.2/api/2.0/channel/json"
	defaultSkyImageBaseURL = "http://epgstatic.sky.com/epgdata/1.0/paimage/46/1/"

	defaultBTBaseURL = "https://voila.metabroadcast.com/4/schedules"
	defaultBTAPIKey  = "b4d2edb68da14dfb9e47b5465e99b1b1"

	defaultBBCBaseURL  = "https://www.bbc.co.uk/schedules"
	defaultEarlyCutoff = "07:00"
	defaultLateCutoff  = "00:30"

	defaultFreeviewBaseURL = "https://www.freeview.co.uk/api"
	defaultImageSuffix     = "?w=800"
)

// BBCRadioOptions carries the raw YAML values; Validate() compiles the
// cutoff clock strings into the adapter config.
type BBCRadioOptions struct {
	BaseURL           string `json:"baseURL" yaml:"baseURL"`
	OptionEarlyCutoff string `json:"earlyCutoff" yaml:"earlyCutoff"` // "early" items at/after this time-of-day are dropped
	OptionLateCutoff  string `json:"lateCutoff" yaml:"lateCutoff"`   // "late" items after this time-of-day are dropped
}

type Config struct {
	OptionTimezone string         `json:"timezone" yaml:"timezone"` // guide timezone name, e.g. Europe/London
	Location       *time.Location `json:"-" yaml:"-"`               // filled by Validate()

	ChannelFile string            `json:"channelFile" yaml:"channelFile"` // channel registry XML path
	Parallel    int               `json:"parallel" yaml:"parallel"`       // channels processed concurrently
	Headers     map[string]string `json:"headers" yaml:"headers"`         // custom HTTP request headers

	Sky            *sky.Config      `json:"sky,omitempty" yaml:"sky,omitempty"`
	BT             *bt.Config       `json:"bt,omitempty" yaml:"bt,omitempty"`
	BBCRadio       *BBCRadioOptions `json:"bbcRadio,omitempty" yaml:"bbcRadio,omitempty"`
	BBCRadioConfig *bbcradio.Config `json:"-" yaml:"-"` // filled by Validate()
	Freeview       *freeview.Config `json:"freeview,omitempty" yaml:"freeview,omitempty"`
}

func (c *Config) Validate() error {
	if c.OptionTimezone == "" {
		c.OptionTimezone = defaultTimezone
	}
	loc, err := time.LoadLocation(c.OptionTimezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.OptionTimezone, err)
	}
	c.Location = loc

	if c.ChannelFile == "" {
		c.ChannelFile = defaultChannelFile
	}

	// Fill missing upstream settings with the historical defaults.
	if c.Sky == nil {
		c.Sky = &sky.Config{}
	}
	if c.Sky.BaseURL == "" {
		c.Sky.BaseURL = defaultSkyBaseURL
	}
	if c.Sky.ImageBaseURL == "" {
		c.Sky.ImageBaseURL = defaultSkyImageBaseURL
	}

	if c.BT == nil {
		c.BT = &bt.Config{}
	}
	if c.BT.BaseURL == "" {
		c.BT.BaseURL = defaultBTBaseURL
	}
	if c.BT.APIKey == "" {
		return errors.New("bt.apiKey is required")
	}

	if c.BBCRadio == nil {
		c.BBCRadio = &BBCRadioOptions{}
	}
	if c.BBCRadio.BaseURL == "" {
		c.BBCRadio.BaseURL = defaultBBCBaseURL
	}
	if c.BBCRadio.OptionEarlyCutoff == "" {
		c.BBCRadio.OptionEarlyCutoff = defaultEarlyCutoff
	}
	if c.BBCRadio.OptionLateCutoff == "" {
		c.BBCRadio.OptionLateCutoff = defaultLateCutoff
	}

	earlyCutoff, err := parseClockOption(c.BBCRadio.OptionEarlyCutoff)
	if err != nil {
		return fmt.Errorf("invalid bbcRadio.earlyCutoff: %w", err)
	}
	lateCutoff, err := parseClockOption(c.BBCRadio.OptionLateCutoff)
	if err != nil {
		return fmt.Errorf("invalid bbcRadio.lateCutoff: %w", err)
	}
	c.BBCRadioConfig = &bbcradio.Config{
		BaseURL:     c.BBCRadio.BaseURL,
		EarlyCutoff: earlyCutoff,
		LateCutoff:  lateCutoff,
	}

	if c.Freeview == nil {
		c.Freeview = &freeview.Config{}
	}
	if c.Freeview.BaseURL == "" {
		c.Freeview.BaseURL = defaultFreeviewBaseURL
	}
	if c.Freeview.ImageQuerySuffix == "" {
		c.Freeview.ImageQuerySuffix = defaultImageSuffix
	}

	return nil
}

// parseClockOption converts an "hh:mm" option into minutes since midnight.
func parseClockOption(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func Load(fPath string) (*Config, error) {
	// Read the configuration file
	data, err := os.ReadFile(fPath)
	if err != nil {
		return nil, err
	}
	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func CreateDefaultCfg(fPath string) error {
	// Write the default configuration
	f, err := os.Create(fPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)

	defaultCfg := Config{
		OptionTimezone: defaultTimezone,
		ChannelFile:    defaultChannelFile,
		Parallel:       4,
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Safari/537.36",
		},
		Sky: &sky.Config{
			BaseURL:      defaultSkyBaseURL,
			ImageBaseURL: defaultSkyImageBaseURL,
		},
		BT: &bt.Config{
			BaseURL: defaultBTBaseURL,
			APIKey:  defaultBTAPIKey,
		},
		BBCRadio: &BBCRadioOptions{
			BaseURL:           defaultBBCBaseURL,
			OptionEarlyCutoff: defaultEarlyCutoff,
			OptionLateCutoff:  defaultLateCutoff,
		},
		Freeview: &freeview.Config{
			BaseURL:          defaultFreeviewBaseURL,
			ImageQuerySuffix: defaultImageSuffix,
		},
	}

	return encoder.Encode(&defaultCfg)
}
