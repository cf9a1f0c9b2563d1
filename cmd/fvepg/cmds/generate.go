package cmds

import (
	"compress/gzip"
	"errors"
	"os"
	"path"

	"fvepg/internal/app/epg"
	"fvepg/internal/app/router"
	"fvepg/internal/app/xmltv"
	"fvepg/internal/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const outFileName = "epg.xml"

var compress bool

func NewGenerateCLI() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Aggregate all channels once and write the XMLTV guide file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// L(): the global logger
			logger := zap.L()

			// Validate the configuration file
			if err := conf.Validate(); err != nil {
				return err
			}

			// Create the aggregation engine
			aggregator, err := router.NewAggregator(conf)
			if err != nil {
				return err
			}

			// Load the channel registry
			channels, err := epg.LoadChannels(conf.ChannelFile)
			if err != nil {
				return err
			}
			if len(channels) == 0 {
				return errors.New("no channels found")
			}

			// Aggregate the guide
			guides, err := aggregator.Run(cmd.Context(), channels)
			if err != nil {
				return err
			}

			// Create the guide file in the current directory
			fileName := outFileName
			if compress {
				fileName += ".gz"
			}
			currDir, err := util.GetCurrentAbPathByExecutable()
			if err != nil {
				return err
			}
			file, err := os.Create(path.Join(currDir, fileName))
			if err != nil {
				logger.Error("Failed to create a file.", zap.Error(err))
				return err
			}
			defer file.Close()

			// Write the XMLTV document
			tv := xmltv.Document(guides, conf.Location)
			if compress {
				gzipWriter := gzip.NewWriter(file)
				defer gzipWriter.Close()
				err = xmltv.Write(gzipWriter, tv)
			} else {
				err = xmltv.Write(file, tv)
			}
			if err != nil {
				logger.Error("Failed to write to file.", zap.Error(err))
				return err
			}

			logger.Sugar().Infof("A total of %d channels have been aggregated, the guide has been written to the file %s.", len(guides), fileName)

			return nil
		},
	}

	generateCmd.Flags().BoolVarP(&compress, "gzip", "z", false, "Compress the generated guide file with gzip.")

	return generateCmd
}
