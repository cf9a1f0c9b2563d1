package cmds

import (
	"os"
	"path/filepath"

	"fvepg/internal/app/config"
	"fvepg/internal/pkg/logging"
	"fvepg/internal/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string

	conf *config.Config
)

func init() {
	cobra.OnInitialize(initConfig)
}

func NewRootCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fvepg",
		Short:         "Aggregate UK TV and radio schedules into an XMLTV guide.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(NewGenerateCLI())
	rootCmd.AddCommand(NewServeCLI())
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path of the YAML configuration file.")

	return rootCmd
}

// initConfig loads the configuration file and sets up logging.
func initConfig() {
	var err error
	var fPath string

	if cfgFile != "" {
		// Use the configuration file from the command line
		fPath = cfgFile
	} else {
		cfgHome, err := util.GetCurrentAbPathByExecutable()
		cobra.CheckErr(err)

		fPath = filepath.Join(cfgHome, "config.yml")

		// Write the default configuration file on first run
		if _, err = os.Stat(fPath); os.IsNotExist(err) {
			err = config.CreateDefaultCfg(fPath)
			cobra.CheckErr(err)
		}
	}

	// Read the configuration file
	conf, err = config.Load(fPath)
	cobra.CheckErr(err)

	// Set up the global logger
	err = logging.InitLogger(&logging.LogConfig{
		Level:    zapcore.InfoLevel,
		FileName: "fvepg.log",
		MaxSize:  50,
		MaxAge:   7,
		IsStdout: true,
	})
	cobra.CheckErr(err)
}
