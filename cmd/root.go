package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hardtopnet/image-desc-search/config"
)

var (
	cfgFile       string
	verbose       bool
	writeDefaults bool
)

var rootCmd = &cobra.Command{
	Use:   "image-desc-search",
	Short: "Search your images by their AI-generated descriptions",
	Long: `image-desc-search finds pictures by what is in them: an indexer stores
a model-written description and a thumbnail per image, and this tool
searches those descriptions and browses the results in a thumbnail grid.

Running without a subcommand opens the GUI.

Examples:
  image-desc-search
  image-desc-search search -i ~/Pictures -q "red fox"
  image-desc-search search -i ~/Pictures -q "beach sunset" -o json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the app dir config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&writeDefaults, "write-defaults", false, "write the effective configuration to the config file")
}

func initLogging() {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if writeDefaults {
		if err := config.SaveConfig(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
