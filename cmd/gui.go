package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hardtopnet/image-desc-search/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the search window",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGUI(); err != nil {
			logrus.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

func runGUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return gui.Run(cfg)
}
