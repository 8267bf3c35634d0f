package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wokar/lgnetcast/cmd/cli"
	"github.com/wokar/lgnetcast/internal/logger"
)

var (
	debugFlag bool
	testFlag  bool
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Start the interactive TV remote interface",
	Long: `Launch the interactive Terminal User Interface (TUI) remote control.
Pair with a TV once, then drive it with an on-screen remote.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Set up logging based on debug or test flag
		if debugFlag || testFlag {
			logger.SetSilentMode(false) // Enable logging output
			if debugFlag {
				logger.SetLevel("debug")
			}
		} else {
			logger.SetSilentMode(true) // Keep logging silent
		}

		log := logger.New()
		log.Info().
			Bool("debug", debugFlag).
			Bool("test", testFlag).
			Msg("Starting interactive remote")

		if err := cli.StartTUI(debugFlag, testFlag); err != nil {
			log.Error().Err(err).Msg("Failed to start TUI")
			return err
		}

		return nil
	},
}

func init() {
	cliCmd.Flags().BoolVar(&debugFlag, "debug", false, "Enable debug logging for HTTP requests")
	cliCmd.Flags().BoolVar(&testFlag, "test", false, "Enable test mode (simulate TV responses without HTTP calls)")
}
