// Package cli implements attendancectl, a kiosk-side helper for exercising
// the recognition service and the record endpoint from a terminal.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "attendancectl",
		Short: "Drive the face attendance pipeline from the command line",
		Long: `attendancectl sends captured images either straight to the recognition
service (recognize) or to a running attendance API (record).

Recognition settings are read from the environment (RECOGNITION_SERVICE_URL,
RECOGNITION_SERVICE_PATH, RECOGNITION_TIMEOUT, RECOGNITION_API_KEY,
RECOGNITION_BEARER_TOKEN, RECOGNITION_CONFIDENCE_THRESHOLD). A .env file in
the working directory is loaded when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every recognition attempt")
	root.AddCommand(newRecognizeCmd(), newRecordCmd())
	return root
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional
	_ = godotenv.Load()
}

func initLogger() error {
	if !verbose {
		zap.ReplaceGlobals(zap.NewNop())
		return nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
