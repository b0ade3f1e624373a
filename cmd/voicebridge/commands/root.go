package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "voicebridge",
	Short: "Real-time speech-to-speech interpreter",
	Long: `voicebridge captures microphone audio, streams it through speech
recognition, translates each completed sentence, and plays the synthesized
translation through the local output device.

Without a subcommand it behaves like "voicebridge run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	registerRunFlags(rootCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(verifyCmd)
}
