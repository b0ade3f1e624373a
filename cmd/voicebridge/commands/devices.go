package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	audioimpl "github.com/foxseedlab/voicebridge/external/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture and playback devices",
	Long: `List every audio device the driver can see, with its index, channel
counts, and default sample rate.

Select a device with INPUT_DEVICE_ID / OUTPUT_DEVICE_ID or the
--input-device / --output-device flags of "voicebridge run";
-1 selects the system default.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		driver := audioimpl.NewPortAudioDriver()
		defer func() { _ = driver.Terminate() }()

		devices, err := driver.ListDevices()
		if err != nil {
			return fmt.Errorf("list audio devices: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tIN\tOUT\tDEFAULT RATE")
		for _, d := range devices {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.0f Hz\n",
				d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
		}
		return w.Flush()
	},
}
