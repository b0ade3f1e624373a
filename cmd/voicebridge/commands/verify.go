package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	audioimpl "github.com/foxseedlab/voicebridge/external/audio"
	configloader "github.com/foxseedlab/voicebridge/external/config"
	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/foxseedlab/voicebridge/internal/config"
)

const verifyDatabaseTimeout = 5 * time.Second

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check configuration, audio devices, and connectivity",
	Long: `Run every setup check the pipeline depends on: configuration loads
and validates, the audio driver finds usable capture and playback devices,
and the database is reachable when one is configured.

Exits non-zero when any check fails.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVerify(cmd.Context())
	},
}

func runVerify(ctx context.Context) error {
	rule := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nVoiceBridge Setup Verification\n%s\n\n", rule, rule)

	ok := true

	fmt.Println("--- Configuration ---")
	cfg, err := configloader.Load()
	if err != nil {
		fmt.Printf("✗ configuration invalid: %v\n", err)
		ok = false
	} else {
		fmt.Printf("✓ configuration valid (transcriber=%s, translator=%s, target=%s)\n",
			cfg.TranscriberProvider, cfg.TranslatorProvider, cfg.TargetLanguage)
	}
	fmt.Println()

	fmt.Println("--- Audio Devices ---")
	if !verifyAudio(cfg) {
		ok = false
	}
	fmt.Println()

	if cfg != nil && cfg.DatabaseURL != "" {
		fmt.Println("--- Database ---")
		if !verifyDatabase(ctx, cfg.DatabaseURL) {
			ok = false
		}
		fmt.Println()
	}

	fmt.Println(rule)
	if !ok {
		fmt.Println("✗ Some checks failed. Fix the issues above before running.")
		fmt.Println(rule)
		return errors.New("setup verification failed")
	}
	fmt.Println("✓ All checks passed. VoiceBridge is ready to run.")
	fmt.Println(rule)
	return nil
}

func verifyAudio(cfg *config.Config) bool {
	driver := audioimpl.NewPortAudioDriver()
	defer func() { _ = driver.Terminate() }()

	devices, err := driver.ListDevices()
	if err != nil {
		fmt.Printf("✗ audio driver unavailable: %v\n", err)
		return false
	}

	inputs, outputs := 0, 0
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs++
		}
		if d.MaxOutputChannels > 0 {
			outputs++
		}
	}

	ok := true
	if inputs == 0 {
		fmt.Println("✗ no capture devices found")
		ok = false
	} else {
		fmt.Printf("✓ found %d capture device(s)\n", inputs)
	}
	if outputs == 0 {
		fmt.Println("✗ no playback devices found")
		ok = false
	} else {
		fmt.Printf("✓ found %d playback device(s)\n", outputs)
	}

	if cfg != nil {
		if !verifyDeviceID(devices, cfg.InputDeviceID, "capture") {
			ok = false
		}
		if !verifyDeviceID(devices, cfg.OutputDeviceID, "playback") {
			ok = false
		}
	}
	return ok
}

func verifyDeviceID(devices []audio.Device, id int, direction string) bool {
	if id == audio.DefaultDeviceID {
		return true
	}
	for _, d := range devices {
		if d.ID != id {
			continue
		}
		if direction == "capture" && d.MaxInputChannels == 0 {
			fmt.Printf("✗ configured %s device %d (%s) has no input channels\n", direction, id, d.Name)
			return false
		}
		if direction == "playback" && d.MaxOutputChannels == 0 {
			fmt.Printf("✗ configured %s device %d (%s) has no output channels\n", direction, id, d.Name)
			return false
		}
		fmt.Printf("✓ configured %s device %d: %s\n", direction, id, d.Name)
		return true
	}
	fmt.Printf("✗ configured %s device %d not found\n", direction, id)
	return false
}

func verifyDatabase(ctx context.Context, databaseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, verifyDatabaseTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Printf("✗ database configuration invalid: %v\n", err)
		return false
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Printf("✗ database unreachable: %v\n", err)
		return false
	}
	fmt.Println("✓ database reachable")
	return true
}
