package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinscribe/clinscribe/internal/bus"
	"github.com/clinscribe/clinscribe/internal/config"
	"github.com/clinscribe/clinscribe/internal/daemon"
	"github.com/clinscribe/clinscribe/internal/language"
	"github.com/clinscribe/clinscribe/internal/pipeline"
	"github.com/clinscribe/clinscribe/internal/provider"
	"github.com/clinscribe/clinscribe/internal/transcriber"
	"github.com/clinscribe/clinscribe/internal/tui"
	"github.com/clinscribe/clinscribe/internal/watch"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "clinscribe",
	Short:         "Clinical audio transcription with speaker roles and backend fallback",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(
		transcribeCmd(),
		watchCmd(),
		statusCmd(),
		stopCmd(),
		providersCmd(),
		configureCmd(),
		versionCmd(),
	)
}

func transcribeCmd() *cobra.Command {
	var (
		output   string
		speakers int
		prompt   string
		lang     string
		noDiar   bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe one clinical audio recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if !language.IsValidCode(lang) {
				return fmt.Errorf("unsupported language code: %q", lang)
			}

			p, err := pipeline.FromConfig(cfg)
			if err != nil {
				return err
			}

			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read audio file: %w", err)
			}

			req := &transcriber.Request{
				Audio:            audio,
				MimeType:         transcriber.MimeForPath(args[0]),
				Prompt:           firstNonEmpty(prompt, cfg.Transcription.Prompt),
				Language:         firstNonEmpty(lang, cfg.Transcription.Language),
				ExpectedSpeakers: cfg.Transcription.ExpectedSpeakers,
				Diarize:          cfg.Transcription.Diarize && !noDiar,
			}
			if speakers > 0 {
				req.ExpectedSpeakers = speakers
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := p.Run(ctx, req)
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(rep.Text), 0644); err != nil {
					return fmt.Errorf("failed to write transcript: %w", err)
				}
				fmt.Printf("transcript written to %s (backend=%s fallback=%v)\n", output, rep.Provider, rep.Fallback)
				return nil
			}

			fmt.Print(rep.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write transcript to file instead of stdout")
	cmd.Flags().IntVar(&speakers, "speakers", 0, "expected speaker count (overrides config)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "domain context hint for the backend")
	cmd.Flags().StringVar(&lang, "language", "", "ISO 639-1 language code (default: auto-detect)")
	cmd.Flags().BoolVar(&noDiar, "no-diarize", false, "disable speaker labelling")

	return cmd
}

func watchCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Transcribe audio files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := manager.StartWatching(ctx); err != nil {
				return fmt.Errorf("failed to watch config: %w", err)
			}
			defer manager.Stop()

			cfg := manager.GetConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			// each picked-up file builds its pipeline from the live config,
			// so hot reloads apply without restarting the daemon
			d := daemon.New(pipeline.NewReloading(manager), watch.Options{
				Dir:              args[0],
				OutputDir:        firstNonEmpty(outputDir, cfg.Watch.OutputDir),
				Extensions:       cfg.Watch.Extensions,
				ExpectedSpeakers: cfg.Transcription.ExpectedSpeakers,
				Diarize:          cfg.Transcription.Diarize,
				Language:         cfg.Transcription.Language,
				Prompt:           cfg.Transcription.Prompt,
			})

			if err := d.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for transcripts (default: next to the audio)")

	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Query a running watch daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStatus)
			if err != nil {
				return fmt.Errorf("no watch daemon running: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running watch daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(bus.CmdStop)
			if err != nil {
				return fmt.Errorf("no watch daemon running: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List speech-to-text backends and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			names := provider.ListProviders()
			sort.Strings(names)

			for _, name := range names {
				p := provider.GetProvider(name)
				status := "not configured"
				if !p.RequiresAPIKey() || cfg.APIKeyForProvider(name) != "" {
					status = "configured"
				}
				capability := "text only"
				if p.SupportsUtterances() {
					capability = "speaker-labelled utterances"
				}
				fmt.Printf("%-12s %-16s %s\n", name, status, capability)
			}
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			result, err := tui.Run(cfg)
			if err != nil {
				return fmt.Errorf("configuration wizard error: %w", err)
			}
			if result.Cancelled {
				fmt.Println("Configuration cancelled.")
				return nil
			}

			if err := result.Config.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if err := config.Save(result.Config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			configPath, _ := config.GetConfigPath()
			fmt.Printf("Configuration saved to %s\n", configPath)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
