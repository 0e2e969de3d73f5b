package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forPelevin/mutecut/internal/config"
	"github.com/forPelevin/mutecut/internal/logging"
	"github.com/forPelevin/mutecut/internal/pipeline"
)

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	inputDir, _ := cmd.Flags().GetString("input")
	if inputDir != "" {
		if inputDir, err = filepath.Abs(inputDir); err != nil {
			return err
		}
	}
	inputs := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return err
		}
		inputs = append(inputs, abs)
	}

	pc := pipeline.Config{
		Inputs:     inputs,
		InputDir:   inputDir,
		Extensions: cfg.Input.Extensions,

		OutDir:         cfg.Paths.OutputDir,
		CacheDir:       cfg.Paths.CacheDir,
		KeepWork:       cfg.Output.KeepWork,
		Subtitles:      cfg.Output.Subtitles,
		SaveTranscript: cfg.Output.SaveTranscript,

		FFmpegPath:   cfg.FFmpeg.FFmpeg,
		FFprobePath:  cfg.FFmpeg.FFprobe,
		AudioEncoder: cfg.FFmpeg.AudioEncoder,
		AudioBitrate: cfg.FFmpeg.AudioBitrate,

		Engine:   cfg.Transcription.Engine,
		Language: cfg.Transcription.Language,

		WhisperBin:   cfg.WhisperCpp.Bin,
		WhisperModel: cfg.WhisperCpp.Model,

		OpenAIAPIKey:            cfg.OpenAI.APIKey,
		OpenAIModel:             cfg.OpenAI.Model,
		OpenAIBaseURL:           cfg.OpenAI.BaseURL,
		OpenAIAllowedHosts:      cfg.OpenAI.AllowedHosts,
		OpenAIRequestsPerMinute: cfg.OpenAI.RequestsPerMinute,

		Classifier: cfg.Classifier.Engine,
		ExtraWords: cfg.Classifier.ExtraWords,

		Log:     log,
		Summary: cmd.OutOrStdout(),
	}
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, err = pipeline.Run(cmd.Context(), pc)
	return err
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// applyRunFlags lets explicitly set flags override file and env values.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("output") {
		v, _ := f.GetString("output")
		if abs, err := config.ExpandPath(v); err == nil {
			cfg.Paths.OutputDir = abs
		}
	}
	if f.Changed("ext") {
		cfg.Input.Extensions, _ = f.GetStringSlice("ext")
	}
	if f.Changed("engine") {
		cfg.Transcription.Engine, _ = f.GetString("engine")
	}
	if f.Changed("language") {
		cfg.Transcription.Language, _ = f.GetString("language")
	}
	if f.Changed("classifier") {
		cfg.Classifier.Engine, _ = f.GetString("classifier")
	}
	if f.Changed("extra-words") {
		cfg.Classifier.ExtraWords, _ = f.GetStringSlice("extra-words")
	}
	if f.Changed("subtitles") {
		cfg.Output.Subtitles, _ = f.GetBool("subtitles")
	}
	if f.Changed("save-transcript") {
		cfg.Output.SaveTranscript, _ = f.GetBool("save-transcript")
	}
	if f.Changed("keep-work") {
		cfg.Output.KeepWork, _ = f.GetBool("keep-work")
	}
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	format := cfg.Logging.Format
	if cmd.Flags().Changed("log-format") {
		format, _ = cmd.Flags().GetString("log-format")
	}
	return logging.New(logging.Options{
		Level:  logging.LevelFromFlags(verbose, quiet, cfg.Logging.Level),
		Format: format,
		Writer: cmd.ErrOrStderr(),
	})
}
