package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/forPelevin/mutecut/internal/config"
	"github.com/forPelevin/mutecut/internal/deps"
	"github.com/forPelevin/mutecut/internal/pipeline"
)

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <transcript.json>",
		Short: "Show what would be muted for a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)

			tr, err := pipeline.LoadTranscript(args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.PlanTranscript(tr, pipeline.BuildClassifier(cfg.Classifier.Engine, cfg.Classifier.ExtraWords))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, pipeline.RenderPlanReport(res, pipeline.IsTerminal(out)))
			return nil
		},
	}
	cmd.Flags().String("classifier", "", "Profanity classifier: lexicon or goaway")
	cmd.Flags().StringSlice("extra-words", nil, "Terms added to the classifier list (replaces configured extras)")
	return cmd
}

func newDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that external tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pc := pipeline.Config{
				FFmpegPath:  cfg.FFmpeg.FFmpeg,
				FFprobePath: cfg.FFmpeg.FFprobe,
				Engine:      cfg.Transcription.Engine,
				WhisperBin:  cfg.WhisperCpp.Bin,
			}
			statuses := deps.CheckBinaries(pc.Requirements())

			out := cmd.OutOrStdout()
			tw := table.NewWriter()
			if pipeline.IsTerminal(out) {
				tw.SetStyle(table.StyleRounded)
			}
			tw.AppendHeader(table.Row{"Tool", "Command", "Status", "Used for"})
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = "missing"
					if s.Optional {
						state = "missing (optional)"
					}
				}
				tw.AppendRow(table.Row{s.Name, s.Command, state, s.Description})
			}
			fmt.Fprintln(out, tw.Render())

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write an annotated sample config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				p, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
