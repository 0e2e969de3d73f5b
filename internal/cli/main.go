package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, context.Canceled) {
			stop()
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mutecut [video...]",
		Short: "Mute profanity in local videos",
		Long: "mutecut transcribes each video, finds profane words and writes a copy with\n" +
			"those moments silenced, plus a censored transcript. Video streams are copied.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	root.PersistentFlags().String("config", "", "Config file (default ~/.config/mutecut/config.toml or ./mutecut.toml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
	root.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")
	root.PersistentFlags().String("log-format", "", "Log format: console or json")

	f := root.Flags()
	f.StringP("input", "i", "", "Directory of videos to process (instead of file arguments)")
	f.StringP("output", "o", "", "Output directory")
	f.StringSlice("ext", nil, "Extensions picked up from --input (e.g. .mp4,.mov)")
	f.String("engine", "", "Transcription engine: whispercpp or openai")
	f.String("language", "", "Spoken language hint (auto by default)")
	f.String("classifier", "", "Profanity classifier: lexicon or goaway")
	f.StringSlice("extra-words", nil, "Terms added to the classifier list (replaces configured extras)")
	f.Bool("subtitles", false, "Also write <name>_censored.srt")
	f.Bool("save-transcript", false, "Also write the raw <name>_transcript.json")
	f.Bool("keep-work", false, "Keep extracted audio under the cache dir")

	root.AddCommand(newPlanCommand(), newDepsCommand(), newConfigCommand())
	return root
}
