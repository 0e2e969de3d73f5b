package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/forPelevin/mutecut/internal/config"
	"github.com/forPelevin/mutecut/internal/deps"
	"github.com/forPelevin/mutecut/internal/ports"
	"github.com/forPelevin/mutecut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/mutecut/internal/ports/adapters/fsinput"
	"github.com/forPelevin/mutecut/internal/ports/adapters/goaway"
	"github.com/forPelevin/mutecut/internal/ports/adapters/openai"
	"github.com/forPelevin/mutecut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/mutecut/internal/usecase"
)

// ErrBatchFailed is returned by Run when at least one file failed.
var ErrBatchFailed = errors.New("batch failed")

type Config struct {
	// Exactly one of Inputs and InputDir is set.
	Inputs     []string
	InputDir   string
	Extensions []string

	OutDir string
	// CacheDir holds per-file work dirs. If empty, defaults to ".cache".
	CacheDir string

	KeepWork       bool
	Subtitles      bool
	SaveTranscript bool

	FFmpegPath   string
	FFprobePath  string
	AudioEncoder string
	AudioBitrate string

	Engine   string
	Language string

	WhisperBin   string
	WhisperModel string

	OpenAIAPIKey            string
	OpenAIModel             string
	OpenAIBaseURL           string
	OpenAIAllowedHosts      []string
	OpenAIRequestsPerMinute int

	Classifier string
	ExtraWords []string

	Log *slog.Logger
	// Summary receives the end-of-batch table. Nil disables it.
	Summary io.Writer
}

func (c Config) Validate() error {
	switch {
	case len(c.Inputs) == 0 && c.InputDir == "":
		return errors.New("no input: pass video files or --input DIR")
	case len(c.Inputs) > 0 && c.InputDir != "":
		return errors.New("pass either video files or --input DIR, not both")
	}
	if c.InputDir != "" {
		info, err := os.Stat(c.InputDir)
		if err != nil {
			return fmt.Errorf("stat input dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input %s is not a directory", c.InputDir)
		}
	}
	for _, p := range c.Inputs {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	if strings.TrimSpace(c.OutDir) == "" {
		return errors.New("output dir is empty")
	}
	switch c.Classifier {
	case config.ClassifierLexicon, config.ClassifierGoAway, "":
	default:
		return fmt.Errorf("unknown classifier %q (want %s or %s)", c.Classifier, config.ClassifierLexicon, config.ClassifierGoAway)
	}
	switch c.Engine {
	case config.EngineWhisperCpp, "":
		if c.WhisperModel == "" {
			return errors.New("whisper model path is required (set MUTECUT_WHISPER_MODEL or whispercpp.model)")
		}
		if _, err := os.Stat(c.WhisperModel); err != nil {
			return fmt.Errorf("stat whisper model: %w", err)
		}
		return nil
	case config.EngineOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("OPENAI_API_KEY is required for the openai engine")
		}
		return openai.ValidateBaseURL(c.OpenAIBaseURL, c.OpenAIAllowedHosts)
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, config.EngineWhisperCpp, config.EngineOpenAI)
	}
}

// Requirements lists the binaries the configured run shells out to.
func (c Config) Requirements() []deps.Requirement {
	reqs := []deps.Requirement{
		{Name: "ffmpeg", Command: orDefault(c.FFmpegPath, "ffmpeg"), Description: "audio extraction and rendering"},
		{Name: "ffprobe", Command: orDefault(c.FFprobePath, "ffprobe"), Description: "duration probing", Optional: true},
	}
	if c.Engine == config.EngineWhisperCpp || c.Engine == "" {
		reqs = append(reqs, deps.Requirement{
			Name:        "whisper.cpp",
			Command:     orDefault(c.WhisperBin, "whisper-cli"),
			Description: "local transcription",
		})
	}
	return reqs
}

// Run processes every input and returns the batch report. A batch with any
// failed file returns ErrBatchFailed alongside the full report.
func Run(ctx context.Context, cfg Config) (usecase.BatchReport, error) {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("run_id", uuid.NewString())

	if missing := deps.Missing(deps.CheckBinaries(cfg.Requirements())); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.Detail))
		}
		return usecase.BatchReport{}, fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
	}

	classifier := BuildClassifier(cfg.Classifier, cfg.ExtraWords)
	asr, err := buildASR(cfg)
	if err != nil {
		return usecase.BatchReport{}, err
	}
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath).WithAudioEncoder(cfg.AudioEncoder, cfg.AudioBitrate)

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return usecase.BatchReport{}, fmt.Errorf("create output dir: %w", err)
	}
	unlock, err := lockOutputDir(cfg.OutDir)
	if err != nil {
		return usecase.BatchReport{}, err
	}
	defer unlock()

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = ".cache"
	}
	log.Info("run started",
		"engine", orDefault(cfg.Engine, config.EngineWhisperCpp),
		"classifier", orDefault(cfg.Classifier, config.ClassifierLexicon),
		"output", cfg.OutDir,
		"cache", cacheDir,
	)

	uc := usecase.New(usecase.Deps{
		Video:      video,
		ASR:        asr,
		Classifier: classifier,
		Log:        log,
	})
	rep, err := uc.RunBatch(ctx, buildSource(cfg), usecase.FileOptions{
		OutDir:         cfg.OutDir,
		CacheDir:       cacheDir,
		KeepWork:       cfg.KeepWork,
		Subtitles:      cfg.Subtitles,
		SaveTranscript: cfg.SaveTranscript,
	})
	if cfg.Summary != nil && len(rep.Files) > 0 {
		fmt.Fprint(cfg.Summary, RenderSummary(rep, IsTerminal(cfg.Summary)))
	}
	if err != nil {
		return rep, err
	}
	return rep, batchError(rep)
}

func batchError(rep usecase.BatchReport) error {
	if n := rep.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d files failed", ErrBatchFailed, n, len(rep.Files))
	}
	return nil
}

// BuildClassifier returns the shared read-only classifier for a run.
func BuildClassifier(engine string, extraWords []string) ports.Classifier {
	if engine == config.ClassifierGoAway {
		return goaway.New(extraWords)
	}
	return newLexiconMatcher(extraWords)
}

func buildASR(cfg Config) (ports.ASR, error) {
	switch cfg.Engine {
	case config.EngineOpenAI:
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Language, cfg.OpenAIRequestsPerMinute), nil
	case config.EngineWhisperCpp, "":
		return whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.Language), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

func buildSource(cfg Config) ports.InputSource {
	if cfg.InputDir != "" {
		return fsinput.DirSource{Dir: cfg.InputDir, Extensions: cfg.Extensions}
	}
	return fsinput.ListSource{Paths: cfg.Inputs}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func lockPath(outDir string) string {
	return filepath.Join(outDir, ".mutecut.lock")
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.ASR = (*openai.Adapter)(nil)
var _ ports.Classifier = (*goaway.Adapter)(nil)
var _ ports.InputSource = fsinput.DirSource{}
var _ ports.InputSource = fsinput.ListSource{}
