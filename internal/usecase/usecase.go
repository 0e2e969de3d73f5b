package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/mutecut/internal/domain/redact"
	"github.com/forPelevin/mutecut/internal/domain/subtitles"
	"github.com/forPelevin/mutecut/internal/ports"
	"github.com/forPelevin/mutecut/internal/types"
)

type Deps struct {
	Video      ports.VideoTool
	ASR        ports.ASR
	Classifier ports.Classifier
	Log        *slog.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Usecase{d: d}
}

// FileOptions apply to every file of a batch.
type FileOptions struct {
	OutDir         string
	CacheDir       string
	KeepWork       bool
	Subtitles      bool
	SaveTranscript bool
}

// Artifacts are the deterministic output paths for one input.
type Artifacts struct {
	Transcript     string
	Video          string
	Subtitles      string
	TranscriptJSON string
}

// ArtifactsFor derives output paths from the input's base name.
func ArtifactsFor(outDir string, in types.InputFile) Artifacts {
	base := BaseName(in)
	return Artifacts{
		Transcript:     filepath.Join(outDir, base+"_censored_transcript.txt"),
		Video:          filepath.Join(outDir, base+"_censored.mp4"),
		Subtitles:      filepath.Join(outDir, base+"_censored.srt"),
		TranscriptJSON: filepath.Join(outDir, base+"_transcript.json"),
	}
}

// BaseName is the input file name without its extension.
func BaseName(in types.InputFile) string {
	name := in.Name
	if name == "" {
		name = filepath.Base(in.Path)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ProcessFile runs one input through every stage. It never panics on stage
// failures; the returned report carries the failing stage and a *StageError.
func (u Usecase) ProcessFile(ctx context.Context, in types.InputFile, opts FileOptions) (rep types.FileReport) {
	started := time.Now()
	rep = types.FileReport{Input: in}
	log := u.d.Log.With("file", in.Name)
	defer func() {
		rep.Elapsed = time.Since(started)
	}()

	fail := func(stage types.Stage, kind, err error) types.FileReport {
		rep.Stage = stage
		rep.Err = stageErr(in.Name, stage, kind, err)
		log.Error("file failed", "stage", stage, "error", err)
		return rep
	}

	workDir := filepath.Join(opts.CacheDir, "runs", hash(in.Path))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fail(types.StageExtractAudio, ErrExtraction, fmt.Errorf("create work dir: %w", err))
	}
	if !opts.KeepWork {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				log.Warn("cleanup work dir", "dir", workDir, "error", err)
			}
		}()
	}

	rep.Stage = types.StageExtractAudio
	log.Info("extracting audio", "stage", rep.Stage)
	if d, err := u.d.Video.ProbeDuration(ctx, in.Path); err != nil {
		log.Debug("probe duration", "error", err)
	} else {
		log.Debug("probed input", "duration", d)
	}
	wav := filepath.Join(workDir, "audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.Path, wav); err != nil {
		return fail(rep.Stage, ErrExtraction, err)
	}

	rep.Stage = types.StageTranscribe
	log.Info("transcribing", "stage", rep.Stage)
	tr, err := u.d.ASR.Transcribe(ctx, wav, workDir)
	if err != nil {
		return fail(rep.Stage, ErrTranscription, err)
	}
	if err := ValidateTranscript(tr); err != nil {
		return fail(rep.Stage, ErrTranscription, err)
	}
	log.Debug("transcript ready", "segments", len(tr.Segments), "words", tr.WordCount())

	rep.Stage = types.StageClassify
	raw := redact.BuildMuteRanges(tr, u.d.Classifier)
	rep.Flagged = len(raw)

	rep.Stage = types.StageMerge
	merged := redact.MergeRanges(raw)
	rep.Ranges = merged
	log.Info("classified", "flagged", rep.Flagged, "ranges", len(merged), "muted_sec", redact.TotalMuted(merged))

	rep.Stage = types.StageSynthesizeFilter
	var filter string
	if len(merged) > 0 {
		if filter, err = u.d.Video.MuteFilter(merged); err != nil {
			return fail(rep.Stage, ErrRender, err)
		}
	}

	rep.Stage = types.StagePlanRender
	rep.Plan = redact.PlanRender(merged)

	arts := ArtifactsFor(opts.OutDir, in)
	rep.Stage = types.StageRender
	log.Info("rendering", "stage", rep.Stage, "audio", rep.Plan.AudioCodec, "video", rep.Plan.VideoCodec)
	if err := u.render(ctx, in.Path, arts.Video, rep.Plan, filter); err != nil {
		return fail(rep.Stage, ErrRender, err)
	}
	rep.VideoPath = arts.Video

	rep.Stage = types.StageEmit
	written := []string{arts.Video}
	emitFail := func(err error) types.FileReport {
		for _, p := range written {
			if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warn("remove partial artifact", "path", p, "error", rmErr)
			}
		}
		rep.VideoPath, rep.TranscriptPath, rep.SubtitlesPath = "", "", ""
		return fail(rep.Stage, ErrEmit, err)
	}
	if err := writeFileAtomic(arts.Transcript, []byte(u.d.Classifier.Censor(tr.FullText()))); err != nil {
		return emitFail(err)
	}
	written = append(written, arts.Transcript)
	rep.TranscriptPath = arts.Transcript
	if opts.Subtitles {
		if err := writeFileAtomic(arts.Subtitles, []byte(subtitles.RenderSRT(tr, u.d.Classifier.Censor))); err != nil {
			return emitFail(err)
		}
		written = append(written, arts.Subtitles)
		rep.SubtitlesPath = arts.Subtitles
	}
	if opts.SaveTranscript {
		b, err := json.MarshalIndent(tr, "", "  ")
		if err != nil {
			return emitFail(fmt.Errorf("marshal transcript: %w", err))
		}
		if err := writeFileAtomic(arts.TranscriptJSON, b); err != nil {
			return emitFail(err)
		}
	}

	rep.Stage = types.StageDone
	log.Info("file done", "video", rep.VideoPath, "transcript", rep.TranscriptPath)
	return rep
}

// render writes to a hidden sibling first so a failed render leaves nothing
// under the final name.
func (u Usecase) render(ctx context.Context, in, out string, plan types.RenderPlan, filter string) error {
	tmp := filepath.Join(filepath.Dir(out), "."+strings.TrimSuffix(filepath.Base(out), ".mp4")+".part.mp4")
	if err := u.d.Video.Render(ctx, in, tmp, plan, filter); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move rendered video: %w", err)
	}
	return nil
}

// ValidateTranscript rejects word timestamps that cannot describe a time span.
func ValidateTranscript(tr types.Transcript) error {
	for si, s := range tr.Segments {
		for wi, w := range s.Words {
			switch {
			case badSeconds(w.Start) || badSeconds(w.End):
				return fmt.Errorf("malformed timestamps: segment %d word %d (%q) has invalid time", si, wi, w.Text)
			case w.End < w.Start:
				return fmt.Errorf("malformed timestamps: segment %d word %d (%q) ends before it starts (%.3f < %.3f)", si, wi, w.Text, w.End, w.Start)
			}
		}
	}
	return nil
}

func badSeconds(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}

func writeFileAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
