package whispercpp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/mutecut/internal/types"
)

type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath, language string) *Adapter {
	if language == "" {
		language = "auto"
	}
	return &Adapter{bin: binPath, model: modelPath, language: language}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, workDir string) (types.Transcript, error) {
	if _, err := os.Stat(wavPath); err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp input: %w", err)
	}
	outPrefix := filepath.Join(workDir, "whisper")
	// -ml 1 with -sow emits one transcription entry per word.
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-l", a.language,
		"-oj",
		"-ml", "1",
		"-sow",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return Parse(jb)
}

type cppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`

	// Segment/word shaped output (whisper, faster-whisper, saved transcripts).
	Text     string          `json:"text"`
	Language string          `json:"language"`
	Segments []types.Segment `json:"segments"`
}

// Parse decodes whisper JSON output into a Transcript. Both the whisper.cpp
// "transcription" shape and the segments/words shape are accepted.
func Parse(b []byte) (types.Transcript, error) {
	var out cppOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper json: %w", err)
	}

	// An empty list is a valid no-speech result; a missing one is not.
	segmentsShape := out.Segments != nil || (out.Transcription == nil && strings.TrimSpace(out.Text) != "")
	if !segmentsShape && out.Transcription == nil {
		return types.Transcript{}, errors.New("whisper json has neither transcription nor segments")
	}
	if segmentsShape {
		tr := types.Transcript{Text: out.Text, Language: out.Language, Segments: out.Segments}
		for i := range tr.Segments {
			tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
			for j := range tr.Segments[i].Words {
				tr.Segments[i].Words[j].Text = strings.TrimSpace(tr.Segments[i].Words[j].Text)
			}
		}
		return tr, nil
	}

	tr := types.Transcript{Language: out.Result.Language}
	var cur types.Segment
	var texts []string
	flush := func() {
		if len(cur.Words) == 0 {
			return
		}
		parts := make([]string, 0, len(cur.Words))
		for _, w := range cur.Words {
			parts = append(parts, w.Text)
		}
		cur.Text = strings.Join(parts, " ")
		cur.Start = cur.Words[0].Start
		cur.End = cur.Words[len(cur.Words)-1].End
		tr.Segments = append(tr.Segments, cur)
		texts = append(texts, cur.Text)
		cur = types.Segment{}
	}
	for _, e := range out.Transcription {
		text := strings.TrimSpace(e.Text)
		if text == "" || isSpecialToken(text) {
			continue
		}
		cur.Words = append(cur.Words, types.Word{
			Start: float64(e.Offsets.From) / 1000,
			End:   float64(e.Offsets.To) / 1000,
			Text:  text,
		})
		if endsSentence(text) {
			flush()
		}
	}
	flush()
	tr.Text = strings.Join(texts, " ")
	return tr, nil
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, `"')]`)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// isSpecialToken reports whisper control tokens such as [_BEG_] or [BLANK_AUDIO].
func isSpecialToken(s string) bool {
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}
