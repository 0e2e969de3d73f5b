package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/forPelevin/mutecut/internal/types"
)

const (
	defaultModel   = "whisper-1"
	requestTimeout = 30 * time.Minute
)

// Adapter transcribes audio through an OpenAI-compatible
// /v1/audio/transcriptions endpoint with word timestamps.
type Adapter struct {
	key      string
	model    string
	baseURL  string
	language string
	client   *http.Client
	limiter  *rate.Limiter
}

// New builds an adapter. requestsPerMinute <= 0 disables pacing.
func New(apiKey, model, baseURL, language string, requestsPerMinute int) *Adapter {
	if model == "" {
		model = defaultModel
	}
	a := &Adapter{
		key:      apiKey,
		model:    model,
		baseURL:  normalizeBaseURL(baseURL),
		language: strings.TrimSpace(language),
		client:   &http.Client{Timeout: requestTimeout},
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	if requestsPerMinute > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
	return a
}

type verboseResponse struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, _ string) (types.Transcript, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	if err := a.limiter.Wait(ctx); err != nil {
		return types.Transcript{}, fmt.Errorf("rate limiter: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, f, filepath.Base(wavPath), a.model, a.language))
	}()

	url := a.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		_ = pr.Close()
		return types.Transcript{}, err
	}
	if a.key != "" {
		req.Header.Set("Authorization", "Bearer "+a.key)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return types.Transcript{}, fmt.Errorf("transcription status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return types.Transcript{}, fmt.Errorf("transcription status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return types.Transcript{}, fmt.Errorf("decode transcription: %w", err)
	}
	return toTranscript(raw)
}

func writeForm(mw *multipart.Writer, audio io.Reader, name, model, language string) error {
	fields := [][2]string{
		{"model", model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "word"},
		{"timestamp_granularities[]", "segment"},
	}
	if language != "" && language != "auto" {
		fields = append(fields, [2]string{"language", language})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return err
	}
	return mw.Close()
}

// toTranscript places the flat word list into the reported segments by start time.
func toTranscript(raw verboseResponse) (types.Transcript, error) {
	if len(raw.Words) == 0 && strings.TrimSpace(raw.Text) != "" {
		return types.Transcript{}, errors.New("transcription response has text but no word timestamps")
	}
	tr := types.Transcript{Text: raw.Text, Language: raw.Language}
	for _, s := range raw.Segments {
		tr.Segments = append(tr.Segments, types.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	sort.SliceStable(tr.Segments, func(i, j int) bool { return tr.Segments[i].Start < tr.Segments[j].Start })

	if len(tr.Segments) == 0 && len(raw.Words) > 0 {
		tr.Segments = []types.Segment{{
			Start: raw.Words[0].Start,
			End:   raw.Words[len(raw.Words)-1].End,
			Text:  strings.TrimSpace(tr.Text),
		}}
	}
	for _, w := range raw.Words {
		word := types.Word{Start: w.Start, End: w.End, Text: strings.TrimSpace(w.Word)}
		i := segmentFor(tr.Segments, w.Start)
		tr.Segments[i].Words = append(tr.Segments[i].Words, word)
	}
	return tr, nil
}

// segmentFor returns the last segment starting at or before start.
func segmentFor(segs []types.Segment, start float64) int {
	idx := sort.Search(len(segs), func(i int) bool { return segs[i].Start > start })
	if idx == 0 {
		return 0
	}
	return idx - 1
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
