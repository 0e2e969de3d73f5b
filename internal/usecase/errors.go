package usecase

import (
	"errors"
	"fmt"

	"github.com/forPelevin/mutecut/internal/types"
)

// Error kinds. Match them with errors.Is; use errors.As with *StageError for
// the failing file and stage.
var (
	ErrInput         = errors.New("input error")
	ErrExtraction    = errors.New("extraction error")
	ErrTranscription = errors.New("transcription error")
	ErrRender        = errors.New("render error")
	ErrEmit          = errors.New("emit error")
)

type StageError struct {
	File  string
	Stage types.Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.File, e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error { return []error{e.Kind, e.Err} }

func stageErr(file string, stage types.Stage, kind, err error) *StageError {
	return &StageError{File: file, Stage: stage, Kind: kind, Err: err}
}
