package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/forPelevin/mutecut/internal/ports"
	"github.com/forPelevin/mutecut/internal/types"
)

var errNoInputs = errors.New("no input files found")

type BatchReport struct {
	Files []types.FileReport
}

func (b BatchReport) Failed() int {
	n := 0
	for _, f := range b.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}

func (b BatchReport) Succeeded() int { return len(b.Files) - b.Failed() }

// RunBatch lists inputs once and processes them one after another. A file's
// failure is recorded in its report and never stops the batch; only listing
// errors, an empty batch or context cancellation end it early.
func (u Usecase) RunBatch(ctx context.Context, src ports.InputSource, opts FileOptions) (BatchReport, error) {
	inputs, err := src.Inputs(ctx)
	if err != nil {
		return BatchReport{}, fmt.Errorf("%w: %w", ErrInput, err)
	}
	if len(inputs) == 0 {
		return BatchReport{}, fmt.Errorf("%w: %w", ErrInput, errNoInputs)
	}
	u.d.Log.Info("batch started", "files", len(inputs))

	var rep BatchReport
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		base := BaseName(in)
		if prev, ok := seen[base]; ok {
			err := fmt.Errorf("output name %q already used by %s", base, prev)
			u.d.Log.Error("file failed", "file", in.Name, "stage", types.StageInput, "error", err)
			rep.Files = append(rep.Files, types.FileReport{
				Input: in,
				Stage: types.StageInput,
				Err:   stageErr(in.Name, types.StageInput, ErrInput, err),
			})
			continue
		}
		seen[base] = in.Path

		u.d.Log.Info("processing file", "file", in.Name, "index", fmt.Sprintf("%d/%d", i+1, len(inputs)))
		rep.Files = append(rep.Files, u.ProcessFile(ctx, in, opts))
	}
	u.d.Log.Info("batch finished", "succeeded", rep.Succeeded(), "failed", rep.Failed())
	return rep, nil
}
