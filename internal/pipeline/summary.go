package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/forPelevin/mutecut/internal/domain/redact"
	"github.com/forPelevin/mutecut/internal/types"
	"github.com/forPelevin/mutecut/internal/usecase"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// RenderSummary formats one row per file. fancy selects rounded box
// drawing; otherwise plain ASCII is used for logs and pipes.
func RenderSummary(rep usecase.BatchReport, fancy bool) string {
	headers := []string{"File", "Status", "Flagged", "Ranges", "Muted", "Audio", "Time", "Detail"}
	rows := make([][]string, 0, len(rep.Files))
	for _, f := range rep.Files {
		status, detail := "ok", filepath.Base(f.VideoPath)
		if f.Failed() {
			status = string(f.Status()) + "@" + string(f.Stage)
			detail = errorDetail(f.Err)
		}
		audio := ""
		if f.Status() == types.StageDone {
			audio = f.Plan.AudioCodec.String()
		}
		rows = append(rows, []string{
			f.Input.Name,
			status,
			strconv.Itoa(f.Flagged),
			strconv.Itoa(len(f.Ranges)),
			fmt.Sprintf("%.1fs", redact.TotalMuted(f.Ranges)),
			audio,
			f.Elapsed.Round(100 * time.Millisecond).String(),
			detail,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight, alignLeft}
	out := renderTable(headers, rows, aligns, fancy)
	return out + fmt.Sprintf("\n%d succeeded, %d failed\n", rep.Succeeded(), rep.Failed())
}

func errorDetail(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	const maxDetail = 80
	if len(msg) > maxDetail {
		msg = msg[:maxDetail-3] + "..."
	}
	return msg
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, fancy bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if fancy {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)
	return tw.Render() + "\n"
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
