package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/docker/go-units"

	"mcumeson/internal/crossfile"
)

// Column headers of the cross file table.
const (
	ColumnFile   = "FILE"
	ColumnStatus = "STATUS"
	ColumnSize   = "SIZE"
	ColumnSource = "SOURCE"
)

// CrossFileColumns is the column layout used by fetch and setup.
func CrossFileColumns() []Column {
	return []Column{
		{Header: ColumnFile, Width: 28},
		{Header: ColumnStatus, Width: 11},
		{Header: ColumnSize, Width: 8},
		{Header: ColumnSource, Width: 60},
	}
}

// NewCrossFileModel builds a model with one pending row per reference.
func NewCrossFileModel(title string, refs []crossfile.Reference) ProgressModel {
	m := NewProgressModel(title, CrossFileColumns())
	for _, ref := range refs {
		m.AddRow(ref.Raw, []string{ref.Name, "pending", "-", ref.Location})
	}
	return m
}

// CrossFileReporter forwards resolver progress to a bubbletea program.
type CrossFileReporter struct {
	send func(tea.Msg)
}

// NewCrossFileReporter wraps a tea.Program Send function.
func NewCrossFileReporter(send func(tea.Msg)) *CrossFileReporter {
	return &CrossFileReporter{send: send}
}

// Start implements crossfile.Reporter.
func (r *CrossFileReporter) Start(ref crossfile.Reference, status string) {
	r.send(RowUpdateMsg{Key: ref.Raw, Fields: map[string]string{ColumnStatus: status}})
}

// Complete implements crossfile.Reporter.
func (r *CrossFileReporter) Complete(res crossfile.Result) {
	r.send(RowUpdateMsg{Key: res.Raw, Fields: CrossFileFields(res)})
}

// CrossFileFields renders a resolver result as table fields.
func CrossFileFields(res crossfile.Result) map[string]string {
	fields := map[string]string{
		ColumnFile:   NonEmptyOrDash(res.Reference.Name),
		ColumnStatus: res.Status,
		ColumnSize:   "-",
		ColumnSource: NonEmptyOrDash(res.Reference.Location),
	}
	if res.SizeBytes > 0 {
		fields[ColumnSize] = units.HumanSize(float64(res.SizeBytes))
	}
	return fields
}
