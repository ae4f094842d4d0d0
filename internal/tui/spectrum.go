// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"spectrum/internal/fft"
	"spectrum/internal/transport"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Range of the bar display in dB below the loudest bin.
const floorDB = -60.0

type tickMsg time.Time

// SpectrumModel polls a spectrum source and draws it as vertical bars.
type SpectrumModel struct {
	source   transport.SpectrumSource
	kind     fft.SpectrumType
	binHz    float64
	interval time.Duration

	values  []float64
	columns []float64 // bar heights in [0, 1]
	peakBin int
	frames  int
	paused  bool
	err     error

	width, height int
}

// NewSpectrumModel creates a model reading from source every interval.
// binHz is the frequency spacing of adjacent bins.
func NewSpectrumModel(source transport.SpectrumSource, kind fft.SpectrumType, binHz float64, interval time.Duration) SpectrumModel {
	return SpectrumModel{
		source:   source,
		kind:     kind,
		binHz:    binHz,
		interval: interval,
		values:   make([]float64, source.Bins()),
		width:    80,
		height:   20,
	}
}

func (m SpectrumModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts polling.
func (m SpectrumModel) Init() tea.Cmd {
	return m.tick()
}

// Update handles ticks, resizes and key presses.
func (m SpectrumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.columns = m.layout()

	case tickMsg:
		if !m.paused {
			m.refresh()
		}
		return m, m.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		}
	}
	return m, nil
}

// refresh copies the latest spectrum and recomputes the bars.
func (m *SpectrumModel) refresh() {
	if err := m.source.SpectrumInto(m.values); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.frames++

	m.peakBin = 0
	for i := 1; i < len(m.values); i++ {
		if m.values[i] > m.values[m.peakBin] {
			m.peakBin = i
		}
	}
	m.columns = m.layout()
}

// layout groups bins into one column per terminal cell, keeping the largest
// value of each group, and maps it to a height relative to the peak.
func (m SpectrumModel) layout() []float64 {
	width := max(m.width, 1)
	if len(m.values) == 0 || m.frames == 0 {
		return make([]float64, width)
	}

	peak := m.values[m.peakBin]
	columns := make([]float64, min(width, len(m.values)))
	perColumn := float64(len(m.values)) / float64(len(columns))

	for c := range columns {
		start := int(float64(c) * perColumn)
		end := max(int(float64(c+1)*perColumn), start+1)
		var v float64
		for _, x := range m.values[start:min(end, len(m.values))] {
			v = max(v, x)
		}
		columns[c] = m.level(v, peak)
	}
	return columns
}

// level maps v to [0, 1] on a dB scale anchored at peak.
func (m SpectrumModel) level(v, peak float64) float64 {
	if v <= 0 || peak <= 0 {
		return 0
	}
	scale := 10.0
	if m.kind == fft.MagnitudeSpectrum {
		scale = 20
	}
	db := scale * math.Log10(v/peak)
	return math.Max(0, 1-db/floorDB)
}

// View renders the bars with a title and status line.
func (m SpectrumModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Spectrum"))
	sb.WriteString("\n\n")

	rows := max(m.height-6, 1)
	for r := rows; r > 0; r-- {
		threshold := float64(r) / float64(rows)
		var line strings.Builder
		for _, c := range m.columns {
			if c >= threshold {
				line.WriteRune('█')
			} else {
				line.WriteRune(' ')
			}
		}
		sb.WriteString(barStyle.Render(line.String()))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	switch {
	case m.err != nil:
		sb.WriteString(infoStyle.Render(fmt.Sprintf("Waiting for input: %v", m.err)))
	case m.frames > 0:
		status := fmt.Sprintf("Peak: %.1f Hz (bin %d)  %s spectrum  %d bins",
			float64(m.peakBin)*m.binHz, m.peakBin, m.kind, len(m.values))
		if m.paused {
			status += "  [paused]"
		}
		sb.WriteString(highlightStyle.Render(status))
	default:
		sb.WriteString(infoStyle.Render("Waiting for input..."))
	}
	sb.WriteString("\n")
	sb.WriteString(infoStyle.Render("space: Pause • q: Quit"))

	return sb.String()
}

// PeakFrequency returns the frequency of the loudest bin seen last.
func (m SpectrumModel) PeakFrequency() float64 {
	return float64(m.peakBin) * m.binHz
}

// RunSpectrum shows the live spectrum until the user quits.
func RunSpectrum(model SpectrumModel) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
