// Package panels provides the session side panel.
package panels

import (
	"fmt"
	"strings"

	"flickertag/internal/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const maxLogLines = 25

// Actions are the session operations the panel's buttons trigger; the main
// window wires them to the application state.
type Actions struct {
	OnToggle       func()
	OnFlicker      func(on bool)
	OnUndo         func()
	OnClosePolygon func()
	OnSkip         func()
	OnSave         func()
	OnLoadNext     func()
}

// SidePanel shows the active class picker, session controls, pairing
// statistics, and the operator message log.
type SidePanel struct {
	container fyne.CanvasObject

	classSelect *widget.Select
	flickerChk  *widget.Check
	statsLabel  *widget.Label
	pairLabel   *widget.Label
	logLabel    *widget.Label

	logLines []string
}

// NewSidePanel creates the panel with its buttons wired to the actions.
func NewSidePanel(actions Actions) *SidePanel {
	sp := &SidePanel{
		classSelect: widget.NewSelect(nil, nil),
		statsLabel:  widget.NewLabel(""),
		pairLabel:   widget.NewLabel("No pair loaded"),
		logLabel:    widget.NewLabel("Hello!"),
	}
	sp.logLabel.Wrapping = fyne.TextWrapWord
	sp.pairLabel.Wrapping = fyne.TextWrapWord

	sp.flickerChk = widget.NewCheck("Flicker", func(on bool) {
		if actions.OnFlicker != nil {
			actions.OnFlicker(on)
		}
	})

	toggleBtn := widget.NewButton("Toggle", actions.OnToggle)
	undoBtn := widget.NewButton("Undo", actions.OnUndo)
	closeBtn := widget.NewButton("Close polygon", actions.OnClosePolygon)
	skipBtn := widget.NewButton("Skip", actions.OnSkip)
	saveBtn := widget.NewButton("Save", actions.OnSave)
	nextBtn := widget.NewButton("Load next", actions.OnLoadNext)

	sp.container = container.NewVBox(
		widget.NewLabel("Change class:"),
		sp.classSelect,
		container.NewGridWithColumns(2, toggleBtn, sp.flickerChk),
		container.NewGridWithColumns(2, undoBtn, closeBtn),
		container.NewGridWithColumns(2, skipBtn, saveBtn),
		nextBtn,
		widget.NewSeparator(),
		sp.pairLabel,
		sp.statsLabel,
		widget.NewSeparator(),
		sp.logLabel,
	)
	return sp
}

// Container returns the panel for embedding in layouts.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetClasses populates the class picker and selects the first class.
func (sp *SidePanel) SetClasses(classes *session.ClassSet) {
	if classes == nil {
		sp.classSelect.Options = nil
		sp.classSelect.Refresh()
		return
	}

	names := make([]string, 0, classes.Len())
	for _, c := range classes.Classes() {
		names = append(names, c.Name)
	}
	sp.classSelect.Options = names
	if len(names) > 0 {
		sp.classSelect.SetSelected(names[0])
	}
}

// ActiveClass returns the currently selected class name.
func (sp *SidePanel) ActiveClass() string {
	return sp.classSelect.Selected
}

// SetFlicker updates the flicker checkbox without firing its callback.
func (sp *SidePanel) SetFlicker(on bool) {
	sp.flickerChk.SetChecked(on)
}

// SetPairText shows which pair is under annotation.
func (sp *SidePanel) SetPairText(text string) {
	sp.pairLabel.SetText(text)
}

// SetStats shows the pairing statistics.
func (sp *SidePanel) SetStats(text string) {
	sp.statsLabel.SetText(text)
}

// Log appends a line to the message log, trimming old lines past the cap.
func (sp *SidePanel) Log(format string, args ...interface{}) {
	sp.logLines = append(sp.logLines, fmt.Sprintf(" - "+format, args...))
	if len(sp.logLines) > maxLogLines {
		sp.logLines = sp.logLines[len(sp.logLines)-maxLogLines:]
	}
	sp.logLabel.SetText(strings.Join(sp.logLines, "\n"))
}
