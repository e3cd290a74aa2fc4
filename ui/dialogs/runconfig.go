// Package dialogs provides the run configuration dialog.
package dialogs

import (
	"fmt"
	"strings"

	"flickertag/internal/run"
	"flickertag/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// ShowRunConfig opens the run configuration dialog pre-filled from cfg and
// calls onApply with the edited configuration when the operator confirms.
// Validation failures are reported and the dialog reopens pre-filled with the
// operator's edits, including any added classes, for another attempt.
func ShowRunConfig(win fyne.Window, cfg *run.Config, onApply func(*run.Config)) {
	refDir := widget.NewEntry()
	refDir.SetText(cfg.ReferenceDir)
	tgtDir := widget.NewEntry()
	tgtDir.SetText(cfg.TargetDir)
	outDir := widget.NewEntry()
	outDir.SetText(cfg.OutputDir)

	refTag := widget.NewEntry()
	refTag.SetText(cfg.ReferenceTag)
	refTag.SetPlaceHolder("_2018_")
	tgtTag := widget.NewEntry()
	tgtTag.SetText(cfg.TargetTag)
	tgtTag.SetPlaceHolder("_2020_")
	outTag := widget.NewEntry()
	outTag.SetText(cfg.OutputTag)
	outTag.SetPlaceHolder("_2018-2020_")

	mode := widget.NewRadioGroup([]string{string(run.ModeAutomatic), string(run.ModeManual)}, nil)
	mode.SetSelected(string(cfg.Mode))

	classes := make([]run.ClassDef, len(cfg.Classes))
	copy(classes, cfg.Classes)

	classList := widget.NewLabel(classText(classes))
	className := widget.NewEntry()
	className.SetPlaceHolder("e.g. demolished")
	classColor := widget.NewSelect(colorutil.Names(), nil)
	classColor.SetSelectedIndex(0)

	addClassBtn := widget.NewButton("Add change class", func() {
		name := strings.TrimSpace(className.Text)
		if name == "" {
			return
		}
		classes = append(classes, run.ClassDef{Name: name, Color: classColor.Selected})
		className.SetText("")
		classList.SetText(classText(classes))
	})
	resetClassBtn := widget.NewButton("Reset", func() {
		classes = nil
		classList.SetText(classText(classes))
	})

	form := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Mode", mode),
			widget.NewFormItem("Reference dir", withBrowse(win, refDir)),
			widget.NewFormItem("Target dir", withBrowse(win, tgtDir)),
			widget.NewFormItem("Output dir", withBrowse(win, outDir)),
			widget.NewFormItem("Reference tag", refTag),
			widget.NewFormItem("Target tag", tgtTag),
			widget.NewFormItem("Output tag", outTag),
		),
		widget.NewSeparator(),
		container.NewGridWithColumns(3, className, classColor, addClassBtn),
		container.NewGridWithColumns(2, widget.NewLabel("Defined change classes:"), resetClassBtn),
		classList,
	)

	d := dialog.NewCustomConfirm("Run options", "Start", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}

		edited := *cfg
		edited.Mode = run.Mode(mode.Selected)
		edited.ReferenceDir = refDir.Text
		edited.TargetDir = tgtDir.Text
		edited.OutputDir = outDir.Text
		edited.ReferenceTag = refTag.Text
		edited.TargetTag = tgtTag.Text
		edited.OutputTag = outTag.Text
		edited.Classes = classes

		confirmRunConfig(win, &edited, func() {
			ShowRunConfig(win, &edited, onApply)
		}, onApply)
	}, win)
	d.Resize(fyne.NewSize(560, 520))
	d.Show()
}

// confirmRunConfig validates the edited configuration and hands it to onApply.
// The confirm dialog is already dismissed by the time its callback runs, so on
// a validation failure the error is shown and reopen restores the dialog with
// the operator's edits intact.
func confirmRunConfig(win fyne.Window, edited *run.Config, reopen func(), onApply func(*run.Config)) {
	if err := edited.Validate(); err != nil {
		dialog.ShowError(err, win)
		reopen()
		return
	}
	onApply(edited)
}

// withBrowse pairs a directory entry with a folder-picker button.
func withBrowse(win fyne.Window, entry *widget.Entry) fyne.CanvasObject {
	browse := widget.NewButton("…", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			entry.SetText(uri.Path())
		}, win)
	})
	return container.NewBorder(nil, nil, nil, browse, entry)
}

// ShowImageOpen opens a file picker filtered to supported raster formats.
func ShowImageOpen(win fyne.Window, title string, startDir string, onPick func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		onPick(path)
	}, win)
	fd.SetTitleText(title)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}))
	if startDir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(startDir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

func classText(classes []run.ClassDef) string {
	if len(classes) == 0 {
		return "(none)"
	}
	lines := make([]string, len(classes))
	for i, c := range classes {
		lines[i] = fmt.Sprintf("%s = %s", c.Name, c.Color)
	}
	return strings.Join(lines, "\n")
}
