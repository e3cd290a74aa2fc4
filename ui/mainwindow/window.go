// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"flickertag/internal/app"
	"flickertag/internal/pairing"
	"flickertag/internal/render"
	"flickertag/internal/run"
	"flickertag/internal/session"
	"flickertag/internal/version"
	"flickertag/pkg/colorutil"
	"flickertag/pkg/geometry"
	"flickertag/ui/canvas"
	"flickertag/ui/dialogs"
	"flickertag/ui/panels"
	"flickertag/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.AnnotationCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	pendingRef string // manual mode: reference picked, waiting for target
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("FlickerTag")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1200, 900))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAnnotationCanvas()
	mw.canvas.OnVertex(mw.onVertex)
	mw.canvas.OnClosePolygon(mw.onClosePolygon)

	mw.sidePanel = panels.NewSidePanel(panels.Actions{
		OnToggle:       mw.onToggle,
		OnFlicker:      mw.onFlicker,
		OnUndo:         mw.onUndo,
		OnClosePolygon: mw.onClosePolygon,
		OnSkip:         mw.onSkip,
		OnSave:         mw.onSave,
		OnLoadNext:     mw.onLoadNext,
	})

	mw.statusBar = widget.NewLabel("Ready")

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		mw.canvas,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Run Options...", mw.onConfigureRun),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Select Reference Image...", mw.onSelectReference),
		fyne.NewMenuItem("Select Target Image...", mw.onSelectTarget),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	sessionMenu := fyne.NewMenu("Session",
		fyne.NewMenuItem("Load Next Pair", mw.onLoadNext),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Reference/Target", mw.onToggle),
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Close Polygon", mw.onClosePolygon),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Skip Pair", mw.onSkip),
		fyne.NewMenuItem("Save Result", mw.onSave),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("FlickerTag",
				fmt.Sprintf("FlickerTag %s\nChange-detection patch annotation.", version.Version),
				mw.Window)
		}),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, sessionMenu, helpMenu))
}

// setupEventHandlers wires application state events to UI updates.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventRunConfigured, func(data interface{}) {
		mw.sidePanel.SetClasses(mw.state.Classes())
		mw.logf("Run configured.")
	})

	mw.state.On(app.EventQueueLoaded, func(data interface{}) {
		if stats, ok := data.(pairing.Stats); ok {
			mw.sidePanel.SetStats(stats.String())
			mw.logf("Pair queue loaded (%s).", stats)
		}
	})

	mw.state.On(app.EventPairLoaded, func(data interface{}) {
		if pair, ok := data.(*pairing.Pair); ok {
			mw.sidePanel.SetPairText(fmt.Sprintf("Reference: %s\nTarget: %s",
				filepath.Base(pair.ReferencePath), filepath.Base(pair.TargetPath)))
		}
	})

	mw.state.On(app.EventResultSaved, func(data interface{}) {
		mw.sidePanel.SetStats(mw.state.Stats().String())
	})

	mw.state.On(app.EventQueueEmpty, func(data interface{}) {
		mw.canvas.Clear()
		mw.sidePanel.SetPairText("No pair loaded")
		mw.logf("No more images to compare.")
	})
}

// onConfigureRun opens the run options dialog and starts the configured run.
func (mw *MainWindow) onConfigureRun() {
	cfg := mw.state.Config()
	if cfg == nil {
		cfg = run.New()
		cfg.ReferenceDir = mw.prefs.String(prefs.KeyLastReferenceDir, "")
		cfg.TargetDir = mw.prefs.String(prefs.KeyLastTargetDir, "")
		cfg.OutputDir = mw.prefs.String(prefs.KeyLastOutputDir, "")
	}

	dialogs.ShowRunConfig(mw.Window, cfg, func(edited *run.Config) {
		if err := mw.state.Configure(edited); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}

		mw.prefs.SetString(prefs.KeyLastReferenceDir, edited.ReferenceDir)
		mw.prefs.SetString(prefs.KeyLastTargetDir, edited.TargetDir)
		mw.prefs.SetString(prefs.KeyLastOutputDir, edited.OutputDir)

		if edited.Mode == run.ModeAutomatic {
			stats, err := mw.state.LoadQueue()
			if err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.logf("Automatic mode active (%s).", stats)
			mw.onLoadNext()
		} else {
			mw.logf("Manual mode active. Select a reference and target image.")
		}
	})
}

// onLoadNext advances to the next queued pair (automatic mode).
func (mw *MainWindow) onLoadNext() {
	cfg := mw.state.Config()
	if cfg == nil || cfg.Mode != run.ModeAutomatic {
		mw.logf("Load next requires automatic mode.")
		return
	}

	pair, err := mw.state.LoadNextPair()
	if err != nil {
		mw.reportError(err)
		return
	}
	if pair == nil {
		return // queue empty; handled by EventQueueEmpty
	}
	mw.beginSession()
}

// onSelectReference starts manual pair selection.
func (mw *MainWindow) onSelectReference() {
	if mw.state.Config() == nil {
		mw.logf("Configure a run first (File > Run Options).")
		return
	}
	startDir := mw.prefs.String(prefs.KeyLastReferenceDir, "")
	dialogs.ShowImageOpen(mw.Window, "Select reference image", startDir, func(path string) {
		mw.pendingRef = path
		mw.logf("Reference selected: %s", filepath.Base(path))
	})
}

// onSelectTarget completes manual pair selection and begins the session.
func (mw *MainWindow) onSelectTarget() {
	if mw.pendingRef == "" {
		mw.logf("Select a reference image first.")
		return
	}
	startDir := mw.prefs.String(prefs.KeyLastTargetDir, "")
	dialogs.ShowImageOpen(mw.Window, "Select target image", startDir, func(path string) {
		if _, err := mw.state.LoadManualPair(mw.pendingRef, path); err != nil {
			mw.reportError(err)
			return
		}
		mw.pendingRef = ""
		mw.logf("Target selected: %s", filepath.Base(path))
		mw.beginSession()
	})
}

// beginSession shows the loaded pair and arms polygon capture with the
// canvas's frozen view transform.
func (mw *MainWindow) beginSession() {
	mw.canvas.SetPair(mw.state.Reference(), mw.state.Target())

	view, ok := mw.canvas.ViewTransform()
	if !ok {
		mw.logf("No image pair selected.")
		return
	}
	if _, err := mw.state.StartSession(view); err != nil {
		mw.reportError(err)
		return
	}

	interval := time.Duration(mw.prefs.Int(prefs.KeyFlickerInterval, 800)) * time.Millisecond
	if mw.prefs.Bool(prefs.KeyFlickerOnLoad, false) {
		mw.canvas.StartFlicker(interval)
		mw.sidePanel.SetFlicker(true)
	} else {
		mw.sidePanel.SetFlicker(false)
	}
	mw.setStatus("Annotating %s", filepath.Base(mw.state.CurrentPair().ReferencePath))
}

// onVertex records a vertex placed on the canvas.
func (mw *MainWindow) onVertex(p geometry.Point2D) {
	sess := mw.state.Session()
	if sess == nil {
		return
	}
	if err := sess.AddVertex(p); err != nil {
		mw.reportError(err)
		return
	}
	mw.refreshOverlays(sess)
}

// onClosePolygon finalizes the in-progress polygon under the active class.
func (mw *MainWindow) onClosePolygon() {
	sess := mw.state.Session()
	if sess == nil {
		return
	}
	label := mw.sidePanel.ActiveClass()
	if err := sess.ClosePolygon(label); err != nil {
		mw.reportError(err)
		return
	}
	mw.logf("Polygon closed as %q.", label)
	mw.refreshOverlays(sess)
}

func (mw *MainWindow) onUndo() {
	sess := mw.state.Session()
	if sess == nil {
		return
	}
	sess.Undo()
	mw.logf("Backtracked.")
	mw.refreshOverlays(sess)
}

func (mw *MainWindow) onToggle() {
	mw.canvas.Toggle()
}

func (mw *MainWindow) onFlicker(on bool) {
	if on {
		interval := time.Duration(mw.prefs.Int(prefs.KeyFlickerInterval, 800)) * time.Millisecond
		mw.canvas.StartFlicker(interval)
	} else {
		mw.canvas.StopFlicker()
	}
	mw.prefs.SetBool(prefs.KeyFlickerOnLoad, on)
}

// onSkip marks the pair skipped and persists the sentinel.
func (mw *MainWindow) onSkip() {
	sess := mw.state.Session()
	if sess == nil {
		mw.logf("No pair under annotation.")
		return
	}
	if err := sess.Skip(); err != nil {
		mw.reportError(err)
		return
	}
	mw.persistResult(sess)
}

// onSave finalizes the annotation sequence and persists it.
func (mw *MainWindow) onSave() {
	sess := mw.state.Session()
	if sess == nil {
		mw.logf("No pair under annotation.")
		return
	}
	if err := sess.Finish(); err != nil {
		mw.reportError(err)
		return
	}

	cfg := mw.state.Config()
	if cfg != nil && cfg.Mode == run.ModeManual {
		mw.promptOutputPath(func() { mw.persistResult(sess) })
		return
	}
	mw.persistResult(sess)
}

// promptOutputPath lets the operator override the output path in manual mode.
func (mw *MainWindow) promptOutputPath(then func()) {
	pair := mw.state.CurrentPair()
	if pair == nil {
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		_ = writer.Close()
		mw.state.SetOutputPath(path)
		then()
	}, mw.Window)
	fd.SetFileName(filepath.Base(pair.OutputPath))
	if dir := filepath.Dir(pair.OutputPath); dir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

// persistResult writes the terminal session's result, shows the change-map
// preview, and advances in automatic mode.
func (mw *MainWindow) persistResult(sess *session.Session) {
	mw.canvas.StopFlicker()
	mw.sidePanel.SetFlicker(false)

	ref := mw.state.Reference()
	classes := mw.state.Classes()

	result, err := mw.state.SaveResult()
	if err != nil {
		mw.reportError(err)
		return
	}

	if result.Skipped {
		mw.logf("Skipped by annotator.")
	} else {
		mw.logf("Saved with %d polygons.", len(result.Annotations))
	}

	cfg := mw.state.Config()
	if cfg != nil && cfg.Mode == run.ModeAutomatic {
		mw.onLoadNext()
		return
	}

	// Manual mode: show the change map until the next pair is selected.
	if !result.Skipped && ref != nil {
		preview, err := render.ChangeMap(result, classes, ref.Width(), ref.Height())
		if err != nil {
			log.Printf("change map preview: %v", err)
			return
		}
		mw.canvas.ShowPreview(preview)
	}
}

// refreshOverlays redraws finalized polygons and pending vertices.
func (mw *MainWindow) refreshOverlays(sess *session.Session) {
	classes := sess.Classes()

	annotations := sess.Annotations()
	polygons := make([]canvas.DisplayPolygon, 0, len(annotations))
	for _, a := range annotations {
		col, _ := classes.Color(a.Label)
		polygons = append(polygons, canvas.DisplayPolygon{
			Points: a.Polygon,
			Color:  col,
			Filled: true,
		})
	}
	mw.canvas.SetPolygons(polygons)

	pendingCol, ok := classes.Color(mw.sidePanel.ActiveClass())
	if !ok {
		pendingCol = colorutil.White
	}
	mw.canvas.SetPending(sess.PendingVertices(), pendingCol)
}

// SavePreferences flushes preferences to disk.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// SavePreferencesIfChanged flushes preferences only when dirty.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if err := mw.prefs.SaveIfChanged(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

func (mw *MainWindow) setStatus(format string, args ...interface{}) {
	mw.statusBar.SetText(fmt.Sprintf(format, args...))
}

func (mw *MainWindow) logf(format string, args ...interface{}) {
	log.Printf(format, args...)
	mw.sidePanel.Log(format, args...)
}

func (mw *MainWindow) reportError(err error) {
	log.Printf("%v", err)
	mw.sidePanel.Log("WARNING! %v", err)
	mw.setStatus("%v", err)
}
