//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"topodraw/internal/crash"
	"topodraw/internal/domain"
	"topodraw/internal/interact"
	applog "topodraw/internal/log"
	"topodraw/internal/version"
)

// autosaveEvery is how often unsaved edits are written back to the store.
const autosaveEvery = 30 * time.Second

// Run opens the editor window and blocks until it is closed.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	ctx := context.Background()
	sess, err := OpenSession(ctx, opts.Store, opts.DesignID, opts.Catalog)
	if err != nil {
		return err
	}
	defer crash.Recover(sess.CrashTarget(opts.BackupDir))
	l.Info("starting UI", slog.String("design", sess.Editor().Design().ID))

	fyneApp := app.NewWithID("topodraw")
	w := fyneApp.NewWindow(windowTitle(sess))
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1280), 800)
	winH := max(prefs.IntWithFallback("window.height", 800), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel(sess.Status())
	dc := NewDesignCanvas(sess.Editor())
	refresh := func() {
		status.SetText(sess.Status())
		w.SetTitle(windowTitle(sess))
	}
	dc.OnChanged = refresh

	save := func() {
		if err := sess.Save(ctx); err != nil {
			l.Error("save failed", slog.Any("err", err))
			dialog.ShowError(err, w)
		}
		refresh()
	}
	exportAs := func(format string) {
		dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
			if err != nil || dir == nil {
				return
			}
			path, err := sess.Export(format, dir.Path())
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported " + path)
		}, w)
	}
	setTool := func(t interact.Tool) func() {
		return func() { sess.Editor().SetTool(t); refresh() }
	}
	step := func(fn func() bool) func() {
		return func() {
			if fn() {
				dc.changed()
			}
		}
	}
	zoom := func(fn func()) func() { return func() { fn(); dc.changed() } }

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), save),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.NavigateBackIcon(), setTool(interact.ToolSelect)),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), setTool(interact.ToolPan)),
		widget.NewToolbarAction(theme.ContentAddIcon(), setTool(interact.ToolConnect)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), step(sess.Editor().Undo)),
		widget.NewToolbarAction(theme.ContentRedoIcon(), step(sess.Editor().Redo)),
		widget.NewToolbarAction(theme.DeleteIcon(), step(sess.Editor().DeleteSelection)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), zoom(sess.Editor().ZoomIn)),
		widget.NewToolbarAction(theme.ZoomOutIcon(), zoom(sess.Editor().ZoomOut)),
		widget.NewToolbarAction(theme.ZoomFitIcon(), zoom(sess.Editor().ResetZoom)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() {
			if err := sess.CopyJSON(); err != nil {
				dialog.ShowError(err, w)
			}
		}),
	)

	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Save", save),
			fyne.NewMenuItem("Rename…", func() { renameDialog(w, sess, refresh) }),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Export JSON…", func() { exportAs(FormatJSON) }),
			fyne.NewMenuItem("Export SVG…", func() { exportAs(FormatSVG) }),
			fyne.NewMenuItem("Export PNG…", func() { exportAs(FormatPNG) }),
			fyne.NewMenuItem("Export PDF…", func() { exportAs(FormatPDF) }),
		),
		fyne.NewMenu("View",
			backgroundItem(sess, dc, domain.BackgroundDots, "Dots"),
			backgroundItem(sess, dc, domain.BackgroundGrid, "Grid"),
			backgroundItem(sess, dc, domain.BackgroundPixels, "Pixels"),
			backgroundItem(sess, dc, domain.BackgroundClear, "Clear"),
		),
		fyne.NewMenu("Help",
			fyne.NewMenuItem("About", func() {
				dialog.ShowInformation("About topodraw", "topodraw "+version.String(), w)
			}),
		),
	))

	if dcv, ok := w.Canvas().(desktop.Canvas); ok {
		dcv.SetOnKeyDown(dc.KeyDown)
		dcv.SetOnKeyUp(dc.KeyUp)
		dcv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { save() })
	}

	split := container.NewHSplit(palette(sess, dc), dc)
	split.Offset = 0.2
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, split))

	ticker := time.NewTicker(autosaveEvery)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fyne.Do(func() {
					if sess.Dirty() {
						save()
					}
				})
			}
		}
	}()

	w.SetCloseIntercept(func() {
		size := w.Canvas().Size()
		prefs.SetInt("window.width", int(size.Width))
		prefs.SetInt("window.height", int(size.Height))
		if sess.Dirty() {
			save()
		}
		w.Close()
	})
	w.ShowAndRun()
	ticker.Stop()
	close(done)
	return nil
}

func windowTitle(s *Session) string {
	if s.Dirty() {
		return fmt.Sprintf("%s * - topodraw", s.Title())
	}
	return s.Title() + " - topodraw"
}

func renameDialog(w fyne.Window, s *Session, done func()) {
	e := widget.NewEntry()
	e.SetText(s.Title())
	dialog.ShowForm("Rename design", "Rename", "Cancel", []*widget.FormItem{widget.NewFormItem("Title", e)}, func(ok bool) {
		if ok {
			s.Rename(e.Text)
			done()
		}
	}, w)
}

func backgroundItem(s *Session, dc *DesignCanvas, b domain.Background, label string) *fyne.MenuItem {
	return fyne.NewMenuItem(label, func() {
		s.SetBackground(b)
		dc.changed()
	})
}

// palette lists the catalog by category; a tap places the stencil in the
// middle of the visible canvas.
func palette(s *Session, dc *DesignCanvas) fyne.CanvasObject {
	acc := widget.NewAccordion()
	for _, cat := range s.Catalog().Categories {
		box := container.NewVBox()
		for _, st := range cat.Items {
			box.Add(widget.NewButton(st.Label, func() {
				s.Place(st)
				dc.changed()
			}))
		}
		acc.Append(widget.NewAccordionItem(cat.Name, box))
	}
	if len(acc.Items) > 0 {
		acc.Open(0)
	}
	return container.NewVScroll(acc)
}
