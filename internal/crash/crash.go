/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an unrecovered panic into a report file, a crash-safe
// copy of the open design, and a non-zero exit.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"topodraw/internal/domain"
	applog "topodraw/internal/log"
	"topodraw/internal/storage"
	"topodraw/internal/telemetry"
	"topodraw/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

const stampLayout = "20060102-150405"

// Target tells Recover where to put the report and what to autosave.
// A nil Target writes the report to the temp dir only.
type Target struct {
	// Dir receives a backups/ folder with the report and the autosave.
	Dir string
	// Design returns the design currently open, if any.
	Design func() (domain.Design, bool)
}

func (t *Target) dir() string {
	if t == nil || t.Dir == "" {
		return os.TempDir()
	}
	return filepath.Join(t.Dir, storage.BackupsDirName)
}

// Recover captures a panic, logs it with the stack, writes a report file and
// autosaves the open design before exiting with status 2.
//
// Usage: defer crash.Recover(target)
func Recover(t *Target) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(t, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, err := autosave(t); err != nil {
		l.Error("autosave after crash failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("autosave after crash written", slog.String("path", path))
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	if err := telemetry.Flush(context.Background()); err != nil {
		l.Warn("crash upload not confirmed", slog.Any("err", err))
	}
	exitFn(2)
}

// autosave writes the open design next to the report. It returns "" when
// there is nothing to save.
func autosave(t *Target) (string, error) {
	if t == nil || t.Design == nil {
		return "", nil
	}
	d, ok := t.Design()
	if !ok {
		return "", nil
	}
	path := filepath.Join(t.dir(), "autosave-"+time.Now().Format(stampLayout)+storage.DesignFileExt)
	if err := storage.SaveFile(path, d); err != nil {
		return "", err
	}
	return path, nil
}

func writeReport(t *Target, panicVal any, stack []byte) (string, error) {
	dir := t.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format(stampLayout)))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "topodraw crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t != nil && t.Design != nil {
		if d, ok := t.Design(); ok {
			// counts only; titles and labels stay out of reports
			_, _ = fmt.Fprintf(&buf, "Design: %s (%d nodes, %d edges)\n", d.ID, len(d.Nodes), len(d.Edges))
		}
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
