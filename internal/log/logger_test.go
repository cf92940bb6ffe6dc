/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestInitJSONFileSink(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "topodraw.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: &console})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	l := WithOperation(WithComponent("storage"), "save")
	l.InfoContext(ContextWithDesign(context.Background(), "d-1"), "saved", slog.Int("nodes", 3))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	want := map[string]any{"app": "topodraw", "component": "storage", "op": "save", "msg": "saved", "design": "d-1"}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %v", k, m[k], v)
		}
	}
	if m["nodes"] != float64(3) {
		t.Fatalf("nodes = %v", m["nodes"])
	}
	if !strings.Contains(console.String(), `"msg":"saved"`) {
		t.Fatalf("console json missing record: %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TDW_LOG_LEVEL", "warn")
	t.Setenv("TDW_LOG_FORMAT", "json")
	t.Setenv("TDW_LOG_SOURCE", "TRUE")
	t.Setenv("TDW_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("TDW_SURELY_UNSET", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback = %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTextHandler(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = &textHandler{level: slog.LevelWarn, w: &buf, wmu: &sync.Mutex{}}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info enabled at warn level")
	}
	h = h.WithAttrs([]slog.Attr{slog.String("component", "interact")}).WithGroup("edge")

	r := slog.NewRecord(time.Now(), slog.LevelError, "route failed", 0)
	r.AddAttrs(slog.Float64("ratio", 0.25), slog.String("side", "top left"))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{" ERR route failed", "component=interact", "edge.ratio=0.25", `edge.side="top left"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestLevelTag(t *testing.T) {
	if levelTag(slog.LevelDebug) != "DBG" || levelTag(slog.LevelInfo) != "INF" ||
		levelTag(slog.LevelWarn) != "WRN" || levelTag(slog.LevelError+4) != "ERR" {
		t.Fatal("unexpected level tags")
	}
}
