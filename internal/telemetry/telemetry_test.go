/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type sink struct {
	mu      sync.Mutex
	events  []map[string]any
	crashes [][]byte
}

func (s *sink) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		s.mu.Lock()
		s.events = append(s.events, m)
		s.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.crashes = append(s.crashes, b)
		s.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// wait polls cond until it holds or a second passes.
func wait(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestClient_EventExportAndUploadCrash(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Event(EventDesignCreated, map[string]any{"k": "v"})
	c.Export("png", 3, 2)
	c.Flush(context.Background())
	if !wait(func() bool { s.mu.Lock(); defer s.mu.Unlock(); return len(s.events) == 2 }) {
		t.Fatalf("expected two events to be sent")
	}
	s.mu.Lock()
	first, second := s.events[0], s.events[1]
	s.mu.Unlock()
	if first["name"] != EventDesignCreated || first["k"] != "v" {
		t.Fatalf("unexpected first event: %v", first)
	}
	if _, ok := first["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}
	if second["name"] != EventExport || second["format"] != "png" || second["nodes"] != float64(3) {
		t.Fatalf("unexpected export event: %v", second)
	}

	c.UploadCrash([]byte("STACKTRACE"))
	if !wait(func() bool { s.mu.Lock(); defer s.mu.Unlock(); return len(s.crashes) == 1 }) {
		t.Fatalf("expected crash upload to be sent")
	}
}

func TestClient_DisabledAndEmptyEventName(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Event("ignored", nil)
	c.Export("svg", 1, 1)
	c.UploadCrash([]byte("ignored"))

	c2 := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c2.Close()
	c2.Event("", nil)
	c2.Flush(nil)
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests, got %d", hits)
	}
}

func TestClient_SendErrorsAreSwallowed(t *testing.T) {
	c := New(Config{
		OptIn:        true,
		EventsURL:    "http://127.0.0.1:1/events",
		CrashURL:     "http://127.0.0.1:1/crash",
		Timeout:      50 * time.Millisecond,
		DebugLogging: true,
	})
	defer c.Close()
	c.Event("err", map[string]any{"a": 1})
	c.Flush(context.Background())
	c.UploadCrash([]byte("oops"))
	time.Sleep(100 * time.Millisecond)
}

func TestNilClientIsInert(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Fatalf("nil client must be disabled")
	}
	c.Event("x", nil)
	c.UploadCrash([]byte("x"))
	c.Flush(context.Background())
}

func TestFromEnvAndDefaultClient(t *testing.T) {
	t.Setenv("TDW_TELEMETRY_OPT_IN", "true")
	t.Setenv("TDW_TELEMETRY_URL", "http://127.0.0.1:0")
	t.Setenv("TDW_CRASH_UPLOAD_URL", "")
	t.Setenv("TDW_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL == "" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}
	if !cfg.WithOptIn(false).OptIn {
		t.Fatalf("env opt-in must win over stored preference")
	}

	NewDefault(cfg)
	if !Enabled() {
		t.Fatalf("default Enabled should be true with env config")
	}
	NewDefault(Config{})
}

func TestWithOptInUsesStoredPreference(t *testing.T) {
	t.Setenv("TDW_TELEMETRY_OPT_IN", "")
	if !(Config{}).WithOptIn(true).OptIn {
		t.Fatalf("stored opt-in not applied")
	}
	if (Config{OptIn: true}).WithOptIn(false).OptIn {
		t.Fatalf("stored opt-out not applied")
	}
}

func TestFlushWaitsForDelivery(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()

	c.Event(EventDesignCreated, nil)
	c.UploadCrash([]byte("STACK"))
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	// no polling: Flush returns only after both posts were answered
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) != 1 || s.events[0]["name"] != EventDesignCreated {
		t.Fatalf("events after Flush = %v", s.events)
	}
	if len(s.crashes) != 1 || string(s.crashes[0]) != "STACK" {
		t.Fatalf("crashes after Flush = %q", s.crashes)
	}
}

func TestFlushHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: 5 * time.Second})
	defer c.Close()
	c.Event("slow", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Flush = %v, want deadline exceeded", err)
	}
}

func TestClosedClientDropsEvents(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	c.Close()
	c.Close()
	c.Event("late", nil)
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush after Close: %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("closed client sent %d requests", hits)
	}
}

func TestDefaultFlushDeliversPackageEvents(t *testing.T) {
	var s sink
	srv := s.server(t)
	NewDefault(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	t.Cleanup(func() { NewDefault(Config{}) })

	Export("svg", 2, 1)
	if err := Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) != 1 || s.events[0]["format"] != "svg" {
		t.Fatalf("events = %v", s.events)
	}
}
