/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in, anonymous usage events and crash reports.
//
// Events are queued and posted by one background goroutine so callers never
// block on the network. Short-lived processes call Flush before exiting.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "topodraw/internal/log"
	"topodraw/internal/version"
)

// Environment variables read by FromEnv.
const (
	EnvOptIn     = "TDW_TELEMETRY_OPT_IN"
	EnvEventsURL = "TDW_TELEMETRY_URL"
	EnvCrashURL  = "TDW_CRASH_UPLOAD_URL"
	EnvTimeoutMs = "TDW_TELEMETRY_TIMEOUT_MS"
	EnvDebug     = "TDW_TELEMETRY_DEBUG"
)

// Event names emitted by the application. Properties never carry titles,
// labels or any other user content.
const (
	EventDesignCreated = "design_created"
	EventDesignSaved   = "design_saved"
	EventExport        = "export"
	EventServe         = "serve_started"
)

const (
	queueSize      = 64
	defaultTimeout = 1500 * time.Millisecond
	// FlushTimeout bounds Flush when the caller's context has no deadline.
	FlushTimeout = 2 * time.Second
)

// Config controls where events go. Nothing is sent unless OptIn is set and
// the matching URL is configured.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

// FromEnv reads the TDW_TELEMETRY_* variables.
func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv(EnvOptIn)),
		EventsURL:    strings.TrimSpace(os.Getenv(EnvEventsURL)),
		CrashURL:     strings.TrimSpace(os.Getenv(EnvCrashURL)),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv(EnvDebug) != "",
	}
	if ms := strings.TrimSpace(os.Getenv(EnvTimeoutMs)); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

// WithOptIn applies the stored preference unless TDW_TELEMETRY_OPT_IN is set.
func (cfg Config) WithOptIn(stored bool) Config {
	if os.Getenv(EnvOptIn) == "" {
		cfg.OptIn = stored
	}
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// post is one queued request.
type post struct {
	url         string
	contentType string
	body        []byte
}

// Client posts queued events in the background. Errors are logged at debug
// level and otherwise ignored; a full queue drops the event.
type Client struct {
	cfg  Config
	log  *slog.Logger
	hc   *http.Client
	q    chan post

	mu       sync.Mutex
	inflight int
	idle     chan struct{} // closed while inflight == 0
	closed   bool
	stop     chan struct{}
}

// New starts a client and its sender goroutine.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	idle := make(chan struct{})
	close(idle)
	c := &Client{
		cfg:  cfg,
		log:  applog.WithComponent("telemetry"),
		hc:   &http.Client{Timeout: cfg.Timeout},
		q:    make(chan post, queueSize),
		idle: idle,
		stop: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether events are both opted in and routable.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a named event with non-identifying properties.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := make(map[string]any, len(props)+5)
	for k, v := range props {
		payload[k] = v
	}
	payload["name"] = name
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload["version"] = version.String()
	payload["os"] = runtime.GOOS
	payload["arch"] = runtime.GOARCH
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Debug("telemetry event dropped", slog.String("event", name), slog.Any("err", err))
		return
	}
	c.enqueue(post{url: c.cfg.EventsURL, contentType: "application/json", body: body})
}

// Export records an export in the given format with coarse size counts.
func (c *Client) Export(format string, nodes, edges int) {
	c.Event(EventExport, map[string]any{"format": format, "nodes": nodes, "edges": edges})
}

// UploadCrash queues a crash report when opted in and a crash URL is set.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	c.enqueue(post{url: c.cfg.CrashURL, contentType: "text/plain; charset=utf-8", body: bytes.Clone(report)})
}

func (c *Client) enqueue(p post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.q <- p:
		if c.inflight == 0 {
			c.idle = make(chan struct{})
		}
		c.inflight++
	default:
		c.log.Debug("telemetry queue full, event dropped")
	}
}

func (c *Client) done() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		close(c.idle)
	}
	c.mu.Unlock()
}

// Flush blocks until every queued post has been attempted or ctx ends. A ctx
// without deadline is bounded by FlushTimeout.
func (c *Client) Flush(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, FlushTimeout)
		defer cancel()
	}
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the sender. Posts still queued are discarded.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.stop)
}

func (c *Client) loop() {
	for {
		select {
		case <-c.stop:
			for {
				select {
				case <-c.q:
					c.done()
				default:
					return
				}
			}
		case p := <-c.q:
			c.send(p)
			c.done()
		}
	}
}

func (c *Client) send(p post) {
	req, err := http.NewRequest(http.MethodPost, p.url, bytes.NewReader(p.body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", p.contentType)
	req.Header.Set("User-Agent", "topodraw/"+version.String())
	resp, err := c.hc.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry post failed", slog.String("url", p.url), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug("telemetry post sent", slog.String("url", p.url), slog.Int("status", resp.StatusCode))
	}
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// NewDefault installs a client built from cfg as the package default,
// closing the previous one.
func NewDefault(cfg Config) {
	c := New(cfg)
	defaultMu.Lock()
	prev := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	prev.Close()
}

// Default returns the package client, creating one from the environment on
// first use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// Enabled reports whether the default client sends events.
func Enabled() bool { return Default().Enabled() }

// Event queues an event on the default client.
func Event(name string, props map[string]any) { Default().Event(name, props) }

// Export queues an export event on the default client.
func Export(format string, nodes, edges int) { Default().Export(format, nodes, edges) }

// UploadCrash queues a crash report on the default client.
func UploadCrash(report []byte) { Default().UploadCrash(report) }

// Flush drains the default client. It is a no-op when none was created.
func Flush(ctx context.Context) error {
	defaultMu.Lock()
	c := defaultClient
	defaultMu.Unlock()
	return c.Flush(ctx)
}
