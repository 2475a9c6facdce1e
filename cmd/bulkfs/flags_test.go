package main

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
)

func TestBuildListRequest(t *testing.T) {
	base := func() *config.Config {
		cfg := config.Default()
		cfg.StartPath = "~/Projects"
		cfg.IgnoreSuffixes = []string{".bak"}
		return cfg
	}

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		flags    listFlags
		wantPath string
		wantHide bool
		wantSufx []string
		wantSort string
		wantDesc bool
		wantErr  bool
	}{
		{
			name:     "config defaults",
			wantPath: "~/Projects",
			wantHide: true,
			wantSufx: []string{".bak"},
			wantSort: "name",
		},
		{
			name:     "path argument wins over start path",
			flags:    listFlags{pathArgSet: true, path: "/tmp"},
			wantPath: "/tmp",
			wantHide: true,
			wantSufx: []string{".bak"},
			wantSort: "name",
		},
		{
			name:     "all shows hidden and ignored",
			flags:    listFlags{all: true, ignoreSet: true, ignore: ".log"},
			wantPath: "~/Projects",
			wantSort: "name",
		},
		{
			name:     "ignore flag replaces configured suffixes",
			flags:    listFlags{ignoreSet: true, ignore: ".log, .tmp,"},
			wantPath: "~/Projects",
			wantHide: true,
			wantSufx: []string{".log", ".tmp"},
			wantSort: "name",
		},
		{
			name:     "empty ignore flag clears suffixes",
			flags:    listFlags{ignoreSet: true},
			wantPath: "~/Projects",
			wantHide: true,
			wantSort: "name",
		},
		{
			name:     "reverse flips configured order",
			mutate:   func(c *config.Config) { c.Sort.Order = "desc" },
			flags:    listFlags{sort: "size", reverse: true},
			wantPath: "~/Projects",
			wantHide: true,
			wantSufx: []string{".bak"},
			wantSort: "size",
		},
		{
			name:     "descending from config",
			mutate:   func(c *config.Config) { c.Sort.Field = "modified"; c.Sort.Order = "desc" },
			wantPath: "~/Projects",
			wantHide: true,
			wantSufx: []string{".bak"},
			wantSort: "modified",
			wantDesc: true,
		},
		{
			name:    "unknown sort field",
			flags:   listFlags{sort: "colour"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			req, err := buildListRequest(cfg, tt.flags)
			if tt.wantErr {
				if err == nil {
					t.Error("buildListRequest() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildListRequest() error = %v", err)
			}

			if req.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", req.Path, tt.wantPath)
			}
			if req.HideHidden != tt.wantHide {
				t.Errorf("HideHidden = %v, want %v", req.HideHidden, tt.wantHide)
			}
			if len(req.IgnoreSuffixes) != 0 || len(tt.wantSufx) != 0 {
				if !reflect.DeepEqual(req.IgnoreSuffixes, tt.wantSufx) {
					t.Errorf("IgnoreSuffixes = %v, want %v", req.IgnoreSuffixes, tt.wantSufx)
				}
			}
			if req.SortBy != tt.wantSort {
				t.Errorf("SortBy = %q, want %q", req.SortBy, tt.wantSort)
			}
			if req.Descending != tt.wantDesc {
				t.Errorf("Descending = %v, want %v", req.Descending, tt.wantDesc)
			}
		})
	}
}

func TestFormatFor(t *testing.T) {
	prevFormat, prevTemplate, prevCfg := outputFormat, templateStr, appCfg
	t.Cleanup(func() {
		outputFormat, templateStr, appCfg = prevFormat, prevTemplate, prevCfg
	})

	cfg := config.Default()

	tests := []struct {
		name     string
		flag     string
		template string
		cfgOut   string
		want     string
	}{
		{name: "pretty degrades to plain off a terminal", cfgOut: "pretty", want: "plain"},
		{name: "empty degrades to plain", want: "plain"},
		{name: "config format", cfgOut: "yaml", want: "yaml"},
		{name: "flag wins over config", flag: "json", cfgOut: "yaml", want: "json"},
		{name: "template implies template format", template: "{{.Title}}", cfgOut: "yaml", want: "template"},
		{name: "explicit flag wins over template", flag: "csv", template: "{{.Title}}", want: "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputFormat, templateStr = tt.flag, tt.template
			c := *cfg
			c.Output = tt.cfgOut
			appCfg = &c

			if got := formatFor(&bytes.Buffer{}); got != tt.want {
				t.Errorf("formatFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryExit(t *testing.T) {
	tests := []struct {
		name    string
		summary *engine.Summary
		want    int
	}{
		{
			name:    "success",
			summary: &engine.Summary{Counts: map[string]int{"renamed": 2}},
			want:    0,
		},
		{
			name:    "top-level error",
			summary: &engine.Summary{Error: engine.MsgRootNotDir},
			want:    exitFailure,
		},
		{
			name:    "per-item failures",
			summary: &engine.Summary{Counts: map[string]int{"renamed": 1, "failed": 1}},
			want:    exitPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(summaryExit(tt.summary)); got != tt.want {
				t.Errorf("exitCode(summaryExit()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(nil); got != 0 {
		t.Errorf("exitCode(nil) = %d, want 0", got)
	}
	if got := exitCode(errors.New("boom")); got != exitFailure {
		t.Errorf("exitCode(plain error) = %d, want %d", got, exitFailure)
	}
	wrapped := fmt.Errorf("running: %w", &exitError{code: exitPartial})
	if got := exitCode(wrapped); got != exitPartial {
		t.Errorf("exitCode(wrapped) = %d, want %d", got, exitPartial)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	env := []string{
		"PATH=/usr/bin",
		"BULKFS_OUTPUT=json",
		"HOME=/home/me",
		"BULKFS_HIDE_HIDDEN=false",
		"XBULKFS_NOPE=1",
	}

	got := environmentOverrides(env)
	want := []string{"BULKFS_HIDE_HIDDEN=false", "BULKFS_OUTPUT=json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("environmentOverrides() = %v, want %v", got, want)
	}

	if got := environmentOverrides([]string{"PATH=/bin"}); len(got) != 0 {
		t.Errorf("environmentOverrides() = %v, want none", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{42, "42s"},
		{125, "2m 5s"},
		{3*3600 + 61, "3h 1m"},
		{50 * 3600, "2d 2h"},
	}

	for _, tt := range tests {
		d := formatDuration(time.Duration(tt.seconds) * time.Second)
		if d != tt.want {
			t.Errorf("formatDuration(%ds) = %q, want %q", tt.seconds, d, tt.want)
		}
	}
}
