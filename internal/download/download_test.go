package download

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fontrake/fontrake/internal/model"
)

// TestDownload tests end to end batch persistence against a local server.
func TestDownload(t *testing.T) {
	t.Parallel()

	t.Run("saves fetched fonts under family directories", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "font/woff2")
			fmt.Fprint(w, "font-bytes")
		}))
		defer server.Close()

		records := []model.FontRecord{
			{
				Name:   "roboto-regular.woff2",
				Family: "Roboto",
				Format: model.FormatWOFF2,
				URL:    server.URL + "/roboto-regular.woff2",
				Weight: "400",
				Style:  "normal",
			},
		}

		dest := t.TempDir()
		report, err := New().Download(context.Background(), records, dest, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Attempted != 1 || report.SuccessCount() != 1 || len(report.Failures) != 0 {
			t.Fatalf("unexpected report: %+v", report)
		}

		want := filepath.Join(dest, "roboto", "roboto-regular-400-normal.woff2")
		if report.SavedPaths[0] != want {
			t.Errorf("unexpected path: %s", report.SavedPaths[0])
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("saved file missing: %v", err)
		}
		if string(data) != "font-bytes" {
			t.Errorf("unexpected file contents: %q", data)
		}
	})

	t.Run("failures do not abort the batch", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "missing") {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		records := []model.FontRecord{
			{Name: "a.woff2", Family: "A", Format: model.FormatWOFF2, URL: server.URL + "/missing/a.woff2"},
			{Name: "b.woff2", Family: "B", Format: model.FormatWOFF2, URL: server.URL + "/b.woff2"},
		}

		report, err := New().Download(context.Background(), records, t.TempDir(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Attempted != 2 {
			t.Errorf("expected 2 attempts, got %d", report.Attempted)
		}
		if report.SuccessCount() != 1 {
			t.Errorf("expected 1 success, got %d", report.SuccessCount())
		}
		if len(report.Failures) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(report.Failures))
		}
		if !strings.Contains(report.Failures[0], "a.woff2") || !strings.Contains(report.Failures[0], "404") {
			t.Errorf("failure message should name the record and status: %s", report.Failures[0])
		}
	})

	t.Run("progress fires before every attempt", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		records := []model.FontRecord{
			{Name: "a.woff2", Family: "A", URL: server.URL + "/a.woff2"},
			{Name: "b.woff2", Family: "B", URL: server.URL + "/b.woff2"},
		}

		var positions []int
		progress := func(position, total int, record model.FontRecord) {
			if total != 2 {
				t.Errorf("unexpected total: %d", total)
			}
			positions = append(positions, position)
		}

		if _, err := New().Download(context.Background(), records, t.TempDir(), progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(positions) != 2 || positions[0] != 1 || positions[1] != 2 {
			t.Errorf("unexpected progress positions: %v", positions)
		}
	})

	t.Run("colliding stems get numeric suffixes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		records := []model.FontRecord{
			{Name: "font.woff2", Family: "Same", Format: model.FormatWOFF2, URL: server.URL + "/one/font.woff2"},
			{Name: "font.woff2", Family: "Same", Format: model.FormatWOFF2, URL: server.URL + "/two/font.woff2"},
		}

		dest := t.TempDir()
		report, err := New().Download(context.Background(), records, dest, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.SuccessCount() != 2 {
			t.Fatalf("expected 2 successes, got %+v", report)
		}
		if filepath.Base(report.SavedPaths[0]) != "font.woff2" {
			t.Errorf("unexpected first path: %s", report.SavedPaths[0])
		}
		if filepath.Base(report.SavedPaths[1]) != "font-1.woff2" {
			t.Errorf("unexpected second path: %s", report.SavedPaths[1])
		}
	})

	t.Run("collision with a preexisting file on disk", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		dest := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dest, "same"), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dest, "same", "font.woff2"), []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}

		records := []model.FontRecord{
			{Name: "font.woff2", Family: "Same", Format: model.FormatWOFF2, URL: server.URL + "/font.woff2"},
		}

		report, err := New().Download(context.Background(), records, dest, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.SuccessCount() != 1 {
			t.Fatalf("unexpected report: %+v", report)
		}
		if filepath.Base(report.SavedPaths[0]) != "font-1.woff2" {
			t.Errorf("expected suffixed name, got %s", report.SavedPaths[0])
		}
	})

	t.Run("directory setup failure aborts with zero attempts", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "blocker")
		if err := os.WriteFile(blocker, []byte("not a directory"), 0o600); err != nil {
			t.Fatal(err)
		}

		records := []model.FontRecord{
			{Name: "a.woff2", Family: "A", URL: "https://example.com/a.woff2"},
		}

		report, err := New().Download(context.Background(), records, blocker, nil)
		if err == nil {
			t.Fatal("expected error for unusable destination root")
		}
		if report.Attempted != 0 {
			t.Errorf("expected zero attempts, got %d", report.Attempted)
		}
	})

	t.Run("sends referer and origin headers", func(t *testing.T) {
		t.Parallel()

		var gotReferer, gotOrigin string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotReferer = r.Header.Get("Referer")
			gotOrigin = r.Header.Get("Origin")
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		records := []model.FontRecord{
			{
				Name:    "a.woff2",
				Family:  "A",
				URL:     server.URL + "/a.woff2",
				Referer: "https://example.com/page",
			},
		}

		if _, err := New().Download(context.Background(), records, t.TempDir(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotReferer != "https://example.com/page" {
			t.Errorf("unexpected Referer: %s", gotReferer)
		}
		if gotOrigin != "https://example.com" {
			t.Errorf("unexpected Origin: %s", gotOrigin)
		}
	})

	t.Run("inline base64 payload never touches the network", func(t *testing.T) {
		t.Parallel()

		payload := base64.StdEncoding.EncodeToString([]byte("embedded-bytes"))
		records := []model.FontRecord{
			{
				Name:   "embedded",
				Family: "Embedded",
				Format: model.FormatWOFF2,
				URL:    "data:font/woff2;base64," + payload,
			},
		}

		dest := t.TempDir()
		report, err := New().Download(context.Background(), records, dest, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.SuccessCount() != 1 {
			t.Fatalf("unexpected report: %+v", report)
		}
		data, err := os.ReadFile(report.SavedPaths[0])
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "embedded-bytes" {
			t.Errorf("unexpected decoded contents: %q", data)
		}
	})
}

// TestDecodeDataURL tests both data URL encodings.
func TestDecodeDataURL(t *testing.T) {
	t.Parallel()

	t.Run("base64", func(t *testing.T) {
		t.Parallel()

		data, mime, err := decodeDataURL("data:font/woff;base64," + base64.StdEncoding.EncodeToString([]byte("hello")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("unexpected bytes: %q", data)
		}
		if mime != "font/woff" {
			t.Errorf("unexpected mime type: %s", mime)
		}
	})

	t.Run("percent encoded", func(t *testing.T) {
		t.Parallel()

		data, mime, err := decodeDataURL("data:text/plain,hello%20world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "hello world" {
			t.Errorf("unexpected bytes: %q", data)
		}
		if mime != "text/plain" {
			t.Errorf("unexpected mime type: %s", mime)
		}
	})

	t.Run("missing comma is an error", func(t *testing.T) {
		t.Parallel()

		if _, _, err := decodeDataURL("data:font/woff2;base64"); err == nil {
			t.Fatal("expected error")
		}
	})
}

// TestExtensionFor tests the format, sniff, fallback chain.
func TestExtensionFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		format      model.FontFormat
		contentType string
		want        string
	}{
		{"declared format wins", model.FormatWOFF2, "font/ttf", "woff2"},
		{"sniff woff2", model.FormatUnknown, "font/woff2", "woff2"},
		{"sniff woff", model.FormatUnknown, "application/font-woff", "woff"},
		{"sniff opentype", model.FormatUnknown, "font/opentype", "otf"},
		{"sniff truetype", model.FormatUnknown, "application/x-font-ttf", "ttf"},
		{"generic fallback", model.FormatUnknown, "application/octet-stream", "bin"},
		{"empty content type", model.FormatUnknown, "", "bin"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := model.FontRecord{Format: tt.format}
			if got := extensionFor(record, tt.contentType); got != tt.want {
				t.Errorf("extensionFor(%s, %q) = %q, want %q", tt.format, tt.contentType, got, tt.want)
			}
		})
	}
}

// TestFileStem tests destination stem construction.
func TestFileStem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record model.FontRecord
		want   string
	}{
		{
			name:   "name weight and style",
			record: model.FontRecord{Name: "Roboto-Bold.woff2", Weight: "700", Style: "italic"},
			want:   "roboto-bold-700-italic",
		},
		{
			name:   "empty name falls back to font",
			record: model.FontRecord{Name: "---", Weight: "400"},
			want:   "font-400",
		},
		{
			name:   "missing weight and style",
			record: model.FontRecord{Name: "lato.ttf"},
			want:   "lato",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileStem(tt.record); got != tt.want {
				t.Errorf("fileStem(%+v) = %q, want %q", tt.record, got, tt.want)
			}
		})
	}
}
