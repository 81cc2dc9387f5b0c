package shared

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestChunk(t *testing.T) {
	ids := func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	tc := []struct {
		name  string
		items []int
		size  int
		want  []int
	}{
		{name: "empty input", items: nil, size: 50, want: []int{}},
		{name: "smaller than one chunk", items: ids(3), size: 50, want: []int{3}},
		{name: "exact multiple", items: ids(100), size: 50, want: []int{50, 50}},
		{name: "with remainder", items: ids(120), size: 50, want: []int{50, 50, 20}},
		{name: "playlist batch size", items: ids(201), size: 100, want: []int{100, 100, 1}},
		{name: "invalid size", items: ids(10), size: 0, want: []int{}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(tt.items, tt.size)
			got := make([]int, 0, len(chunks))
			for _, c := range chunks {
				got = append(got, len(c))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Chunk() sizes = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("preserves order", func(t *testing.T) {
		items := ids(120)
		var flat []int
		for _, c := range Chunk(items, 50) {
			flat = append(flat, c...)
		}
		if !reflect.DeepEqual(flat, items) {
			t.Error("expected chunks to preserve input order")
		}
	})
}

func TestGenerateState(t *testing.T) {
	a := GenerateState()
	b := GenerateState()

	if a == "" || b == "" {
		t.Fatal("expected non-empty state values")
	}
	if a == b {
		t.Error("expected distinct state values")
	}
	if strings.Contains(a, "-") {
		t.Errorf("expected state without dashes, got %s", a)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"count": 2}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(compact) != `{"count":2}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"count\": 2") {
		t.Errorf("expected indented output, got %s", pretty)
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Run("appends to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")

		logger, f, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("first entry")
		f.Close()

		logger, f, err = NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed on reopen: %v", err)
		}
		logger.Info("second entry")
		f.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log: %v", err)
		}
		content := string(data)
		if !strings.Contains(content, "first entry") || !strings.Contains(content, "second entry") {
			t.Errorf("log should contain both entries, got %q", content)
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		parent := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(parent, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, _, err := NewFileLogger(filepath.Join(parent, "tui.log")); err == nil {
			t.Error("expected error when parent is a file")
		}
	})
}
