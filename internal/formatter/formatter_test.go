package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/shared"
	th "github.com/desertthunder/spotify-sync/internal/testing"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testRecords() map[string]models.TokenRecord {
	return map[string]models.TokenRecord{
		"work":     models.NewTokenRecord("a", "r", 3600, testNow),
		"personal": models.NewTokenRecord("b", "r", 3600, testNow.Add(-2*time.Hour)),
		"legacy":   {AccessToken: "c", RefreshToken: "r", ExpiresIn: 3600},
	}
}

func testRuns() []*models.TransferRun {
	finished := testNow.Add(95 * time.Second)
	completed := models.NewTransferRun("run-2", "old", "new", testNow)
	completed.Status = models.RunCompleted
	completed.LikedSongs = 120
	completed.PlaylistsCreated = 2
	completed.PlaylistsSkipped = 1
	completed.TracksAdded = 232
	completed.FinishedAt = &finished

	failed := models.NewTransferRun("run-1", "old", "new", testNow.Add(-time.Hour))
	failed.Status = models.RunFailed
	failed.Error = "API request failed: status 403"
	return []*models.TransferRun{completed, failed}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"TXT", FormatText},
		{"json", FormatJSON},
		{" markdown ", FormatMarkdown},
		{"md", FormatMarkdown},
		{"CSV", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("ParseFormat(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseFormat("yaml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Extensions", func(t *testing.T) {
		want := map[Format]string{FormatText: ".txt", FormatJSON: ".json", FormatMarkdown: ".md", FormatCSV: ".csv"}
		for _, f := range Formats {
			if got := f.Extension(); got != want[f] {
				t.Errorf("%s.Extension() = %q, want %q", f, got, want[f])
			}
		}
	})
}

func TestAccounts(t *testing.T) {
	t.Run("NewAccounts", func(t *testing.T) {
		accounts := NewAccounts(testRecords(), testNow)
		if len(accounts) != 3 {
			t.Fatalf("expected 3 accounts, got %d", len(accounts))
		}

		names := []string{accounts[0].Name, accounts[1].Name, accounts[2].Name}
		if strings.Join(names, ",") != "legacy,personal,work" {
			t.Errorf("accounts not sorted by name: %v", names)
		}

		if accounts[0].ExpiresAt != nil || accounts[0].Expired {
			t.Errorf("legacy account should have no expiry, got %+v", accounts[0])
		}
		if !accounts[1].Expired {
			t.Error("personal account should be expired")
		}
		if accounts[2].Expired {
			t.Error("work account should not be expired")
		}
		if !accounts[2].ExpiresAt.Equal(testNow.Add(time.Hour)) {
			t.Errorf("work expiry = %v, want %v", accounts[2].ExpiresAt, testNow.Add(time.Hour))
		}
	})

	t.Run("Text", func(t *testing.T) {
		data, err := FormatAccounts(NewAccounts(testRecords(), testNow), FormatText)
		if err != nil {
			t.Fatalf("FormatAccounts failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"legacy\n",
			"personal (expired, expires 2025-06-01 11:00:00)",
			"work (valid, expires 2025-06-01 13:00:00)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("TextEmpty", func(t *testing.T) {
		data, err := FormatAccounts(nil, FormatText)
		if err != nil {
			t.Fatalf("FormatAccounts failed: %v", err)
		}
		if !strings.Contains(string(data), "No accounts stored") {
			t.Errorf("expected empty message, got %q", data)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := FormatAccounts(NewAccounts(testRecords(), testNow), FormatJSON)
		if err != nil {
			t.Fatalf("FormatAccounts failed: %v", err)
		}

		var decoded []Account
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 3 || decoded[1].Name != "personal" || !decoded[1].Expired {
			t.Errorf("unexpected decoded accounts: %+v", decoded)
		}
		if strings.Contains(string(data), "access_token") {
			t.Error("account JSON must not include tokens")
		}
	})

	t.Run("CSV", func(t *testing.T) {
		data, err := FormatAccounts(NewAccounts(testRecords(), testNow), FormatCSV)
		if err != nil {
			t.Fatalf("FormatAccounts failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header + 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Name,Status,Expires" {
			t.Errorf("unexpected headers: %v", records[0])
		}
		if records[1][1] != "unknown" || records[1][2] != "" {
			t.Errorf("unexpected legacy row: %v", records[1])
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		data, err := FormatAccounts(NewAccounts(testRecords(), testNow), FormatMarkdown)
		if err != nil {
			t.Fatalf("FormatAccounts failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# Accounts\n") {
			t.Errorf("markdown missing heading, got:\n%s", output)
		}
		if !strings.Contains(output, "| work | valid | 2025-06-01 13:00:00 |") {
			t.Errorf("markdown missing work row, got:\n%s", output)
		}
	})
}

func TestFormatPreview(t *testing.T) {
	preview := Preview{Account: "old", LibraryStats: models.NewLibraryStats(123, 4)}

	t.Run("Text", func(t *testing.T) {
		data, err := FormatPreview(preview, FormatText)
		if err != nil {
			t.Fatalf("FormatPreview failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Account: old", "Liked songs: 123", "Playlists: 4", "Total songs: 123"} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := FormatPreview(preview, FormatJSON)
		if err != nil {
			t.Fatalf("FormatPreview failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["account"] != "old" {
			t.Errorf("account = %v, want old", decoded["account"])
		}
		if decoded["liked_songs"] != float64(123) || decoded["playlists"] != float64(4) || decoded["total_songs"] != float64(123) {
			t.Errorf("stats not flattened into JSON: %v", decoded)
		}
	})

	t.Run("CSV", func(t *testing.T) {
		data, err := FormatPreview(preview, FormatCSV)
		if err != nil {
			t.Fatalf("FormatPreview failed: %v", err)
		}

		want := "Account,Liked Songs,Playlists,Total Songs\nold,123,4,123\n"
		if string(data) != want {
			t.Errorf("CSV = %q, want %q", data, want)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		data, err := FormatPreview(preview, FormatMarkdown)
		if err != nil {
			t.Fatalf("FormatPreview failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# old\n") || !strings.Contains(output, "- **Liked songs**: 123") {
			t.Errorf("unexpected markdown:\n%s", output)
		}
	})
}

func TestFormatHistory(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		data, err := FormatHistory(testRuns(), FormatText)
		if err != nil {
			t.Fatalf("FormatHistory failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"2025-06-01 12:00:00  old -> new  [completed]",
			"liked songs: 120, playlists: 2 created / 1 skipped, tracks: 232, took 1:35",
			"[failed]",
			"error: API request failed: status 403",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}

		if strings.Index(output, "[completed]") > strings.Index(output, "[failed]") {
			t.Error("runs should keep the given order")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		for _, f := range Formats {
			data, err := FormatHistory(nil, f)
			if err != nil {
				t.Fatalf("FormatHistory(%s) failed: %v", f, err)
			}
			if len(data) == 0 {
				t.Errorf("FormatHistory(%s) returned no output", f)
			}
		}

		data, _ := FormatHistory(nil, FormatJSON)
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("empty JSON history = %q, want []", data)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := FormatHistory(testRuns(), FormatJSON)
		if err != nil {
			t.Fatalf("FormatHistory failed: %v", err)
		}

		var decoded []models.TransferRun
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].ID != "run-2" || decoded[1].Status != models.RunFailed {
			t.Errorf("unexpected decoded runs: %+v", decoded)
		}
	})

	t.Run("CSV", func(t *testing.T) {
		data, err := FormatHistory(testRuns(), FormatCSV)
		if err != nil {
			t.Fatalf("FormatHistory failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header + 2 rows, got %d", len(records))
		}
		if records[0][0] != "ID" || records[0][10] != "Error" {
			t.Errorf("unexpected headers: %v", records[0])
		}
		if records[1][4] != "120" || records[1][7] != "232" || records[1][9] != "1:35" {
			t.Errorf("unexpected completed row: %v", records[1])
		}
		if records[2][9] != "-" || records[2][10] != "API request failed: status 403" {
			t.Errorf("unexpected failed row: %v", records[2])
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		data, err := FormatHistory(testRuns(), FormatMarkdown)
		if err != nil {
			t.Fatalf("FormatHistory failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "| 2025-06-01 12:00:00 | old | new | completed | 120 | 2 | 232 | 1:35 |") {
			t.Errorf("markdown missing completed row, got:\n%s", output)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "-"},
		{-time.Second, "-"},
		{5 * time.Second, "0:05"},
		{95 * time.Second, "1:35"},
		{1500 * time.Millisecond, "0:02"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	data := []byte("Account,Liked Songs\nold,1\n")

	t.Run("AppendsExtension", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path, err := WriteExport(data, "preview", FormatCSV)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if path != "preview.csv" {
			t.Errorf("path = %q, want preview.csv", path)
		}

		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != string(data) {
			t.Errorf("file content = %q, want %q", got, data)
		}
	})

	t.Run("KeepsExtension", func(t *testing.T) {
		path, err := WriteExport(data, filepath.Join(t.TempDir(), "out.data"), FormatCSV)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if filepath.Ext(path) != ".data" {
			t.Errorf("extension should be kept, got %q", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("CreatesDirectories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "exports", "2025")
		path, err := WriteExport(data, filepath.Join(dir, "history"), FormatMarkdown)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertDirExists(t, dir)
		th.AssertFileExists(t, path)
		if filepath.Base(path) != "history.md" {
			t.Errorf("path = %q, want history.md", path)
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		if _, err := WriteExport(data, "", FormatText); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
