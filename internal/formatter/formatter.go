// package formatter renders accounts, library stats and transfer history as text, JSON, Markdown or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/shared"
)

// Format is an output format name accepted by --format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Formats lists every supported format in help order.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatCSV}

const timeLayout = "2006-01-02 15:04:05"

// ParseFormat resolves a --format value. The empty string selects text; "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, json, markdown or csv)", shared.ErrInvalidArgument, s)
	}
}

// Extension is the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// Account is a stored account as shown by list.
type Account struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// NewAccounts flattens a token document into accounts sorted by name.
func NewAccounts(records map[string]models.TokenRecord, now time.Time) []Account {
	accounts := make([]Account, 0, len(records))
	for name, record := range records {
		account := Account{Name: name, Expired: record.Expired(now)}
		if record.ExpiresAt != nil {
			expiry := record.Expiry()
			account.ExpiresAt = &expiry
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts
}

func (a Account) status() string {
	switch {
	case a.ExpiresAt == nil:
		return "unknown"
	case a.Expired:
		return "expired"
	default:
		return "valid"
	}
}

func (a Account) expiry() string {
	if a.ExpiresAt == nil {
		return ""
	}
	return a.ExpiresAt.Format(timeLayout)
}

// FormatAccounts renders the account list.
func FormatAccounts(accounts []Account, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return marshal(accounts)
	case FormatCSV:
		rows := make([][]string, len(accounts))
		for i, a := range accounts {
			rows[i] = []string{a.Name, a.status(), a.expiry()}
		}
		return writeCSV([]string{"Name", "Status", "Expires"}, rows)
	case FormatMarkdown:
		var buf bytes.Buffer
		buf.WriteString("# Accounts\n\n")
		if len(accounts) == 0 {
			buf.WriteString("_No accounts stored._\n")
			return buf.Bytes(), nil
		}
		buf.WriteString("| Name | Status | Expires |\n|---|---|---|\n")
		for _, a := range accounts {
			fmt.Fprintf(&buf, "| %s | %s | %s |\n", a.Name, a.status(), a.expiry())
		}
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		if len(accounts) == 0 {
			buf.WriteString("No accounts stored. Run `spotify-sync login <name>` to add one.\n")
			return buf.Bytes(), nil
		}
		for _, a := range accounts {
			switch a.status() {
			case "unknown":
				fmt.Fprintf(&buf, "%s\n", a.Name)
			default:
				fmt.Fprintf(&buf, "%s (%s, expires %s)\n", a.Name, a.status(), a.expiry())
			}
		}
		return buf.Bytes(), nil
	}
}

// Preview is the library snapshot of one account.
type Preview struct {
	Account string `json:"account"`
	models.LibraryStats
}

// FormatPreview renders the library stats for an account.
func FormatPreview(p Preview, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return marshal(p)
	case FormatCSV:
		return writeCSV(
			[]string{"Account", "Liked Songs", "Playlists", "Total Songs"},
			[][]string{{p.Account, strconv.Itoa(p.LikedSongs), strconv.Itoa(p.Playlists), strconv.Itoa(p.TotalSongs)}},
		)
	case FormatMarkdown:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# %s\n\n", p.Account)
		fmt.Fprintf(&buf, "- **Liked songs**: %d\n", p.LikedSongs)
		fmt.Fprintf(&buf, "- **Playlists**: %d\n", p.Playlists)
		fmt.Fprintf(&buf, "- **Total songs**: %d\n", p.TotalSongs)
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "Account: %s\n", p.Account)
		fmt.Fprintf(&buf, "Liked songs: %d\n", p.LikedSongs)
		fmt.Fprintf(&buf, "Playlists: %d\n", p.Playlists)
		fmt.Fprintf(&buf, "Total songs: %d\n", p.TotalSongs)
		return buf.Bytes(), nil
	}
}

// FormatHistory renders journal runs, newest first as given.
func FormatHistory(runs []*models.TransferRun, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		if runs == nil {
			runs = []*models.TransferRun{}
		}
		return marshal(runs)
	case FormatCSV:
		header := []string{"ID", "Source", "Target", "Status", "Liked Songs", "Playlists Created", "Playlists Skipped", "Tracks Added", "Started", "Duration", "Error"}
		rows := make([][]string, len(runs))
		for i, r := range runs {
			rows[i] = []string{
				r.ID,
				r.Source,
				r.Target,
				string(r.Status),
				strconv.Itoa(r.LikedSongs),
				strconv.Itoa(r.PlaylistsCreated),
				strconv.Itoa(r.PlaylistsSkipped),
				strconv.Itoa(r.TracksAdded),
				r.StartedAt.Format(time.RFC3339),
				FormatDuration(r.Duration()),
				r.Error,
			}
		}
		return writeCSV(header, rows)
	case FormatMarkdown:
		var buf bytes.Buffer
		buf.WriteString("# Transfer History\n\n")
		if len(runs) == 0 {
			buf.WriteString("_No transfers recorded._\n")
			return buf.Bytes(), nil
		}
		buf.WriteString("| Started | Source | Target | Status | Liked | Playlists | Tracks | Duration |\n")
		buf.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, r := range runs {
			fmt.Fprintf(&buf, "| %s | %s | %s | %s | %d | %d | %d | %s |\n",
				r.StartedAt.Format(timeLayout), r.Source, r.Target, r.Status,
				r.LikedSongs, r.PlaylistsCreated, r.TracksAdded, FormatDuration(r.Duration()))
		}
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		if len(runs) == 0 {
			buf.WriteString("No transfers recorded.\n")
			return buf.Bytes(), nil
		}
		for _, r := range runs {
			fmt.Fprintf(&buf, "%s  %s -> %s  [%s]\n", r.StartedAt.Format(timeLayout), r.Source, r.Target, r.Status)
			fmt.Fprintf(&buf, "  liked songs: %d, playlists: %d created / %d skipped, tracks: %d",
				r.LikedSongs, r.PlaylistsCreated, r.PlaylistsSkipped, r.TracksAdded)
			if r.FinishedAt != nil {
				fmt.Fprintf(&buf, ", took %s", FormatDuration(r.Duration()))
			}
			buf.WriteString("\n")
			if r.Error != "" {
				fmt.Fprintf(&buf, "  error: %s\n", r.Error)
			}
		}
		return buf.Bytes(), nil
	}
}

// FormatDuration renders d as m:ss, or h:mm:ss past an hour. Zero renders as "-".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	total := int(d.Round(time.Second).Seconds())
	hours, minutes, seconds := total/3600, (total%3600)/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// WriteExport writes data to path, creating parent directories.
//
// When path has no extension the format's extension is appended. Returns the path written.
func WriteExport(data []byte, path string, f Format) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: output path is empty", shared.ErrMissingArgument)
	}
	if filepath.Ext(path) == "" {
		path += f.Extension()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func marshal(v any) ([]byte, error) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}
