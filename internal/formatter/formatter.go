// package formatter renders song lists as terminal tables, CSV, JSON and Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
)

// Format is an output format for song lists.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatMarkdown}

// ParseFormat validates a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, s)
	}
}

// listSeparator joins list fields in CSV cells.
const listSeparator = "; "

var csvHeaders = []string{"ID", "Name", "Singers", "Tags", "Links"}

// Render encodes songs in the given format.
func Render(format Format, title string, songs []models.Song) ([]byte, error) {
	switch format {
	case FormatCSV:
		return SongsToCSV(songs)
	case FormatJSON:
		return shared.MarshalJSON(songs, true)
	case FormatMarkdown:
		return SongsToMarkdown(title, songs), nil
	case FormatTable:
		return []byte(SongsToTable(title, songs) + "\n"), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// Write renders songs to w.
func Write(w io.Writer, format Format, title string, songs []models.Song) error {
	data, err := Render(format, title, songs)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile renders songs into the file at path.
func WriteFile(path string, format Format, title string, songs []models.Song) error {
	data, err := Render(format, title, songs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SongsToCSV converts songs to CSV with columns: ID, Name, Singers, Tags, Links.
// List fields are joined with "; ".
func SongsToCSV(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.ID,
			song.Name,
			strings.Join(song.Singers, listSeparator),
			strings.Join(song.Tags, listSeparator),
			strings.Join(song.Links, listSeparator),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SongsFromCSV reads create payloads from CSV produced by [SongsToCSV].
// The ID column is optional and ignored; columns are matched by header name.
func SongsFromCSV(r io.Reader) ([]models.SongInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.SongInput{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("%w: CSV is missing a Name column", shared.ErrInvalidInput)
	}

	cell := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	inputs := []models.SongInput{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		inputs = append(inputs, models.SongInput{
			Name:    cell(record, "name"),
			Singers: splitList(cell(record, "singers")),
			Tags:    splitList(cell(record, "tags")),
			Links:   splitList(cell(record, "links")),
		})
	}

	return inputs, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SongsToMarkdown renders songs as a Markdown document with one section per song.
func SongsToMarkdown(title string, songs []models.Song) []byte {
	var buf bytes.Buffer

	if title != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	}
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(songs)))

	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, song.Name))
		buf.WriteString(fmt.Sprintf("- **Singers**: %s\n", strings.Join(song.Singers, ", ")))
		if len(song.Tags) > 0 {
			buf.WriteString(fmt.Sprintf("- **Tags**: %s\n", strings.Join(song.Tags, ", ")))
		}
		for _, link := range song.Links {
			buf.WriteString(fmt.Sprintf("- <%s>\n", link))
		}
		buf.WriteString(fmt.Sprintf("- `%s`\n\n", song.ID))
	}

	return buf.Bytes()
}

// SongsToTable renders songs as a bordered terminal table.
func SongsToTable(title string, songs []models.Song) string {
	rows := make([][]string, 0, len(songs))
	for _, song := range songs {
		rows = append(rows, []string{
			song.ID,
			song.Name,
			strings.Join(song.Singers, ", "),
			strings.Join(song.Tags, ", "),
			fmt.Sprintf("%d", len(song.Links)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			return styles.cell
		}).
		Headers("ID", "Name", "Singers", "Tags", "Links").
		Rows(rows...)

	var b strings.Builder
	if title != "" {
		b.WriteString(Title(fmt.Sprintf("%s (%d)", title, len(songs))))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	return b.String()
}
