// ABOUTME: Export writers for the full-state JSON document and the per-contact CSV
// ABOUTME: CSV note history is flattened into one pipe-separated column
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harperreed/dealflow/models"
)

// Format selects an export writer.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or csv)", s)
}

// CSVHeaders is the fixed CSV column order.
var CSVHeaders = []string{"ID", "Name", "Company", "Phone", "Email", "LeadType", "DealStage", "NoteHistory"}

// Write dispatches on format.
func Write(w io.Writer, format Format, doc models.ExportDocument, loc *time.Location) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatCSV:
		return WriteCSV(w, doc.Contacts, loc)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteJSON writes the document with contacts, followUps and settings keys.
func WriteJSON(w io.Writer, doc models.ExportDocument) error {
	if doc.Contacts == nil {
		doc.Contacts = []models.Contact{}
	}
	if doc.FollowUps == nil {
		doc.FollowUps = []models.FollowUp{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes one row per contact. Quotes are doubled by the csv writer.
func WriteCSV(w io.Writer, contacts []models.Contact, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(CSVHeaders); err != nil {
		return err
	}
	for _, c := range contacts {
		row := []string{c.ID, c.Name, c.Company, c.Phone, c.Email, c.LeadType, c.DealStage, NoteHistory(c.Notes, loc)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// NoteHistory renders notes as "[timestamp - type] text" joined by " | ",
// with newlines flattened to spaces.
func NoteHistory(notes []models.Note, loc *time.Location) string {
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		ts := time.UnixMilli(n.Timestamp).In(loc).Format("2006-01-02 15:04:05")
		text := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(n.Text)
		parts = append(parts, fmt.Sprintf("[%s - %s] %s", ts, n.Type, text))
	}
	return strings.Join(parts, " | ")
}
