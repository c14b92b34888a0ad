// ABOUTME: CSV import with header alias matching and caller overrides
// ABOUTME: SuggestMapping is a pure function over the alias table
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harperreed/dealflow/models"
	"github.com/oklog/ulid/v2"
)

// Field is a contact attribute a CSV column can map onto.
type Field string

const (
	FieldName        Field = "Name"
	FieldCompany     Field = "Company"
	FieldPhone       Field = "Phone"
	FieldEmail       Field = "Email"
	FieldContactNote Field = "Contact Note"
	FieldNotes       Field = "Notes"
	FieldLeadType    Field = "Lead Type"
	FieldDealStage   Field = "Deal Stage"
)

// Fields lists mappable fields in display order.
var Fields = []Field{FieldName, FieldCompany, FieldPhone, FieldEmail, FieldContactNote, FieldNotes, FieldLeadType, FieldDealStage}

// Aliases are lowercase header spellings tried, in order, for each field.
var Aliases = map[Field][]string{
	FieldName:        {"name", "full name", "contact name", "given name"},
	FieldCompany:     {"company", "organization 1 - name", "organization", "workplace"},
	FieldPhone:       {"phone 1 - value", "phone", "mobile", "cell", "primary phone"},
	FieldEmail:       {"e-mail 1 - value", "email 1 - value", "email", "e-mail", "email address", "primary email"},
	FieldNotes:       {"notes", "note history", "history", "comments"},
	FieldContactNote: {"contact note", "note", "description", "primary note"},
	FieldLeadType:    {"lead type", "type", "category", "group membership"},
	FieldDealStage:   {"deal stage", "stage", "status"},
}

// Mapping assigns a CSV header to each field. Missing fields are unmapped.
type Mapping map[Field]string

// ParseField accepts a field name case-insensitively, ignoring spaces.
func ParseField(s string) (Field, error) {
	key := strings.ReplaceAll(strings.ToLower(s), " ", "")
	for _, f := range Fields {
		if strings.ReplaceAll(strings.ToLower(string(f)), " ", "") == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown import field %q", s)
}

// SuggestMapping matches headers against the alias table first, then falls
// back to any header containing the field name.
func SuggestMapping(headers []string) Mapping {
	m := Mapping{}
	for _, field := range Fields {
		if h, ok := matchAlias(headers, Aliases[field]); ok {
			m[field] = h
			continue
		}
		needle := strings.ToLower(string(field))
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), needle) {
				m[field] = h
				break
			}
		}
	}
	return m
}

func matchAlias(headers []string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		for _, h := range headers {
			if strings.ToLower(strings.TrimSpace(h)) == alias {
				return h, true
			}
		}
	}
	return "", false
}

// Table is a parsed CSV file.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseCSV reads a header row plus data rows. Quoted fields may hold commas,
// newlines and doubled quotes. Blank lines are skipped.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrDecode)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &Table{Headers: headers, Rows: rows[1:]}, nil
}

// Records converts rows using m. A mapped Notes cell becomes one note-type
// Note stamped at now.
func (t *Table) Records(m Mapping, now time.Time) ([]models.ContactInput, error) {
	index := make(map[Field]int, len(m))
	for field, header := range m {
		if header == "" {
			continue
		}
		col := -1
		for i, h := range t.Headers {
			if h == header {
				col = i
				break
			}
		}
		if col < 0 {
			return nil, fmt.Errorf("mapping for %s names unknown column %q", field, header)
		}
		index[field] = col
	}

	records := make([]models.ContactInput, 0, len(t.Rows))
	for _, row := range t.Rows {
		cell := func(f Field) string {
			col, ok := index[f]
			if !ok || col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}

		rec := models.ContactInput{
			Name:        cell(FieldName),
			Company:     cell(FieldCompany),
			Phone:       cell(FieldPhone),
			Email:       cell(FieldEmail),
			ContactNote: cell(FieldContactNote),
			LeadType:    cell(FieldLeadType),
			DealStage:   cell(FieldDealStage),
		}
		if text := cell(FieldNotes); text != "" {
			rec.Notes = []models.Note{{
				ID:        ulid.Make().String(),
				Text:      text,
				Timestamp: now.UnixMilli(),
				Type:      models.NoteTypeNote,
			}}
		}
		records = append(records, rec)
	}
	return records, nil
}
