package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealflow/importer"
	"github.com/harperreed/dealflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utc = time.UTC

func sampleDoc() models.ExportDocument {
	return models.ExportDocument{
		Contacts: []models.Contact{{
			ID:    "c1",
			Name:  "Jane Doe",
			Phone: "555-0001",
			Notes: []models.Note{
				{ID: "n2", Text: "said \"maybe\"\nthen hung up", Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, utc).UnixMilli(), Type: models.NoteTypeOutcome},
				{ID: "n1", Text: "intro", Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, utc).UnixMilli(), Type: models.NoteTypeNote},
			},
			LastActivity: 1,
		}},
		FollowUps: []models.FollowUp{{ContactID: "c1", DueDate: 5}},
		Settings:  models.DefaultSettings(),
	}
}

func TestWriteJSONTopLevelKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleDoc()))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Len(t, raw, 3)
	assert.Contains(t, raw, "contacts")
	assert.Contains(t, raw, "followUps")
	assert.Contains(t, raw, "settings")
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"contacts\""))
}

func TestJSONExportReimports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleDoc()))

	batch, err := importer.Decode(&buf, importer.FormatJSON, importer.Options{})
	require.NoError(t, err)
	require.Len(t, batch.Contacts, 1)
	assert.Equal(t, "Jane Doe", batch.Contacts[0].Name)
	assert.Equal(t, "555-0001", batch.Contacts[0].Phone)
	assert.Len(t, batch.Contacts[0].Notes, 2)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDoc().Contacts, utc))

	assert.Contains(t, buf.String(), "\r\n")
	assert.Contains(t, buf.String(), `"[2026-03-02 10:00:00 - outcome] said ""maybe"" then hung up | [2026-03-01 09:30:00 - note] intro"`)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CSVHeaders, rows[0])
	assert.Equal(t, "c1", rows[1][0])
	assert.Equal(t, `[2026-03-02 10:00:00 - outcome] said "maybe" then hung up | [2026-03-01 09:30:00 - note] intro`, rows[1][7])
}

func TestNoteHistoryEmpty(t *testing.T) {
	assert.Equal(t, "", NoteHistory(nil, utc))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
