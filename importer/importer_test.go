package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestSuggestMappingGoogleExport(t *testing.T) {
	headers := []string{"Given Name", "Organization 1 - Name", "Phone 1 - Value", "E-mail 1 - Value", "Notes", "Group Membership"}
	m := SuggestMapping(headers)

	assert.Equal(t, "Given Name", m[FieldName])
	assert.Equal(t, "Organization 1 - Name", m[FieldCompany])
	assert.Equal(t, "Phone 1 - Value", m[FieldPhone])
	assert.Equal(t, "E-mail 1 - Value", m[FieldEmail])
	assert.Equal(t, "Notes", m[FieldNotes])
	assert.Equal(t, "Group Membership", m[FieldLeadType])
	_, mapped := m[FieldDealStage]
	assert.False(t, mapped)
}

func TestSuggestMappingFallsBackToContainment(t *testing.T) {
	m := SuggestMapping([]string{"Client Name", "Work Phone Number", "Current Deal Stage"})

	assert.Equal(t, "Client Name", m[FieldName])
	assert.Equal(t, "Work Phone Number", m[FieldPhone])
	assert.Equal(t, "Current Deal Stage", m[FieldDealStage])
}

func TestSuggestMappingAliasOrderWins(t *testing.T) {
	// "phone 1 - value" is preferred over "phone" even when it comes later
	m := SuggestMapping([]string{"Phone", "Phone 1 - Value"})
	assert.Equal(t, "Phone 1 - Value", m[FieldPhone])
}

func TestParseField(t *testing.T) {
	f, err := ParseField("dealstage")
	require.NoError(t, err)
	assert.Equal(t, FieldDealStage, f)

	f, err = ParseField("Contact Note")
	require.NoError(t, err)
	assert.Equal(t, FieldContactNote, f)

	_, err = ParseField("shoe size")
	assert.Error(t, err)
}

func TestDecodeCSV(t *testing.T) {
	input := "\ufeffName,Company,Phone,Notes,Lead Type\n" +
		"Jane Doe,\"Doe, Sons & Co\",555-0001,\"Called re: \"\"the\"\" lease\",Buyer\n" +
		"\n" +
		"No Phone,Acme,,,\n" +
		"Sam Wilson,,(312) 555-9000\n"

	batch, err := Decode(strings.NewReader(input), FormatCSV, Options{Now: fixedNow})
	require.NoError(t, err)

	require.Len(t, batch.Contacts, 2)
	jane := batch.Contacts[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "Doe, Sons & Co", jane.Company)
	assert.Equal(t, "Buyer", jane.LeadType)
	require.Len(t, jane.Notes, 1)
	assert.Equal(t, `Called re: "the" lease`, jane.Notes[0].Text)
	assert.Equal(t, models.NoteTypeNote, jane.Notes[0].Type)
	assert.Equal(t, fixedNow().UnixMilli(), jane.Notes[0].Timestamp)

	assert.Equal(t, "Sam Wilson", batch.Contacts[1].Name, "short rows are padded")
	assert.Nil(t, batch.Contacts[1].Notes)

	require.Len(t, batch.Rejected, 1)
	assert.Equal(t, "No Phone", batch.Rejected[0].Name)
	assert.Equal(t, "missing phone", batch.Rejected[0].Reason)
}

func TestDecodeCSVMappingOverride(t *testing.T) {
	input := "Who,Digits,Mobile\nJane,111,222\n"

	batch, err := Decode(strings.NewReader(input), FormatCSV, Options{
		Mapping: Mapping{FieldName: "Who", FieldPhone: "Digits"},
	})
	require.NoError(t, err)
	require.Len(t, batch.Contacts, 1)
	assert.Equal(t, "111", batch.Contacts[0].Phone)

	_, err = Decode(strings.NewReader(input), FormatCSV, Options{
		Mapping: Mapping{FieldName: "Nope"},
	})
	assert.Error(t, err)
}

func TestDecodeCSVFailures(t *testing.T) {
	_, err := Decode(strings.NewReader(""), FormatCSV, Options{})
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode(strings.NewReader("Name,Phone\n\"unterminated,1\n"), FormatCSV, Options{})
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode(strings.NewReader("Name,Phone\nJane,\n"), FormatCSV, Options{})
	assert.ErrorIs(t, err, models.ErrNoValidContacts)
}

const sampleVCF = "BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"FN:Jane Doe\r\n" +
	"N:Doe;Jane;;;\r\n" +
	"ORG:Acme Realty;Leasing\r\n" +
	"TEL;TYPE=CELL:\r\n" +
	"TEL;TYPE=WORK:555-0001\r\n" +
	"TEL;TYPE=HOME:555-9999\r\n" +
	"EMAIL:jane@example.com\r\n" +
	"NOTE:Prefers texts. Looking for\r\n" +
	"  warehouse space\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"N:Smith;John;;;\r\n" +
	"TEL:555-0002\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"FN:No Number\r\n" +
	"END:VCARD\r\n"

func TestDecodeVCF(t *testing.T) {
	batch, err := Decode(strings.NewReader(sampleVCF), FormatVCF, Options{})
	require.NoError(t, err)

	require.Len(t, batch.Contacts, 2)
	jane := batch.Contacts[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "Acme Realty", jane.Company)
	assert.Equal(t, "555-0001", jane.Phone, "first non-empty TEL wins")
	assert.Equal(t, "jane@example.com", jane.Email)
	assert.Equal(t, "Prefers texts. Looking for warehouse space", jane.ContactNote)
	assert.Empty(t, jane.Notes, "NOTE never becomes note history")

	assert.Equal(t, "John Smith", batch.Contacts[1].Name, "N is used when FN is missing")

	require.Len(t, batch.Rejected, 1)
	assert.Equal(t, 3, batch.Rejected[0].Index)
}

func TestDecodeVCFFailures(t *testing.T) {
	_, err := Decode(strings.NewReader(""), FormatVCF, Options{})
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode(strings.NewReader("this is not a vcard\n"), FormatVCF, Options{})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeJSONShapes(t *testing.T) {
	bare := `[{"name":"Jane Doe","phone":"555-0001","notes":[{"id":"n1","text":"hi","timestamp":5,"type":"outcome"}]}]`
	batch, err := Decode(strings.NewReader(bare), FormatJSON, Options{})
	require.NoError(t, err)
	require.Len(t, batch.Contacts, 1)
	assert.Equal(t, "Jane Doe", batch.Contacts[0].Name)
	require.Len(t, batch.Contacts[0].Notes, 1)
	assert.Equal(t, models.NoteTypeOutcome, batch.Contacts[0].Notes[0].Type)

	wrapped := `{"contacts":[{"name":"A","phone":"1"},{"name":"B"}],"followUps":[],"settings":null}`
	batch, err = Decode(strings.NewReader(wrapped), FormatJSON, Options{})
	require.NoError(t, err)
	assert.Len(t, batch.Contacts, 1)
	assert.Len(t, batch.Rejected, 1)
}

func TestDecodeJSONFailures(t *testing.T) {
	for _, input := range []string{``, `{"people":[]}`, `"just a string"`, `[{"name":`, `{"contacts":5}`} {
		_, err := Decode(strings.NewReader(input), FormatJSON, Options{})
		assert.ErrorIs(t, err, ErrDecode, "input %q", input)
	}
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("/tmp/Contacts.VCF")
	require.NoError(t, err)
	assert.Equal(t, FormatVCF, f)

	_, err = DetectFormat("contacts.xlsx")
	assert.Error(t, err)
}
