// ABOUTME: Import decoders turning CSV, vCard and JSON files into contact inputs
// ABOUTME: Shared validation drops records without a name or phone and reports why
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/dealflow/models"
)

// ErrDecode marks a file that couldn't be parsed at all. Nothing is imported.
var ErrDecode = errors.New("could not decode import file")

// Format identifies an import file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatVCF  Format = "vcf"
	FormatJSON Format = "json"
)

// DetectFormat picks a format from a file name's extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".vcf", ".vcard":
		return FormatVCF, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported import file %q (want .csv, .vcf or .json)", path)
}

// Rejection explains why one decoded record was dropped. Index is 1-based.
type Rejection struct {
	Index  int
	Name   string
	Reason string
}

// Batch is the validated result of decoding one file.
type Batch struct {
	Contacts []models.ContactInput
	Rejected []Rejection
}

// Validate keeps records with both a name and a phone. An empty result is
// ErrNoValidContacts so callers never silently import nothing.
func Validate(records []models.ContactInput) (Batch, error) {
	var b Batch
	for i, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.Phone = strings.TrimSpace(rec.Phone)

		var missing []string
		if rec.Name == "" {
			missing = append(missing, "name")
		}
		if rec.Phone == "" {
			missing = append(missing, "phone")
		}
		if len(missing) > 0 {
			b.Rejected = append(b.Rejected, Rejection{
				Index:  i + 1,
				Name:   rec.Name,
				Reason: "missing " + strings.Join(missing, " and "),
			})
			continue
		}
		b.Contacts = append(b.Contacts, rec)
	}

	if len(b.Contacts) == 0 {
		return b, models.ErrNoValidContacts
	}
	return b, nil
}

// Options tune Decode.
type Options struct {
	// Mapping overrides the suggested CSV header mapping, field by field.
	Mapping Mapping
	// Now stamps notes created from a CSV Notes column. Defaults to time.Now.
	Now func() time.Time
}

// Decode parses r in the given format and validates the records.
func Decode(r io.Reader, format Format, opts Options) (Batch, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var (
		records []models.ContactInput
		err     error
	)
	switch format {
	case FormatCSV:
		var table *Table
		table, err = ParseCSV(r)
		if err != nil {
			return Batch{}, err
		}
		mapping := SuggestMapping(table.Headers)
		for field, header := range opts.Mapping {
			mapping[field] = header
		}
		records, err = table.Records(mapping, opts.Now())
	case FormatVCF:
		records, err = DecodeVCF(r)
	case FormatJSON:
		records, err = DecodeJSON(r)
	default:
		return Batch{}, fmt.Errorf("unsupported import format %q", format)
	}
	if err != nil {
		return Batch{}, err
	}

	return Validate(records)
}
