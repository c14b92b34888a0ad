// ABOUTME: JSON import accepting a bare contact array or a full export document
// ABOUTME: Embedded notes pass through untouched
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/harperreed/dealflow/models"
)

// DecodeJSON accepts `[...]` or `{"contacts": [...]}`.
func DecodeJSON(r io.Reader) ([]models.ContactInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrDecode)
	}

	var records []models.ContactInput
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	case '{':
		var doc struct {
			Contacts *[]models.ContactInput `json:"contacts"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if doc.Contacts == nil {
			return nil, fmt.Errorf("%w: expected an array of contacts or an object with a \"contacts\" array", ErrDecode)
		}
		records = *doc.Contacts
	default:
		return nil, fmt.Errorf("%w: expected an array of contacts or an object with a \"contacts\" array", ErrDecode)
	}

	return records, nil
}
