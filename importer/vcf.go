// ABOUTME: vCard import built on go-vcard
// ABOUTME: First non-empty TEL and EMAIL win; NOTE fills the contact note
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/harperreed/dealflow/models"
)

// DecodeVCF reads every card in r. Folded lines are unfolded by the decoder.
func DecodeVCF(r io.Reader) ([]models.ContactInput, error) {
	dec := vcard.NewDecoder(r)

	var records []models.ContactInput
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		records = append(records, cardToInput(card))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no vCards found", ErrDecode)
	}
	return records, nil
}

func cardToInput(card vcard.Card) models.ContactInput {
	var in models.ContactInput

	in.Name = strings.TrimSpace(card.Value(vcard.FieldFormattedName))
	if in.Name == "" {
		if n := card.Name(); n != nil {
			in.Name = strings.TrimSpace(n.GivenName + " " + n.FamilyName)
		}
	}

	if org := card.Value(vcard.FieldOrganization); org != "" {
		in.Company = strings.TrimSpace(strings.Split(org, ";")[0])
	}
	in.Phone = firstValue(card, vcard.FieldTelephone)
	in.Email = firstValue(card, vcard.FieldEmail)
	in.ContactNote = strings.TrimSpace(card.Value(vcard.FieldNote))

	return in
}

func firstValue(card vcard.Card, key string) string {
	for _, f := range card[key] {
		if v := strings.TrimSpace(f.Value); v != "" {
			return v
		}
	}
	return ""
}
