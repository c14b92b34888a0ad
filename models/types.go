// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact, Note, FollowUp, AppSettings and the query/patch shapes
package models

import "strings"

// NoteType classifies an entry in a contact's note history.
type NoteType string

const (
	NoteTypeNote    NoteType = "note"
	NoteTypeOutcome NoteType = "outcome"
	NoteTypeAutotag NoteType = "autotag"
	NoteTypeSystem  NoteType = "system"
)

// Valid reports whether t is one of the known note types.
func (t NoteType) Valid() bool {
	switch t {
	case NoteTypeNote, NoteTypeOutcome, NoteTypeAutotag, NoteTypeSystem:
		return true
	}
	return false
}

// Note is immutable once appended to a contact.
type Note struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"` // epoch ms
	Type      NoteType `json:"type"`
}

type Contact struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Company              string           `json:"company"`
	Phone                string           `json:"phone"`
	Email                string           `json:"email"`
	LeadType             string           `json:"leadType,omitempty"`
	DealStage            string           `json:"dealStage,omitempty"`
	ContactNote          string           `json:"contactNote,omitempty"`
	SubjectProperty      string           `json:"subjectProperty,omitempty"`
	Requirements         string           `json:"requirements,omitempty"`
	Notes                []Note           `json:"notes"`
	LastActivity         int64            `json:"lastActivity"` // epoch ms
	LastActionTimestamps map[string]int64 `json:"lastActionTimestamps,omitempty"`
}

// Clone returns a deep copy so callers can't reach into store-owned slices and maps.
func (c Contact) Clone() Contact {
	out := c
	if c.Notes != nil {
		out.Notes = make([]Note, len(c.Notes))
		copy(out.Notes, c.Notes)
	}
	if c.LastActionTimestamps != nil {
		out.LastActionTimestamps = make(map[string]int64, len(c.LastActionTimestamps))
		for k, v := range c.LastActionTimestamps {
			out.LastActionTimestamps[k] = v
		}
	}
	return out
}

// CloneContacts deep-copies a contact slice.
func CloneContacts(contacts []Contact) []Contact {
	if contacts == nil {
		return nil
	}
	out := make([]Contact, len(contacts))
	for i := range contacts {
		out[i] = contacts[i].Clone()
	}
	return out
}

// ContactInput is the partial shape used for creation and import.
type ContactInput struct {
	Name            string `json:"name"`
	Company         string `json:"company"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	LeadType        string `json:"leadType,omitempty"`
	DealStage       string `json:"dealStage,omitempty"`
	ContactNote     string `json:"contactNote,omitempty"`
	SubjectProperty string `json:"subjectProperty,omitempty"`
	Requirements    string `json:"requirements,omitempty"`
	Notes           []Note `json:"notes,omitempty"`
}

// ContactPatch is a shallow patch: nil fields are left untouched.
type ContactPatch struct {
	Name                 *string
	Company              *string
	Phone                *string
	Email                *string
	LeadType             *string
	DealStage            *string
	ContactNote          *string
	SubjectProperty      *string
	Requirements         *string
	LastActivity         *int64
	LastActionTimestamps map[string]int64
}

// Apply merges the set fields of p into c.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.LeadType != nil {
		c.LeadType = *p.LeadType
	}
	if p.DealStage != nil {
		c.DealStage = *p.DealStage
	}
	if p.ContactNote != nil {
		c.ContactNote = *p.ContactNote
	}
	if p.SubjectProperty != nil {
		c.SubjectProperty = *p.SubjectProperty
	}
	if p.Requirements != nil {
		c.Requirements = *p.Requirements
	}
	if p.LastActivity != nil {
		c.LastActivity = *p.LastActivity
	}
	if p.LastActionTimestamps != nil {
		c.LastActionTimestamps = make(map[string]int64, len(p.LastActionTimestamps))
		for k, v := range p.LastActionTimestamps {
			c.LastActionTimestamps[k] = v
		}
	}
}

// IsEmpty reports whether the patch sets nothing.
func (p ContactPatch) IsEmpty() bool {
	return p.Name == nil && p.Company == nil && p.Phone == nil && p.Email == nil &&
		p.LeadType == nil && p.DealStage == nil && p.ContactNote == nil &&
		p.SubjectProperty == nil && p.Requirements == nil && p.LastActivity == nil &&
		p.LastActionTimestamps == nil
}

// FollowUp is a scheduled reminder. ContactID is a weak reference.
type FollowUp struct {
	ContactID string `json:"contactId"`
	DueDate   int64  `json:"dueDate"` // epoch ms at local midnight
	Completed bool   `json:"completed"`
}

// ExportDocument is the full-state JSON export and the persisted snapshot shape.
type ExportDocument struct {
	Contacts  []Contact    `json:"contacts"`
	FollowUps []FollowUp   `json:"followUps"`
	Settings  *AppSettings `json:"settings"`
}

// StringPtr is a helper for building patches.
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr is a helper for building patches.
func Int64Ptr(v int64) *int64 {
	return &v
}

// Importable reports whether the input carries both a name and a phone.
func (in ContactInput) Importable() bool {
	return strings.TrimSpace(in.Name) != "" && strings.TrimSpace(in.Phone) != ""
}
