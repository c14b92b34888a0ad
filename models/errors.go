// ABOUTME: Error taxonomy shared across store, importer and handlers
// ABOUTME: Callers match these with errors.Is
package models

import "errors"

var (
	ErrNotFound         = errors.New("contact not found")
	ErrValidation       = errors.New("validation failed")
	ErrNoValidContacts  = errors.New("no valid contacts found")
	ErrAlreadyDoneToday = errors.New("already updated today")
)
