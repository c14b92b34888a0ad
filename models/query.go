// ABOUTME: Query specification and result types for contact listing
// ABOUTME: Shared by the store, CLI, MCP handlers and TUI
package models

import "fmt"

// SortOrder selects the contact ordering.
type SortOrder string

const (
	SortActivity  SortOrder = "activity"
	SortFirstName SortOrder = "firstName"
	SortLastName  SortOrder = "lastName"
)

// ParseSortOrder accepts the canonical names plus a few CLI-friendly spellings.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "activity", "recent":
		return SortActivity, nil
	case "firstName", "first-name", "first", "name":
		return SortFirstName, nil
	case "lastName", "last-name", "last":
		return SortLastName, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want activity, firstName or lastName)", s)
}

// QuerySpec describes a filtered, sorted, paginated contact listing.
// PageSize <= 0 returns every match and ignores Page.
type QuerySpec struct {
	Page            int
	PageSize        int
	SearchTerm      string
	LeadTypeFilter  string
	DealStageFilter string
	SortOrder       SortOrder
}

type QueryResult struct {
	Items      []Contact `json:"items"`
	TotalCount int       `json:"totalCount"`
}
