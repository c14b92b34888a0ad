// ABOUTME: Contact query engine: filter, sort, then paginate
// ABOUTME: ApplyQuery is pure; Store.Query runs it over a locked snapshot
package store

import (
	"context"
	"sort"
	"strings"

	"github.com/harperreed/dealflow/models"
)

// Query returns one page of contacts matching spec plus the full match count.
func (s *Store) Query(_ context.Context, spec models.QuerySpec) models.QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := ApplyQuery(s.contacts, spec)
	result.Items = models.CloneContacts(result.Items)
	return result
}

// ApplyQuery filters and sorts the whole collection before slicing the page.
// The input slice is never reordered.
func ApplyQuery(contacts []models.Contact, spec models.QuerySpec) models.QueryResult {
	term := strings.ToLower(spec.SearchTerm)

	matched := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if spec.LeadTypeFilter != "" && c.LeadType != spec.LeadTypeFilter {
			continue
		}
		if spec.DealStageFilter != "" && c.DealStage != spec.DealStageFilter {
			continue
		}
		if term != "" && !matchesSearch(c, term) {
			continue
		}
		matched = append(matched, c)
	}

	sortContacts(matched, spec.SortOrder)

	total := len(matched)
	if spec.PageSize <= 0 {
		return models.QueryResult{Items: matched, TotalCount: total}
	}

	page := spec.Page
	if page < 1 {
		page = 1
	}
	// Compare in pages before multiplying so huge page numbers can't overflow.
	if total == 0 || page-1 > (total-1)/spec.PageSize {
		return models.QueryResult{Items: []models.Contact{}, TotalCount: total}
	}
	start := (page - 1) * spec.PageSize
	end := total
	if spec.PageSize < total-start {
		end = start + spec.PageSize
	}
	return models.QueryResult{Items: matched[start:end], TotalCount: total}
}

func matchesSearch(c models.Contact, term string) bool {
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.Company), term) ||
		strings.Contains(strings.ToLower(c.Phone), term)
}

func sortContacts(contacts []models.Contact, order models.SortOrder) {
	switch order {
	case models.SortFirstName:
		sort.SliceStable(contacts, func(i, j int) bool {
			return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
		})
	case models.SortLastName:
		sort.SliceStable(contacts, func(i, j int) bool {
			return lastNameKey(contacts[i].Name) < lastNameKey(contacts[j].Name)
		})
	default:
		sort.SliceStable(contacts, func(i, j int) bool {
			return contacts[i].LastActivity > contacts[j].LastActivity
		})
	}
}

// lastNameKey is the final whitespace-delimited token, lowercased.
func lastNameKey(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}
