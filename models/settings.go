// ABOUTME: Label taxonomies for lead types, deal stages and call outcomes
// ABOUTME: Provides first-run defaults and backfill for records written by older versions
package models

type LeadType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

type DealStage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

type CallOutcome struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AppSettings is the singleton settings record. Order of each slice is significant.
type AppSettings struct {
	LeadTypes    []LeadType    `json:"leadTypes"`
	DealStages   []DealStage   `json:"dealStages"`
	CallOutcomes []CallOutcome `json:"callOutcomes"`
}

// Theme names understood by the presentation layer.
const (
	ThemeGray   = "gray"
	ThemeBlue   = "blue"
	ThemeYellow = "yellow"
	ThemeOrange = "orange"
	ThemeGreen  = "green"
	ThemeRed    = "red"
	ThemePurple = "purple"
	ThemePink   = "pink"
)

// DefaultSettings returns the first-run taxonomy.
func DefaultSettings() *AppSettings {
	return &AppSettings{
		LeadTypes: []LeadType{
			{ID: "1", Name: "FSBO", Theme: ThemeRed},
			{ID: "2", Name: "Buyer", Theme: ThemeBlue},
			{ID: "3", Name: "Tenant", Theme: ThemeGreen},
			{ID: "4", Name: "Seller", Theme: ThemePurple},
			{ID: "5", Name: "Landlord", Theme: ThemeOrange},
			{ID: "6", Name: "Investor", Theme: ThemeYellow},
			{ID: "7", Name: "Developer", Theme: ThemeGray},
			{ID: "8", Name: "Client", Theme: ThemePink},
		},
		DealStages: []DealStage{
			{ID: "s1", Name: "Research", Theme: ThemeGray},
			{ID: "s2", Name: "Showings", Theme: ThemeBlue},
			{ID: "s3", Name: "LOI", Theme: ThemeYellow},
			{ID: "s4", Name: "Contract", Theme: ThemeOrange},
			{ID: "s5", Name: "CCO", Theme: ThemeGreen},
		},
		CallOutcomes: []CallOutcome{
			{ID: "co1", Name: "Made Contact Nudged"},
			{ID: "co2", Name: "Made Contact Not Interested"},
			{ID: "co3", Name: "No Answer"},
			{ID: "co4", Name: "Call went to VM"},
			{ID: "co5", Name: "Texted Instead"},
			{ID: "co6", Name: "Bad Number"},
		},
	}
}

// Backfill fills missing taxonomies with defaults and reports whether anything changed.
func (s *AppSettings) Backfill() bool {
	defaults := DefaultSettings()
	changed := false
	if s.LeadTypes == nil {
		s.LeadTypes = defaults.LeadTypes
		changed = true
	}
	if s.DealStages == nil {
		s.DealStages = defaults.DealStages
		changed = true
	}
	if s.CallOutcomes == nil {
		s.CallOutcomes = defaults.CallOutcomes
		changed = true
	}
	return changed
}

// Clone deep-copies the settings record.
func (s *AppSettings) Clone() *AppSettings {
	if s == nil {
		return nil
	}
	out := &AppSettings{}
	if s.LeadTypes != nil {
		out.LeadTypes = append([]LeadType{}, s.LeadTypes...)
	}
	if s.DealStages != nil {
		out.DealStages = append([]DealStage{}, s.DealStages...)
	}
	if s.CallOutcomes != nil {
		out.CallOutcomes = append([]CallOutcome{}, s.CallOutcomes...)
	}
	return out
}

// StageNames returns deal stage names in configured order.
func (s *AppSettings) StageNames() []string {
	names := make([]string, 0, len(s.DealStages))
	for _, st := range s.DealStages {
		names = append(names, st.Name)
	}
	return names
}

// FindDealStage looks up a stage by name. Stale labels simply aren't found.
func (s *AppSettings) FindDealStage(name string) (DealStage, bool) {
	for _, st := range s.DealStages {
		if st.Name == name {
			return st, true
		}
	}
	return DealStage{}, false
}

// FindLeadType looks up a lead type by name.
func (s *AppSettings) FindLeadType(name string) (LeadType, bool) {
	for _, lt := range s.LeadTypes {
		if lt.Name == name {
			return lt, true
		}
	}
	return LeadType{}, false
}
