// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII pipeline and follow-up overview of the CRM
package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealflow/models"
)

// staleAfter is how long without activity before a contact needs attention.
const staleAfter = 30 * 24 * time.Hour

type DashboardStats struct {
	// Pipeline in configured stage order, plus contacts carrying a stage no longer configured
	Pipeline      []StageCount
	UnknownStages int
	NoStage       int

	LeadTypes []StageCount

	TotalContacts int
	TotalNotes    int

	// Follow-ups, open/overdue/completed relative to today
	FollowUps map[models.FollowUpStatus]int

	StaleContacts []StaleContact
}

type StageCount struct {
	Name  string
	Theme string
	Count int
}

type StaleContact struct {
	Name      string
	DaysSince int // -1 means no recorded activity
}

// GenerateDashboardStats summarises a snapshot as of now.
func GenerateDashboardStats(doc models.ExportDocument, now time.Time) *DashboardStats {
	settings := doc.Settings
	if settings == nil {
		settings = models.DefaultSettings()
	}

	stats := &DashboardStats{
		TotalContacts: len(doc.Contacts),
		FollowUps:     make(map[models.FollowUpStatus]int),
	}

	stageCounts := make(map[string]int)
	leadCounts := make(map[string]int)
	live := make(map[string]struct{}, len(doc.Contacts))
	for _, c := range doc.Contacts {
		live[c.ID] = struct{}{}
		stats.TotalNotes += len(c.Notes)

		switch _, known := settings.FindDealStage(c.DealStage); {
		case c.DealStage == "":
			stats.NoStage++
		case known:
			stageCounts[c.DealStage]++
		default:
			stats.UnknownStages++
		}
		if c.LeadType != "" {
			leadCounts[c.LeadType]++
		}

		if c.LastActivity == 0 {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: c.Name, DaysSince: -1})
			continue
		}
		since := now.Sub(time.UnixMilli(c.LastActivity))
		if since > staleAfter {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{
				Name:      c.Name,
				DaysSince: int(since.Hours() / 24),
			})
		}
	}

	for _, st := range settings.DealStages {
		stats.Pipeline = append(stats.Pipeline, StageCount{Name: st.Name, Theme: st.Theme, Count: stageCounts[st.Name]})
	}
	for _, lt := range settings.LeadTypes {
		stats.LeadTypes = append(stats.LeadTypes, StageCount{Name: lt.Name, Theme: lt.Theme, Count: leadCounts[lt.Name]})
	}

	for _, f := range doc.FollowUps {
		if _, ok := live[f.ContactID]; !ok {
			continue
		}
		stats.FollowUps[models.CategorizeFollowUp(f, now)]++
	}

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DEALFLOW DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE\n")
	renderBars(&out, stats.Pipeline)
	if stats.UnknownStages > 0 {
		out.WriteString(fmt.Sprintf("  %-13s %d\n", "(retired)", stats.UnknownStages))
	}
	out.WriteString(fmt.Sprintf("  %-13s %d\n\n", "(no stage)", stats.NoStage))

	out.WriteString("LEAD TYPES\n")
	renderBars(&out, stats.LeadTypes)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  📝 %d notes\n\n", stats.TotalContacts, stats.TotalNotes))

	out.WriteString("FOLLOW-UPS\n")
	out.WriteString(fmt.Sprintf("  🔴 %d overdue  🟡 %d open  🟢 %d done\n",
		stats.FollowUps[models.FollowUpOverdue],
		stats.FollowUps[models.FollowUpOpen],
		stats.FollowUps[models.FollowUpCompleted]))

	if len(stats.StaleContacts) > 0 {
		out.WriteString("\nNEEDS ATTENTION\n")
		out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no activity in 30+ days\n", len(stats.StaleContacts)))
	}

	return out.String()
}

func renderBars(out *strings.Builder, rows []StageCount) {
	maxCount := 0
	for _, r := range rows {
		if r.Count > maxCount {
			maxCount = r.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, r := range rows {
		// 0-10 blocks
		barLength := (r.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d\n", r.Name, bar, r.Count))
	}
}
