// ABOUTME: Shared helpers for CLI commands
// ABOUTME: Output sink, contact id resolution and small formatting helpers
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
)

// out is where commands print; tests swap it for a buffer.
var out io.Writer = os.Stdout

// PageSize is the default page size for listings, set from config by main.
var PageSize = 25

// resolveContact accepts a full id or an unambiguous prefix (as printed by list-contacts).
func resolveContact(ctx context.Context, s *store.Store, ref string) (models.Contact, error) {
	if ref == "" {
		return models.Contact{}, fmt.Errorf("contact ID is required")
	}
	if c, err := s.Contact(ctx, ref); err == nil {
		return c, nil
	}

	var matches []models.Contact
	for _, c := range s.AllContacts(ctx) {
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return models.Contact{}, fmt.Errorf("%w: %s", models.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	}
	return models.Contact{}, fmt.Errorf("contact ID %q is ambiguous (%d matches)", ref, len(matches))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func formatDate(ms int64) string {
	return time.UnixMilli(ms).Local().Format("Mon Jan 2, 2006")
}

// parseWithID parses flags that may come before or after a leading positional id.
func parseWithID(fs *flag.FlagSet, args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		_ = fs.Parse(args[1:])
		return args[0], fs.Args()
	}
	_ = fs.Parse(args)
	rest := fs.Args()
	if len(rest) == 0 {
		return "", nil
	}
	return rest[0], rest[1:]
}
