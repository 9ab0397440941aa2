package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/tahp/LinkManager/internal/links"
	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/reminder"
	"github.com/tahp/LinkManager/internal/settings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Commands handles all CLI command execution.
type Commands struct {
	links    *links.Repository
	settings *settings.Store
	out      io.Writer
	now      func() time.Time
	openURL  func(url string) error
}

// NewCommands creates a new Commands instance writing to out.
func NewCommands(repo *links.Repository, store *settings.Store, out io.Writer) *Commands {
	return &Commands{
		links:    repo,
		settings: store,
		out:      out,
		now:      time.Now,
		openURL:  OpenBrowser,
	}
}

// AddInput carries the flags of the add command.
type AddInput struct {
	URL     string
	Title   string
	Notes   string
	Default bool
	Remind  string // HH:MM, today
}

// Add adds a new link.
func (c *Commands) Add(ctx context.Context, in AddInput) error {
	now := c.now()
	clock, err := reminder.ParseClock(in.Remind, reminder.BaseFor(0, now), now)
	if err != nil {
		return err
	}

	link, err := c.links.Add(ctx, model.NewLink{
		URL:               in.URL,
		Title:             in.Title,
		Notes:             in.Notes,
		IsDefault:         in.Default,
		ReminderTimestamp: clock.Timestamp,
	})
	if errors.Is(err, model.ErrDuplicate) {
		return fmt.Errorf("a link with URL %s%s%s already exists", colorBold, model.NormalizeURL(in.URL), colorReset)
	}
	if err != nil {
		return fmt.Errorf("add link: %w", err)
	}

	fmt.Fprintf(c.out, "%sAdded%s link %s%s%s: %s%s%s\n", colorGreen, colorReset, colorBold, link.ID, colorReset, colorCyan, link.URL, colorReset)
	if clock.InPast {
		c.warnPastReminder(link.ReminderTimestamp)
	}
	return nil
}

func (c *Commands) warnPastReminder(ts int64) {
	fmt.Fprintf(c.out, "%sWarning:%s reminder %s is already in the past.\n",
		colorYellow, colorReset, reminder.StatusAt(ts, c.now()).DisplayTime)
}

// Show prints every field of one link.
func (c *Commands) Show(ctx context.Context, id string) error {
	link, err := c.links.Get(ctx, id)
	if err != nil {
		return c.handleNotFound(ctx, err, id, "get link")
	}

	rem := reminder.StatusAt(link.ReminderTimestamp, c.now())
	def := "no"
	if link.IsDefault {
		def = "yes"
	}

	rows := [][2]string{
		{"ID", link.ID},
		{"URL", link.URL},
		{"Title", link.Title},
		{"Notes", link.Notes},
		{"Default", def},
		{"Reminder", fmt.Sprintf("%s (%s)", rem.DisplayTime, rem.Status)},
		{"Visits", fmt.Sprint(link.VisitCount)},
		{"Last visited", c.settings.FormatTimestamp(link.LastVisitedTimestamp)},
		{"Created", c.settings.FormatTimestamp(link.CreatedTimestamp)},
	}
	for _, r := range rows {
		fmt.Fprintf(c.out, "%s%-13s%s %s\n", colorBold, r[0]+":", colorReset, r[1])
	}
	return nil
}

// EditInput carries the flags of the edit command. Nil fields are left
// unchanged; an empty Remind clears the reminder.
type EditInput struct {
	URL     *string
	Title   *string
	Notes   *string
	Default *bool
	Remind  *string // HH:MM on the existing reminder's date
}

// Edit applies a partial update to a link.
func (c *Commands) Edit(ctx context.Context, id string, in EditInput) error {
	u := model.LinkUpdate{
		URL:       in.URL,
		Title:     in.Title,
		Notes:     in.Notes,
		IsDefault: in.Default,
	}

	var clock reminder.Clock
	if in.Remind != nil {
		current, err := c.links.Get(ctx, id)
		if err != nil {
			return c.handleNotFound(ctx, err, id, "get link")
		}
		now := c.now()
		clock, err = reminder.ParseClock(*in.Remind, reminder.BaseFor(current.ReminderTimestamp, now), now)
		if err != nil {
			return err
		}
		u.ReminderTimestamp = &clock.Timestamp
	}

	if u.Empty() {
		return errors.New("nothing to update")
	}

	link, err := c.links.Update(ctx, id, u)
	if errors.Is(err, model.ErrDuplicate) {
		return fmt.Errorf("another link already uses URL %s%s%s", colorBold, model.NormalizeURL(*in.URL), colorReset)
	}
	if err != nil {
		return c.handleNotFound(ctx, err, id, "update link")
	}

	fmt.Fprintf(c.out, "%sUpdated%s link %s%s%s: %s%s%s\n", colorYellow, colorReset, colorBold, link.ID, colorReset, colorCyan, link.URL, colorReset)
	if clock.InPast {
		c.warnPastReminder(link.ReminderTimestamp)
	}
	return nil
}

// Remove deletes one or more links.
func (c *Commands) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one ID required")
	}

	var deleted []string
	var failed []string

	for _, id := range ids {
		if err := c.links.Delete(ctx, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				msg := fmt.Sprintf("%s (not found)", id)
				if suggestion := c.suggestID(ctx, id); suggestion != "" {
					msg += fmt.Sprintf(" - %sDid you mean:%s %s%s%s?", colorYellow, colorReset, colorBold, suggestion, colorReset)
				}
				failed = append(failed, msg)
			} else {
				failed = append(failed, fmt.Sprintf("%s (%v)", id, err))
			}
			continue
		}
		deleted = append(deleted, id)
	}

	if len(deleted) == 1 {
		fmt.Fprintf(c.out, "%sDeleted%s link %s%s%s.\n", colorRed, colorReset, colorBold, deleted[0], colorReset)
	} else if len(deleted) > 1 {
		fmt.Fprintf(c.out, "%sDeleted%s %d link(s): %s%s%s\n", colorRed, colorReset, len(deleted), colorBold, strings.Join(deleted, ", "), colorReset)
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to delete: %s", strings.Join(failed, ", "))
	}
	return nil
}

// Visit records a visit and, when open is set, opens the link in the
// default browser.
func (c *Commands) Visit(ctx context.Context, id string, open bool) error {
	link, err := c.links.RecordVisit(ctx, id)
	if err != nil {
		return c.handleNotFound(ctx, err, id, "record visit")
	}

	if open {
		if err := c.openURL(link.URL); err != nil {
			return fmt.Errorf("open browser: %w", err)
		}
		fmt.Fprintf(c.out, "%sOpened:%s %s%s%s (visit %d)\n", colorGreen, colorReset, colorCyan, link.URL, colorReset, link.VisitCount)
		return nil
	}
	fmt.Fprintf(c.out, "%sVisited:%s %s%s%s (visit %d)\n", colorGreen, colorReset, colorCyan, link.URL, colorReset, link.VisitCount)
	return nil
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
	return cmd.Run()
}

func (c *Commands) handleNotFound(ctx context.Context, err error, id string, action string) error {
	if errors.Is(err, model.ErrNotFound) {
		msg := fmt.Sprintf("link %s%s%s not found", colorBold, id, colorReset)
		if suggestion := c.suggestID(ctx, id); suggestion != "" {
			msg += fmt.Sprintf("\n\n%sDid you mean:%s %s%s%s?", colorYellow, colorReset, colorBold, suggestion, colorReset)
		}
		return fmt.Errorf("%s: %w", msg, model.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// suggestID returns the stored ID closest to id, if any is within three
// edits.
func (c *Commands) suggestID(ctx context.Context, id string) string {
	all, err := c.links.ListAll(ctx)
	if err != nil || len(all) == 0 {
		return ""
	}

	bestMatch := ""
	minDistance := len(id) + 1
	for _, link := range all {
		distance := levenshteinDistance(id, link.ID)
		if distance < minDistance && distance <= 3 {
			minDistance = distance
			bestMatch = link.ID
		}
	}
	return bestMatch
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	cur := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		cur[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(s2)]
}
