package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/query"
	"github.com/tahp/LinkManager/internal/reminder"
)

// ListOptions carries the flags of the list command.
type ListOptions = query.Request

// List prints one page of links.
func (c *Commands) List(ctx context.Context, opts ListOptions) error {
	all, err := c.links.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list links: %w", err)
	}

	page, err := query.Select(all, opts, c.settings.PageSize())
	if err != nil {
		return err
	}

	if page.Total == 0 {
		fmt.Fprintln(c.out, "No links found.")
		return nil
	}
	if len(page.Items) == 0 {
		fmt.Fprintf(c.out, "Page %d is empty; there are %d page(s).\n", page.Page, page.TotalPages)
		return nil
	}

	c.printLinksTable(page.Items)
	fmt.Fprintf(c.out, "%sPage %d of %d (%d links)%s\n", colorDim, page.Page, page.TotalPages, page.Total, colorReset)
	return nil
}

const (
	maxURLLen   = 50
	maxTitleLen = 40
	ellipsisLen = 3
)

type tableRow struct {
	id, title, url, visits, lastVisited, reminder string
	due                                         bool
}

func (c *Commands) printLinksTable(items []model.Link) {
	now := c.now()
	rows := make([]tableRow, len(items))
	for i, link := range items {
		title := link.DisplayTitle()
		if link.IsDefault {
			title = "* " + title
		}
		rem := reminder.StatusAt(link.ReminderTimestamp, now)
		remText := rem.DisplayTime
		if rem.Status != reminder.None {
			remText += " " + string(rem.Status)
		}
		rows[i] = tableRow{
			id:          link.ID,
			title:       title,
			url:         link.URL,
			visits:      fmt.Sprint(link.VisitCount),
			lastVisited: c.settings.FormatTimestamp(link.LastVisitedTimestamp),
			reminder:    remText,
			due:         rem.Status == reminder.Elapsed,
		}
	}

	// Column widths from header and content, with limits
	colID, colTitle, colURL := len("ID"), len("TITLE"), len("URL")
	colVisits, colLast, colRem := len("VISITS"), len("LAST VISITED"), len("REMINDER")
	for _, r := range rows {
		colID = max(colID, len(r.id))
		colTitle = max(colTitle, truncateLen(len(r.title), maxTitleLen))
		colURL = max(colURL, truncateLen(len(r.url), maxURLLen))
		colVisits = max(colVisits, len(r.visits))
		colLast = max(colLast, len(r.lastVisited))
		colRem = max(colRem, len(r.reminder))
	}

	widths := []int{colID, colTitle, colURL, colVisits, colLast, colRem}
	totalWidth := len(widths) - 1
	for _, w := range widths {
		totalWidth += w + 2
	}

	header := fmt.Sprintf("%s│%s %s%-*s%s │ %s%-*s%s │ %s%-*s%s │ %s%*s%s │ %s%-*s%s │ %s%-*s%s %s│%s",
		colorDim, colorReset,
		colorBold, colID, "ID", colorReset,
		colorBold, colTitle, "TITLE", colorReset,
		colorBold, colURL, "URL", colorReset,
		colorBold, colVisits, "VISITS", colorReset,
		colorBold, colLast, "LAST VISITED", colorReset,
		colorBold, colRem, "REMINDER", colorReset,
		colorDim, colorReset)

	segments := make([]string, len(widths))
	for i, w := range widths {
		segments[i] = strings.Repeat("─", w+2)
	}
	separator := fmt.Sprintf("%s├%s┤%s", colorDim, strings.Join(segments, "┼"), colorReset)
	topBorder := fmt.Sprintf("%s┌%s┐%s", colorDim, strings.Repeat("─", totalWidth), colorReset)
	bottomBorder := fmt.Sprintf("%s└%s┘%s", colorDim, strings.Repeat("─", totalWidth), colorReset)

	fmt.Fprintln(c.out, topBorder)
	fmt.Fprintln(c.out, header)
	fmt.Fprintln(c.out, separator)

	for _, r := range rows {
		remColor := colorDim
		if r.due {
			remColor = colorYellow
		}
		row := fmt.Sprintf("%s│%s %s%-*s%s │ %-*s │ %s%-*s%s │ %*s │ %s%-*s%s │ %s%-*s%s %s│%s",
			colorDim, colorReset,
			colorBold+colorCyan, colID, r.id, colorReset,
			colTitle, truncateString(r.title, colTitle),
			colorCyan, colURL, truncateString(r.url, colURL), colorReset,
			colVisits, r.visits,
			colorDim, colLast, r.lastVisited, colorReset,
			remColor, colRem, r.reminder, colorReset,
			colorDim, colorReset)
		fmt.Fprintln(c.out, row)
	}

	fmt.Fprintln(c.out, bottomBorder)
}

func truncateLen(n, max int) int {
	if n > max {
		return max
	}
	return n
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-ellipsisLen] + "..."
}
