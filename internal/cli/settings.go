package cli

import (
	"context"
	"fmt"

	"github.com/tahp/LinkManager/internal/settings"
)

// ShowSettings prints the current settings.
func (c *Commands) ShowSettings() {
	s := c.settings.Get()
	fmt.Fprintf(c.out, "%sPage size:%s           %d\n", colorBold, colorReset, s.PageSize)
	fmt.Fprintf(c.out, "%sDefault export path:%s %s\n", colorBold, colorReset, s.DefaultExportPath)
	fmt.Fprintf(c.out, "%sDate formats:%s\n", colorBold, colorReset)
	for _, key := range c.settings.DateFormatChoices() {
		marker := " "
		if key == s.DateFormatChoice {
			marker = colorGreen + "*" + colorReset
		}
		fmt.Fprintf(c.out, "  %s %s  %-20s %s%s%s\n", marker, key, s.DateFormats[key],
			colorDim, settings.FormatTimestamp(c.now().Unix(), s.DateFormats[key]), colorReset)
	}
}

// SetSettings validates and saves u.
func (c *Commands) SetSettings(ctx context.Context, u settings.Update) error {
	if u.PageSize == nil && u.DateFormatChoice == nil && u.DefaultExportPath == nil {
		return fmt.Errorf("nothing to update")
	}
	if err := c.settings.Apply(ctx, u); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%sSettings saved.%s\n", colorGreen, colorReset)
	return nil
}
