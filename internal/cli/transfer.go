package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tahp/LinkManager/internal/model"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportFileName is used when the export target is a directory.
const ExportFileName = "links_export"

// Export writes every link to w.
func (c *Commands) Export(ctx context.Context, w io.Writer, format string) error {
	all, err := c.links.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("export links: %w", err)
	}

	switch normalizeFormat(format) {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(all); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(all); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	default:
		return model.NewValidationError("format", fmt.Sprintf("unknown format %q (json or yaml)", format))
	}
}

// ExportFile writes every link to path. An empty path or a directory uses
// the default export path from settings. The file is replaced only after
// the whole export has been written.
func (c *Commands) ExportFile(ctx context.Context, path, format string) error {
	if path == "" {
		path = c.settings.Get().DefaultExportPath
	}
	path, err := expandHome(path)
	if err != nil {
		return err
	}
	if format == "" {
		format = formatFromExt(path)
	}
	format = normalizeFormat(format)
	if format != FormatJSON && format != FormatYAML {
		return model.NewValidationError("format", fmt.Sprintf("unknown format %q (json or yaml)", format))
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ExportFileName+"."+format)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	tmpName := tmp.Name()

	if err := c.Export(ctx, tmp, format); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	fmt.Fprintf(c.out, "%sExported%s links to %s%s%s\n", colorGreen, colorReset, colorBold, path, colorReset)
	return nil
}

// Import reads links from a JSON or YAML file and adds the ones whose URL
// is not stored yet.
func (c *Commands) Import(ctx context.Context, filename, format string) error {
	path, err := expandHome(filename)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if format == "" {
		format = formatFromExt(path)
	}

	var incoming []model.Link
	switch normalizeFormat(format) {
	case FormatYAML:
		if err := yaml.NewDecoder(file).Decode(&incoming); err != nil && err != io.EOF {
			return fmt.Errorf("decode YAML: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(file).Decode(&incoming); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return model.NewValidationError("format", fmt.Sprintf("unknown format %q (json or yaml)", format))
	}

	res, err := c.links.Import(ctx, incoming)
	if err != nil {
		return fmt.Errorf("import links: %w", err)
	}

	fmt.Fprintf(c.out, "%sImported%s %s%d%s link(s), skipped %d.\n", colorGreen, colorReset, colorBold, res.Added, colorReset, res.Skipped)
	return nil
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return format
	}
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
