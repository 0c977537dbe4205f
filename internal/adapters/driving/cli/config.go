package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/config/file"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change settings in the configuration file. Values set
here become the defaults for new jobs; command-line flags override
them per invocation.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and writes the file immediately.

Keys use dot notation matching the TOML sections:

  engine.mode              fast or accurate
  engine.device            cpu, cuda, or mps
  engine.fallback          retry thin pages with the fallback engine
  engine.binary            primary OCR engine executable
  engine.tesseract_binary  fallback engine executable
  engine.languages         tesseract language spec (e.g. jpn+eng)
  pages.chunk_size         pages per processing chunk
  pages.rest               pause between chunks
  pages.rest_seconds       seconds to pause between chunks
  raster.dpi               rasterisation DPI for PDF pages
  export.formats           comma-separated formats (md,csv,txt,html)
  export.table_mode        layout or table
  figures.enabled          extract figure images
  figures.icon_policy      auto, review, or keep
  output.dir               workspace root directory`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configKeys lists every recognised key in display order with its
// value kind for typed parsing.
var configKeys = []struct {
	key  string
	kind string
}{
	{file.KeyEngineMode, "mode"},
	{file.KeyEngineDevice, "device"},
	{file.KeyEngineFallback, "bool"},
	{file.KeyEngineBinary, "string"},
	{file.KeyTesseractBinary, "string"},
	{file.KeyLanguages, "string"},
	{file.KeyChunkSize, "int"},
	{file.KeyRestEnabled, "bool"},
	{file.KeyRestSeconds, "int"},
	{file.KeyDPI, "int"},
	{file.KeyFormats, "formats"},
	{file.KeyTableMode, "table-mode"},
	{file.KeyFiguresEnabled, "bool"},
	{file.KeyIconPolicy, "icon-policy"},
	{file.KeyOutputDir, "string"},
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if fs, ok := configStore.(*file.ConfigStore); ok {
		cmd.Printf("Configuration file: %s\n\n", fs.Path())
	}

	for _, entry := range configKeys {
		value, ok := configStore.Get(entry.key)
		if !ok {
			cmd.Printf("  %-24s (not set)\n", entry.key)
			continue
		}
		cmd.Printf("  %-24s %v\n", entry.key, value)
	}

	cmd.Println("\nChange values with: ocr2doc config set <key> <value>")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	if configKeyKind(key) == "" {
		return fmt.Errorf("unknown configuration key %q", key)
	}

	value, ok := configStore.Get(key)
	if !ok {
		cmd.Println("(not set)")
		return nil
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	kind := configKeyKind(key)
	if kind == "" {
		return fmt.Errorf("unknown configuration key %q", key)
	}

	value, err := parseConfigValue(kind, raw)
	if err != nil {
		return err
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}

	cmd.Printf("%s = %v\n", key, value)
	return nil
}

func configKeyKind(key string) string {
	for _, entry := range configKeys {
		if entry.key == key {
			return entry.kind
		}
	}
	return ""
}

// parseConfigValue converts the raw argument into the typed value the
// key expects, rejecting values the pipeline would not accept.
func parseConfigValue(kind, raw string) (any, error) {
	switch kind {
	case "string":
		return raw, nil
	case "int":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", raw)
		}
		return n, nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", raw)
		}
		return b, nil
	case "mode":
		if _, ok := domain.ParseOCRMode(raw); !ok {
			return nil, fmt.Errorf("unknown mode %q", raw)
		}
		return raw, nil
	case "device":
		if _, ok := domain.ParseDevice(raw); !ok {
			return nil, fmt.Errorf("unknown device %q", raw)
		}
		return raw, nil
	case "table-mode":
		if _, ok := domain.ParseTableMode(raw); !ok {
			return nil, fmt.Errorf("unknown table mode %q", raw)
		}
		return raw, nil
	case "icon-policy":
		if !domain.IconPolicy(raw).IsValid() {
			return nil, fmt.Errorf("unknown icon policy %q", raw)
		}
		return raw, nil
	case "formats":
		names := strings.Split(raw, ",")
		formats := make([]string, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if _, ok := domain.ParseExportFormat(name); !ok {
				return nil, fmt.Errorf("unknown export format %q", name)
			}
			formats = append(formats, name)
		}
		return formats, nil
	default:
		return nil, fmt.Errorf("unknown configuration kind %q", kind)
	}
}
