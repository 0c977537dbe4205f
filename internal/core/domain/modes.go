package domain

const unknownDescription = "Unknown"

// OCRMode selects the engine's speed/accuracy trade-off.
type OCRMode string

// Available OCR modes.
const (
	// OCRModeFast uses the lightweight model variant. Default.
	OCRModeFast OCRMode = "fast"

	// OCRModeAccurate uses the full model variant.
	OCRModeAccurate OCRMode = "accurate"
)

// IsValid returns true if the mode is recognised.
func (m OCRMode) IsValid() bool {
	switch m {
	case OCRModeFast, OCRModeAccurate:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m OCRMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m OCRMode) Description() string {
	switch m {
	case OCRModeFast:
		return "Fast (lightweight model)"
	case OCRModeAccurate:
		return "Accurate (full model)"
	default:
		return unknownDescription
	}
}

// ParseOCRMode converts a config/CLI string into an OCRMode.
// Empty input returns the default fast mode.
func ParseOCRMode(s string) (OCRMode, bool) {
	switch s {
	case "", "fast", "lite":
		return OCRModeFast, true
	case "accurate", "full":
		return OCRModeAccurate, true
	default:
		return "", false
	}
}

// Device selects the compute device passed to the engine.
type Device string

// Available devices.
const (
	// DeviceCPU runs the engine on the CPU. Default.
	DeviceCPU Device = "cpu"

	// DeviceCUDA runs the engine on an NVIDIA GPU.
	DeviceCUDA Device = "cuda"

	// DeviceMPS runs the engine on Apple silicon.
	DeviceMPS Device = "mps"
)

// IsValid returns true if the device is recognised.
func (d Device) IsValid() bool {
	switch d {
	case DeviceCPU, DeviceCUDA, DeviceMPS:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Device) String() string {
	return string(d)
}

// ParseDevice converts a config/CLI string into a Device.
// Empty input returns the default CPU device.
func ParseDevice(s string) (Device, bool) {
	switch s {
	case "", "cpu":
		return DeviceCPU, true
	case "cuda", "gpu":
		return DeviceCUDA, true
	case "mps":
		return DeviceMPS, true
	default:
		return "", false
	}
}

// TableMode selects how tabular exports lay out extracted tables.
type TableMode string

// Available table modes.
const (
	// TableModeLayout keeps every table on its source page, preserving
	// the page-by-page reading order.
	TableModeLayout TableMode = "layout"

	// TableModeTable regroups same-label tables across pages into
	// logical table groups, splitting on structural breaks.
	TableModeTable TableMode = "table"
)

// IsValid returns true if the table mode is recognised.
func (m TableMode) IsValid() bool {
	switch m {
	case TableModeLayout, TableModeTable:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m TableMode) String() string {
	return string(m)
}

// ParseTableMode converts a config/CLI string into a TableMode.
// Empty input returns the default layout mode.
func ParseTableMode(s string) (TableMode, bool) {
	switch s {
	case "", "layout":
		return TableModeLayout, true
	case "table":
		return TableModeTable, true
	default:
		return "", false
	}
}

// ExportFormat identifies a requested output serializer.
type ExportFormat string

// Available export formats.
const (
	// FormatMarkdown produces the merged markdown document.
	FormatMarkdown ExportFormat = "md"

	// FormatCSV produces CSV table files.
	FormatCSV ExportFormat = "csv"

	// FormatText produces a plain-text rendition.
	FormatText ExportFormat = "txt"

	// FormatHTML produces a standalone HTML document.
	FormatHTML ExportFormat = "html"
)

// IsValid returns true if the format is recognised.
func (f ExportFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatCSV, FormatText, FormatHTML:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f ExportFormat) String() string {
	return string(f)
}

// ParseExportFormat converts a config/CLI string into an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch s {
	case "md", "markdown":
		return FormatMarkdown, true
	case "csv":
		return FormatCSV, true
	case "txt", "text":
		return FormatText, true
	case "html":
		return FormatHTML, true
	default:
		return "", false
	}
}

// IconPolicy controls how decorative figure images are handled.
type IconPolicy string

// Available icon policies.
const (
	// IconPolicyAuto deletes figures classified as icons.
	IconPolicyAuto IconPolicy = "auto"

	// IconPolicyReview keeps all figures but records classification
	// decisions for later inspection.
	IconPolicyReview IconPolicy = "review"

	// IconPolicyKeep disables icon filtering entirely.
	IconPolicyKeep IconPolicy = "keep"
)

// IsValid returns true if the policy is recognised.
func (p IconPolicy) IsValid() bool {
	switch p {
	case IconPolicyAuto, IconPolicyReview, IconPolicyKeep:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p IconPolicy) String() string {
	return string(p)
}
