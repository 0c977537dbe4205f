// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - OCREngine: Runs text recognition on a page image
//   - Rasterizer: Renders input documents into page images
//   - InputInspector: Validates and classifies input files
//   - JobStore: Job, progress, and result persistence
//   - ConfigStore: Application configuration
//   - Exporter: Serialises a processed document (one per format)
//   - TextNormaliser: Repairs OCR text artifacts in markdown
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - The fallback OCREngine. Without it, pages the primary engine
//     fails on become gaps instead of being rescued.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
