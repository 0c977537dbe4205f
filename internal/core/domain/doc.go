// Package domain defines the core business entities for OCR-to-doc.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Job: One OCR run over a multi-page input
//   - Page: A single page's OCR outcome
//   - Table: A canonical grid with merge coverage
//   - Document: The merged, exportable result
//   - Workspace: The per-job artifact layout
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
