// Package cgo provides CGO bindings for native libraries.
// This package isolates all CGO code from the pure Go core.
//
// Sub-packages:
//   - gosseract: in-process tesseract binding for the fallback OCR engine
package cgo
