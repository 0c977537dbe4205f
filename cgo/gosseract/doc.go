// Package gosseract provides an in-process tesseract binding for the
// fallback OCR engine. It implements the driven.OCREngine interface
// without shelling out to the tesseract CLI.
//
// Build requires the gosseract build tag plus:
//   - Tesseract development libraries (libtesseract, libleptonica)
//   - Install via: brew install tesseract (macOS) or
//     apt install libtesseract-dev libleptonica-dev (Linux)
//   - Language data: apt install tesseract-ocr-jpn tesseract-ocr-eng
package gosseract
