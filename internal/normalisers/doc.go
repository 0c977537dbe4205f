// Package normalisers groups the text repair passes applied to raw
// engine output before document assembly. Each sub-package handles one
// output dialect; the markdown normaliser covers the layout-analysis
// engines, which emit markdown directly.
package normalisers
