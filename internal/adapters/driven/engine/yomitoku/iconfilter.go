package yomitoku

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// iconDecision classifies one extracted figure.
type iconDecision string

const (
	decisionKeep       iconDecision = "keep"
	decisionWhitespace iconDecision = "too_whitespace"
	decisionAutoDrop   iconDecision = "auto_drop"
	decisionLikelyIcon iconDecision = "likely_icon"
)

var canonicalFigPattern = regexp.MustCompile(`^fig_page(\d+)_(\d+)\.[A-Za-z0-9]+$`)

// iconFilter drops the tiny decorative images OCR layout analysis
// extracts alongside real figures: bullets, logos, border ornaments
// and near-blank crops. Anything large relative to the page is always
// kept.
type iconFilter struct {
	maxWidth      int
	maxHeight     int
	maxArea       int
	maxWidthRatio float64
	maxHeightR    float64
	maxAreaRatio  float64

	autoDropArea      int
	autoDropAreaRatio float64
	autoDropColors    int
	autoDropAvgStd    float64

	likelyArea          int
	likelyAreaRatio     float64
	likelyColors        int
	likelyAvgStd        float64
	likelyDominantRatio float64

	whitespaceMeanLuma float64
	whitespaceNonWhite float64

	maxColorSamples int
}

func newIconFilter() *iconFilter {
	return &iconFilter{
		maxWidth:      1000,
		maxHeight:     1000,
		maxArea:       1_000_000,
		maxWidthRatio: 0.35,
		maxHeightR:    0.25,
		maxAreaRatio:  0.1,

		autoDropArea:      2_500,
		autoDropAreaRatio: 0.002,
		autoDropColors:    20,
		autoDropAvgStd:    10.0,

		likelyArea:          100_000,
		likelyAreaRatio:     0.1,
		likelyColors:        80,
		likelyAvgStd:        18.0,
		likelyDominantRatio: 0.7,

		whitespaceMeanLuma: 245.0,
		whitespaceNonWhite: 0.05,

		maxColorSamples: 4_096,
	}
}

// figureStats summarises one figure image for classification.
type figureStats struct {
	width  int
	height int
	area   int

	widthRatio  float64
	heightRatio float64
	areaRatio   float64

	meanLuma      float64
	nonWhiteRatio float64
	uniqueColors  int
	avgStd        float64
	dominantRatio float64
}

// apply classifies the page's renamed figures and enforces the icon
// policy: auto deletes classified icons, review records decisions to
// the workspace decision log without deleting, keep disables the
// filter. Returns the surviving figures and the deleted asset names.
func (f *iconFilter) apply(ws domain.Workspace, page int, policy domain.IconPolicy, pageW, pageH int) (kept []domain.Figure, removed []string) {
	dir := ws.FiguresDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil
	}

	for _, entry := range entries {
		name := entry.Name()
		m := canonicalFigPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num != page {
			continue
		}
		index, _ := strconv.Atoi(m[2])
		path := filepath.Join(dir, name)

		figure := domain.Figure{Path: path, Page: page, Index: index}

		ext := strings.ToLower(filepath.Ext(name))
		if policy == domain.IconPolicyKeep || (ext != ".png" && ext != ".jpg" && ext != ".jpeg") {
			kept = append(kept, figure)
			continue
		}

		stats, err := f.readStats(path, pageW, pageH)
		if err != nil {
			kept = append(kept, figure)
			continue
		}
		figure.Width = stats.width
		figure.Height = stats.height

		decision := f.decide(stats)
		switch {
		case decision == decisionKeep:
			kept = append(kept, figure)
		case policy == domain.IconPolicyReview:
			f.logDecision(ws, page, name, decision, stats)
			kept = append(kept, figure)
		default:
			if os.Remove(path) == nil {
				removed = append(removed, name)
			} else {
				kept = append(kept, figure)
			}
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })
	return kept, removed
}

// decide classifies a figure from its pixel statistics. Oversized
// figures are always kept; the remaining tiers separate near-blank
// crops, definite icons and likely icons.
func (f *iconFilter) decide(s figureStats) iconDecision {
	if s.area == 0 {
		return decisionKeep
	}
	if s.width > f.maxWidth || s.height > f.maxHeight || s.area > f.maxArea ||
		s.widthRatio > f.maxWidthRatio || s.heightRatio > f.maxHeightR || s.areaRatio > f.maxAreaRatio {
		return decisionKeep
	}

	if s.meanLuma >= f.whitespaceMeanLuma && s.nonWhiteRatio <= f.whitespaceNonWhite {
		return decisionWhitespace
	}

	if s.area <= f.autoDropArea && s.areaRatio <= f.autoDropAreaRatio &&
		s.uniqueColors <= f.autoDropColors && s.avgStd <= f.autoDropAvgStd {
		return decisionAutoDrop
	}

	if s.area <= f.likelyArea && s.areaRatio <= f.likelyAreaRatio &&
		(s.uniqueColors <= f.likelyColors || s.dominantRatio >= f.likelyDominantRatio) &&
		s.avgStd <= f.likelyAvgStd {
		return decisionLikelyIcon
	}
	return decisionKeep
}

// readStats decodes the figure and computes the classification
// metrics in one pixel pass.
func (f *iconFilter) readStats(path string, pageW, pageH int) (figureStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return figureStats{}, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return figureStats{}, err
	}

	b := img.Bounds()
	s := figureStats{width: b.Dx(), height: b.Dy()}
	s.area = s.width * s.height
	if s.area == 0 {
		return s, nil
	}

	if pageW > 0 && pageH > 0 {
		s.widthRatio = float64(s.width) / float64(pageW)
		s.heightRatio = float64(s.height) / float64(pageH)
		s.areaRatio = float64(s.area) / float64(pageW*pageH)
	}

	var sum, sumSq [3]float64
	var lumaSum float64
	white := 0
	colors := make(map[uint32]int)
	overflow := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := float64(r16 >> 8)
			g := float64(g16 >> 8)
			bl := float64(b16 >> 8)

			sum[0] += r
			sum[1] += g
			sum[2] += bl
			sumSq[0] += r * r
			sumSq[1] += g * g
			sumSq[2] += bl * bl

			luma := 0.299*r + 0.587*g + 0.114*bl
			lumaSum += luma
			if luma >= 250 {
				white++
			}

			if !overflow {
				key := uint32(r16>>8)<<16 | uint32(g16>>8)<<8 | uint32(b16>>8)
				colors[key]++
				if len(colors) > f.maxColorSamples {
					overflow = true
					colors = nil
				}
			}
		}
	}

	n := float64(s.area)
	var stdSum float64
	for c := 0; c < 3; c++ {
		mean := sum[c] / n
		variance := sumSq[c]/n - mean*mean
		if variance > 0 {
			stdSum += math.Sqrt(variance)
		}
	}
	s.avgStd = stdSum / 3
	s.meanLuma = lumaSum / n
	s.nonWhiteRatio = math.Max(0, math.Min(1, float64(s.area-white)/n))

	if overflow {
		s.uniqueColors = f.maxColorSamples
	} else {
		s.uniqueColors = len(colors)
		dominant := 0
		for _, count := range colors {
			if count > dominant {
				dominant = count
			}
		}
		s.dominantRatio = float64(dominant) / n
	}
	return s, nil
}

// logDecision appends one review-mode classification to the decision
// log.
func (f *iconFilter) logDecision(ws domain.Workspace, page int, name string, decision iconDecision, s figureStats) {
	file, err := os.OpenFile(ws.DecisionLog(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer file.Close()

	fmt.Fprintf(file, "page %03d %s %s area=%d colors=%d std=%.1f luma=%.1f nonwhite=%.2f\n",
		page, name, decision, s.area, s.uniqueColors, s.avgStd, s.meanLuma, s.nonWhiteRatio)
}
