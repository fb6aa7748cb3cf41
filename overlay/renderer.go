package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"time"
	"unicode/utf8"

	"gocv.io/x/gocv"
	"trailcam/config"
	"trailcam/tracking"
)

// debugMsgFunc is a function that will be set by main package to use unified logging
var debugMsgFunc func(component, message string)

// SetDebugFunction allows main package to provide the debug logger
func SetDebugFunction(fn func(component, message string)) {
	debugMsgFunc = fn
}

// debugMsg is a wrapper that handles nil checks
func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

// minEllipsePoints is the fewest contour points an ellipse can be fitted to
const minEllipsePoints = 5

// Status is the information shown by the status overlay.
type Status struct {
	Time     time.Time
	FPS      float64
	Mode     tracking.TrackingMode
	TrailLen int
	TrailCap int // 0 for an unbounded trail
	Area     float64
}

// Lines is the text of the status box, top to bottom.
func (s Status) Lines() []string {
	trail := fmt.Sprintf("TRAIL: %d", s.TrailLen)
	if s.TrailCap > 0 {
		trail = fmt.Sprintf("TRAIL: %d/%d", s.TrailLen, s.TrailCap)
	}
	lines := []string{
		s.Time.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("FPS: %.1f", s.FPS),
		fmt.Sprintf("MODE: %s", s.Mode),
		trail,
	}
	if s.Mode == tracking.ModeTracking {
		lines = append(lines, fmt.Sprintf("AREA: %.0f px", s.Area))
	}
	return lines
}

// Renderer draws the tracking overlay onto frames
type Renderer struct {
	rng *rand.Rand

	maxGap float64
	taper  int

	markerRadius     int
	markerColor      color.RGBA
	ellipseColor     color.RGBA
	ellipseThickness int
	predictionColor  color.RGBA

	// Colours shared by the text overlays
	textColor   color.RGBA
	searchColor color.RGBA
	trackColor  color.RGBA
	panelColor  color.RGBA

	maxTerminalLines int
}

// NewRenderer creates a renderer for the drawing settings of cfg. Trail colours
// come from rng; a nil rng gets a time seeded source.
func NewRenderer(cfg config.Config, rng *rand.Rand) *Renderer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Renderer{
		rng:              rng,
		maxGap:           cfg.DistanceThreshold,
		taper:            cfg.LineTaper,
		markerRadius:     cfg.MarkerRadius,
		markerColor:      cfg.MarkerColor.Color(),
		ellipseColor:     cfg.EllipseColor.Color(),
		ellipseThickness: cfg.EllipseThickness,
		predictionColor:  cfg.PredictionColor.Color(),
		textColor:        color.RGBA{255, 255, 255, 255},
		searchColor:      color.RGBA{255, 0, 0, 255}, // Red while nothing is locked
		trackColor:       color.RGBA{0, 255, 0, 255}, // Green while tracking
		panelColor:       color.RGBA{0, 0, 0, 180},
		maxTerminalLines: 20,
	}
}

// DrawTrail draws the distance gated, tapered trail. points are newest first.
// Returns the number of segments drawn.
func (r *Renderer) DrawTrail(img *gocv.Mat, points []image.Point) int {
	segments := TrailSegments(points, r.maxGap, r.taper, r.rng)
	for _, s := range segments {
		gocv.Line(img, s.From, s.To, s.Color, s.Thickness)
	}
	if skipped := len(points) - 1 - len(segments); skipped > 0 {
		debugMsg("OVERLAY_VERBOSE", fmt.Sprintf("trail gap: %d of %d segments skipped", skipped, len(points)-1))
	}
	return len(segments)
}

// DrawMarker draws the filled centroid marker.
func (r *Renderer) DrawMarker(img *gocv.Mat, center image.Point) {
	gocv.Circle(img, center, r.markerRadius, r.markerColor, -1)
}

// DrawEllipse outlines the object with the ellipse fitted to its contour.
// Contours with too few points are skipped and false is returned.
func (r *Renderer) DrawEllipse(img *gocv.Mat, contour tracking.Contour) bool {
	if len(contour) < minEllipsePoints {
		return false
	}
	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	box := gocv.FitEllipse(pv)
	if box.Width <= 0 || box.Height <= 0 {
		return false
	}
	axes := image.Pt(box.Width/2, box.Height/2)
	gocv.Ellipse(img, box.Center, axes, box.Angle, 0, 360, r.ellipseColor, r.ellipseThickness)
	return true
}

// DrawPrediction draws the smoothed position as a small crosshair.
func (r *Renderer) DrawPrediction(img *gocv.Mat, pt image.Point) {
	size := 8
	gocv.Line(img, image.Pt(pt.X-size, pt.Y), image.Pt(pt.X+size, pt.Y), r.predictionColor, 2)
	gocv.Line(img, image.Pt(pt.X, pt.Y-size), image.Pt(pt.X, pt.Y+size), r.predictionColor, 2)
}

// DrawObservation draws everything belonging to one frame's detection: trail
// first so the marker and ellipse stay on top.
func (r *Renderer) DrawObservation(img *gocv.Mat, obs tracking.Observation, trail []image.Point) {
	r.DrawTrail(img, trail)
	if !obs.Found {
		return
	}
	r.DrawEllipse(img, obs.Contour)
	r.DrawMarker(img, obs.Centroid)
}

// DrawStatus draws the status box in the lower left corner.
func (r *Renderer) DrawStatus(img *gocv.Mat, s Status) {
	lines := s.Lines()

	lineHeight := 18
	boxWidth := 220
	boxHeight := lineHeight*len(lines) + 10
	x := 20
	y := img.Rows() - boxHeight - 20
	if y < 0 {
		y = 0
	}
	gocv.Rectangle(img, image.Rect(x, y, x+boxWidth, y+boxHeight), r.panelColor, -1)

	modeColor := r.searchColor
	if s.Mode == tracking.ModeTracking {
		modeColor = r.trackColor
	}
	for i, line := range lines {
		c := r.textColor
		if i == 2 {
			c = modeColor
		}
		gocv.PutText(img, line, image.Pt(x+8, y+lineHeight*(i+1)), gocv.FontHersheySimplex, 0.5, c, 1)
	}
}

// DrawTerminal draws recent log lines in a terminal-like box at the top left.
func (r *Renderer) DrawTerminal(img *gocv.Mat, lines []string) {
	if len(lines) > r.maxTerminalLines {
		lines = lines[len(lines)-r.maxTerminalLines:]
	}

	lineHeight := 14
	width := 560
	if width > img.Cols()-40 {
		width = img.Cols() - 40
	}
	height := lineHeight*len(lines) + 10
	if len(lines) == 0 {
		height = lineHeight + 10
	}
	x, y := 20, 20
	gocv.Rectangle(img, image.Rect(x, y, x+width, y+height), r.panelColor, -1)

	if len(lines) == 0 {
		gocv.PutText(img, "No debug messages available...", image.Pt(x+10, y+lineHeight),
			gocv.FontHersheySimplex, 0.4, color.RGBA{128, 128, 128, 255}, 1)
		return
	}

	maxLineLen := width / 6
	for i, line := range lines {
		gocv.PutText(img, truncateLine(line, maxLineLen), image.Pt(x+10, y+lineHeight*(i+1)),
			gocv.FontHersheySimplex, 0.35, r.textColor, 1)
	}
}

// truncateLine shortens line to at most limit runes, marking the cut with "...".
func truncateLine(line string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(line) <= limit {
		return line
	}
	runes := []rune(line)
	return string(runes[:limit-3]) + "..."
}
