package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Frame stages a saved JPEG can come from
const (
	StagePreOverlay  = "pre"
	StagePostOverlay = "post"
)

// FrameSaver writes every Nth frame as JPEG into hourly subdirectories.
type FrameSaver struct {
	dir     string
	every   int
	session string
	now     func() time.Time
}

// NewFrameSaver creates the base directory and a saver writing every Nth
// frame. Each saver gets its own session ID for the file names.
func NewFrameSaver(dir string, every int) (*FrameSaver, error) {
	if dir == "" {
		return nil, errors.New("no JPEG directory given")
	}
	if every <= 0 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create JPEG directory '%s'", dir)
	}
	s := &FrameSaver{
		dir:     dir,
		every:   every,
		session: uuid.New().String()[:8],
		now:     time.Now,
	}
	debugMsg("JPEG_CONFIG", fmt.Sprintf("Saving JPEGs to: %s (session %s, every %d frames)", dir, s.session, every))
	return s, nil
}

// Session is the short ID embedded in every file name.
func (s *FrameSaver) Session() string {
	return s.session
}

// ShouldSave reports whether frame number n is due.
func (s *FrameSaver) ShouldSave(n int64) bool {
	return n%int64(s.every) == 0
}

// HourDir names the subdirectory for t: 2025-01-01_03PM
func HourDir(t time.Time) string {
	hour12 := t.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}
	ampm := "AM"
	if t.Hour() >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%s_%02d%s", t.Format("2006-01-02"), hour12, ampm)
}

// FileName builds the JPEG name of one frame.
func FileName(t time.Time, session, stage string, frame int64) string {
	return fmt.Sprintf("%s_%s_%s_%06d.jpg", t.Format("20060102_150405.000"), session, stage, frame)
}

// Save writes frame and returns the path of the file.
func (s *FrameSaver) Save(frame gocv.Mat, stage string, n int64) (string, error) {
	if frame.Empty() {
		return "", errors.New("empty frame")
	}
	now := s.now()
	subdir := filepath.Join(s.dir, HourDir(now))
	if err := os.MkdirAll(subdir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create subdirectory %s", subdir)
	}

	path := filepath.Join(subdir, FileName(now, s.session, stage, n))
	if !gocv.IMWrite(path, frame) {
		return "", errors.Errorf("failed to save %s frame: %s", stage, path)
	}
	return path, nil
}
