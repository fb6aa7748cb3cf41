package capture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Global debug function for capture package
var debugMsgFunc func(string, string)

// SetDebugFunction allows main package to provide debug function
func SetDebugFunction(fn func(string, string)) {
	debugMsgFunc = fn
}

// debugMsg is a wrapper that handles nil checks
func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

// Source delivers frames. Read returns false once no more frames can be
// delivered (device unplugged, end of file, broken stream).
// *gocv.VideoCapture satisfies it.
type Source interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// ParseDevice reports whether input names a camera device index.
func ParseDevice(input string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// Open opens a camera by index ("0") or a video file / stream URL.
func Open(input string) (*gocv.VideoCapture, error) {
	if input == "" {
		return nil, errors.New("no input given")
	}

	var (
		vc  *gocv.VideoCapture
		err error
	)
	if id, ok := ParseDevice(input); ok {
		debugMsg("CAPTURE", fmt.Sprintf("Opening camera device %d", id))
		vc, err = gocv.VideoCaptureDevice(id)
	} else {
		debugMsg("CAPTURE", fmt.Sprintf("Opening video %s", redact(input)))
		vc, err = gocv.VideoCaptureFile(input)
	}
	if err != nil {
		if vc != nil {
			vc.Close()
		}
		return nil, errors.Wrapf(err, "can't open input %s", redact(input))
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("input %s did not open", redact(input))
	}

	width := int(vc.Get(gocv.VideoCaptureFrameWidth))
	height := int(vc.Get(gocv.VideoCaptureFrameHeight))
	debugMsg("CAPTURE", fmt.Sprintf("Input ready: %dx%d @ %.1f fps", width, height, vc.Get(gocv.VideoCaptureFPS)))
	return vc, nil
}

// IsValidFrame reports whether frame is a non-empty 8-bit BGR image.
func IsValidFrame(frame gocv.Mat) bool {
	if frame.Empty() {
		return false
	}
	if frame.Rows() <= 0 || frame.Cols() <= 0 {
		return false
	}
	return frame.Type() == gocv.MatTypeCV8UC3 && frame.Channels() == 3
}

// redact hides credentials in stream URLs before they reach the logs.
func redact(input string) string {
	scheme := strings.Index(input, "://")
	at := strings.LastIndex(input, "@")
	if scheme < 0 || at < scheme {
		return input
	}
	return input[:scheme+3] + "***" + input[at:]
}
