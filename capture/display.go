package capture

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Window titles
const (
	FrameWindowName = "Frame"
	MaskWindowName  = "Mask"
)

// Display shows the annotated frame and the segmentation mask, and polls the
// keyboard. WaitKey returns -1 when no key was pressed within delay millis.
type Display interface {
	Show(frame, mask gocv.Mat)
	WaitKey(delay int) int
	Close() error
}

// WindowDisplay shows frames in HighGUI windows.
type WindowDisplay struct {
	frame *gocv.Window
	mask  *gocv.Window // nil when the mask is hidden
}

// NewWindowDisplay opens the frame window and, if showMask is set, a second
// window for the mask.
func NewWindowDisplay(showMask bool) *WindowDisplay {
	d := &WindowDisplay{frame: gocv.NewWindow(FrameWindowName)}
	if showMask {
		d.mask = gocv.NewWindow(MaskWindowName)
	}
	return d
}

// Show updates both windows. An empty mask is not shown.
func (d *WindowDisplay) Show(frame, mask gocv.Mat) {
	if !frame.Empty() {
		d.frame.IMShow(frame)
	}
	if d.mask != nil && !mask.Empty() {
		d.mask.IMShow(mask)
	}
}

// WaitKey pumps the window events and returns the pressed key.
func (d *WindowDisplay) WaitKey(delay int) int {
	return d.frame.WaitKey(delay)
}

// Close destroys the windows.
func (d *WindowDisplay) Close() error {
	var err error
	if d.mask != nil {
		err = d.mask.Close()
	}
	if cerr := d.frame.Close(); cerr != nil {
		err = cerr
	}
	return err
}

// HeadlessDisplay drops frames and never reports a key. WaitKey still sleeps
// so a video file is processed at display pace.
type HeadlessDisplay struct {
	shown int64
	sleep func(time.Duration)
}

// NewHeadlessDisplay returns a display for machines without a screen.
func NewHeadlessDisplay() *HeadlessDisplay {
	return &HeadlessDisplay{sleep: time.Sleep}
}

// Show counts the frame.
func (d *HeadlessDisplay) Show(frame, mask gocv.Mat) {
	d.shown++
}

// WaitKey sleeps for delay millis and reports no key.
func (d *HeadlessDisplay) WaitKey(delay int) int {
	if delay > 0 {
		d.sleep(time.Duration(delay) * time.Millisecond)
	}
	return -1
}

// Close reports how many frames went through the display.
func (d *HeadlessDisplay) Close() error {
	debugMsg("CAPTURE", fmt.Sprintf("Headless display dropped %d frames", d.shown))
	return nil
}
