package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"gocv.io/x/gocv"
	"trailcam/capture"
	"trailcam/config"
)

var (
	input    = flag.String("input", "", "Camera index or video file (defaults to the config's input)")
	fromFile = flag.String("from", "", "Existing config to start from (optional)")
	outFile  = flag.String("out", "trailcam.json", "Config file written when 's' is pressed")
	mirror   = flag.Bool("mirror", true, "Mirror the camera image like the tracker does")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := config.Default()
	if *fromFile != "" {
		loaded, err := config.Load(*fromFile)
		if err != nil {
			glog.Exitf("%v", err)
		}
		cfg = loaded
	}
	if *input != "" {
		cfg.Input = *input
	}

	capture.SetDebugFunction(func(component, message string) {
		glog.Infof("[%s] %s", component, message)
	})

	source, err := capture.Open(cfg.Input)
	if err != nil {
		glog.Exitf("%v", err)
	}
	defer source.Close()

	hc, err := NewHSVCalibrator(cfg, *outFile)
	if err != nil {
		glog.Exitf("%v", err)
	}
	defer hc.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("HSV CALIBRATION\n")
	fmt.Printf("Drag the trackbars until only the object stays visible.\n")
	fmt.Printf("  s    save range to %s\n", *outFile)
	fmt.Printf("  ESC  quit\n\n")

	frame := gocv.NewMat()
	defer frame.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	for {
		select {
		case <-sigs:
			glog.Infof("Interrupted")
			return
		default:
		}

		if !source.Read(&frame) || frame.Empty() {
			glog.Warningf("No more frames from %s", cfg.Input)
			return
		}
		if *mirror {
			gocv.Flip(frame, &frame, 1)
		}

		key := hc.Show(&frame, &mask, cfg.KeyWaitMillis)
		if key < 0 {
			continue
		}
		switch key & 0xFF {
		case cfg.ExitKey & 0xFF:
			return
		case 's':
			if err := hc.Save(); err != nil {
				glog.Errorf("Can't save range: %v", err)
				continue
			}
			fmt.Printf("Saved %s to %s\n", hc.Positions(), *outFile)
		}
	}
}
