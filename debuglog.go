package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DebugLogger provides unified debug message handling for the console and the
// terminal overlay
type DebugLogger struct {
	mu             sync.RWMutex
	session        string
	overlayHistory []DebugMessage // For overlay terminal
	maxOverlayMsgs int
}

type DebugMessage struct {
	Timestamp time.Time
	Component string
	Message   string
}

// NewDebugLogger creates a unified debug logger keeping the last maxMsgs
// messages for the overlay
func NewDebugLogger(session string, maxMsgs int) *DebugLogger {
	if maxMsgs <= 0 {
		maxMsgs = 50
	}
	return &DebugLogger{
		session:        session,
		overlayHistory: make([]DebugMessage, 0, maxMsgs),
		maxOverlayMsgs: maxMsgs,
	}
}

// isVerbose reports components that only log with -v=2 or higher
func isVerbose(component string) bool {
	return strings.HasSuffix(component, "_VERBOSE")
}

// debugMsg is the main unified debug function
func (dl *DebugLogger) debugMsg(component, message string) {
	if isVerbose(component) {
		if glog.V(2) {
			glog.Infof("[%s][%s] %s", dl.session, component, message)
		}
		return
	}

	switch {
	case component == "ERROR" || strings.HasSuffix(component, "_ERROR"):
		glog.Errorf("[%s][%s] %s", dl.session, component, message)
	case component == "WARN":
		glog.Warningf("[%s][%s] %s", dl.session, component, message)
	default:
		glog.Infof("[%s][%s] %s", dl.session, component, message)
	}

	dl.mu.Lock()
	dl.overlayHistory = append(dl.overlayHistory, DebugMessage{
		Timestamp: time.Now(),
		Component: component,
		Message:   message,
	})
	if len(dl.overlayHistory) > dl.maxOverlayMsgs {
		dl.overlayHistory = dl.overlayHistory[1:] // Remove oldest
	}
	dl.mu.Unlock()
}

// GetOverlayHistory returns recent messages for the overlay terminal, oldest first
func (dl *DebugLogger) GetOverlayHistory() []string {
	dl.mu.RLock()
	defer dl.mu.RUnlock()

	history := make([]string, len(dl.overlayHistory))
	for i, msg := range dl.overlayHistory {
		history[i] = fmt.Sprintf("%s [%s] %s", msg.Timestamp.Format("15:04:05"), msg.Component, msg.Message)
	}
	return history
}
