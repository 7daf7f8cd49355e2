package server

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// RenderLogger implements core.Logger for one HTTP render. Messages go to the
// server log tagged with the render ID and are kept for the response.
type RenderLogger struct {
	renderID string

	mu       sync.Mutex
	messages []string
}

// NewRenderLogger creates a logger for a specific render
func NewRenderLogger(renderID string) *RenderLogger {
	return &RenderLogger{renderID: renderID}
}

var _ core.Logger = (*RenderLogger)(nil)

// Printf implements core.Logger interface
func (rl *RenderLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	log.Printf("[%s] %s", rl.renderID, message)

	rl.mu.Lock()
	rl.messages = append(rl.messages, message)
	rl.mu.Unlock()
}

// Messages returns the messages logged so far
func (rl *RenderLogger) Messages() []string {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return append([]string(nil), rl.messages...)
}
