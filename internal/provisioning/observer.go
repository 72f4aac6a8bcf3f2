package provisioning

import "log"

// Observer receives progress output during provisioning and teardown.
type Observer interface {
	// Printf reports milestones (resource created, reused, deleted).
	Printf(format string, v ...interface{})

	// Debugf reports per-call detail. Silent unless verbose output is on.
	Debugf(format string, v ...interface{})
}

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct {
	Verbose bool
}

// NewConsoleObserver creates a console-based observer.
func NewConsoleObserver(verbose bool) *ConsoleObserver {
	return &ConsoleObserver{Verbose: verbose}
}

func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

func (o *ConsoleObserver) Debugf(format string, v ...interface{}) {
	if o.Verbose {
		log.Printf(format, v...)
	}
}

// NopObserver discards all output.
type NopObserver struct{}

func (NopObserver) Printf(string, ...interface{}) {}
func (NopObserver) Debugf(string, ...interface{}) {}
