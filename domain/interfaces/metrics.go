package interfaces

import "time"

// Metrics receives counters from tools, the resolver and the driver
type Metrics interface {
	ObserveTool(tool string, ok bool, d time.Duration)
	ObserveResolution(strategy string)
	ObserveRound()
}
