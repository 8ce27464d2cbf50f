package logging

// Reset drops the configured logger so later calls are silent again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = nil
}
