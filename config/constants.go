package config

// Defaults shared by the CLI and serve mode.
const (
	// DefaultOutputDir is where finished videos land.
	DefaultOutputDir = "output"

	// DefaultListenAddr is the serve-mode bind address.
	DefaultListenAddr = ":8080"

	// DefaultFeedSchedule runs a feed-driven generation every six hours
	// when FEED_SCHEDULE is not set.
	DefaultFeedSchedule = "0 */6 * * *"
)
