package server

type Config struct {
	// ListenAddr is the HTTP listen address for the catalog API.
	ListenAddr string `yaml:"listen_addr"`

	// Modes fills the mode selector of the test page.
	Modes []string `yaml:"modes"`

	// ProblemID is the problem the test page loads.
	ProblemID string `yaml:"problem_id"`
}

// DefaultConfig returns a Config serving story_001 on :8000.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8000",
		Modes:      []string{"guided", "evaluation"},
		ProblemID:  "story_001",
	}
}
