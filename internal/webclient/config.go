package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config carries the options every backend constructor may read.
type Config struct {
	Client Client `yaml:"client"`

	// Timeout bounds a whole nethttp exchange. Zero means no client-side
	// timeout: a hung request waits until the caller's context ends.
	Timeout time.Duration `yaml:"timeout"`

	// IdleAfter is how long the chromedp backend waits for network silence
	// before reading the rendered document.
	IdleAfter time.Duration `yaml:"idle_after"`

	// Headful shows the browser window instead of running headless.
	Headful bool `yaml:"headful"`
}
