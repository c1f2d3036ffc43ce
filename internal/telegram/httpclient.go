package telegram

import (
	"net/http"
	"time"

	"github.com/m3rciful/tracker/internal/netutil"
)

const (
	defaultResponseTimeout = 5 * time.Second
	// clientSlack is added on top of the long poll timeout so getUpdates is
	// not cut off by the client while Telegram holds the request open.
	clientSlack = 20 * time.Second
)

// BuildHTTPClient returns the retrying client used for Bot API calls.
func BuildHTTPClient(opts PollerOptions) *http.Client {
	poll := opts.longPollTimeout()
	return netutil.NewClient(netutil.ClientOptions{
		Timeout:               poll + clientSlack,
		ResponseHeaderTimeout: poll + defaultResponseTimeout,
	})
}
