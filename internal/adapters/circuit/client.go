package circuit

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Maximum number of stops accepted by one import call.
const MaxStopsPerImport = 100

// Client talks to the Circuit routing service.
//
// It implements DriverDirectory, PlanDispatcher and PlanReader. Reads and
// writes are paced by separate limiters because the service budgets them
// separately. The client is safe for concurrent use.
type Client struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	readLimiter  *rate.Limiter
	writeLimiter *rate.Limiter
	retryBackoff time.Duration
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	ReadRate  float64
	WriteRate float64
}

func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("circuit api key is empty")
	}

	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("circuit base url is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ReadRate <= 0 {
		opts.ReadRate = 5
	}
	if opts.WriteRate <= 0 {
		opts.WriteRate = 2
	}

	client := &Client{
		session:      &http.Client{Timeout: opts.Timeout},
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		readLimiter:  rate.NewLimiter(rate.Limit(opts.ReadRate), 1),
		writeLimiter: rate.NewLimiter(rate.Limit(opts.WriteRate), 1),
		retryBackoff: 200 * time.Millisecond,
	}

	return client, nil
}
