package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
)

// Marker is replaced by each wordlist entry when it appears in the target.
const Marker = "FUZZ"

// Resolve turns a wordlist entry into a URL. A target containing Marker has
// every marker replaced; otherwise the entry is appended after exactly one
// slash.
func Resolve(target, entry string) string {
	if strings.Contains(target, Marker) {
		return strings.ReplaceAll(target, Marker, entry)
	}
	return strings.TrimRight(target, "/") + "/" + entry
}

// Config is built once at startup and shared read-only by every scan pass.
type Config struct {
	Target         string
	Wordlist       string
	Extensions     []string
	ExcludeCodes   map[int]struct{}
	ExcludeLengths map[int64]struct{}
	MaxDepth       int
	Threads        int
	Jitter         time.Duration
	SmartFilter    bool

	Timeout       int
	RateLimit     int
	RetryAttempts int
	MaxResponseMB int
	CustomHeaders map[string]string
	Insecure      bool

	JSON       bool
	NoProgress bool
	LogLevel   string
}

// ExcludesStatus reports whether responses with this status are hidden.
func (c *Config) ExcludesStatus(code int) bool {
	_, ok := c.ExcludeCodes[code]
	return ok
}

// ExcludesLength reports whether responses with this exact length are hidden.
func (c *Config) ExcludesLength(n int64) bool {
	_, ok := c.ExcludeLengths[n]
	return ok
}

// Args is the command line surface. Lists stay raw strings here and are
// parsed leniently by Config.
type Args struct {
	URL           string   `arg:"-u,--url" help:"target URL; FUZZ is replaced by each entry, otherwise entries are appended as path segments"`
	Wordlist      string   `arg:"-w,--wordlist" help:"wordlist path (required)"`
	Extensions    string   `arg:"-x,--extensions" help:"comma-separated extensions, e.g. php,html,txt"`
	Recurse       int      `arg:"-r,--recurse" default:"1" help:"maximum recursion depth (1 = no recursion)"`
	FilterSize    string   `arg:"--fs" help:"comma-separated content lengths to hide"`
	Exclude       string   `arg:"-e,--exclude" default:"404" help:"comma-separated status codes to hide"`
	Threads       int      `arg:"-t,--threads,env:PATHFUZZ_THREADS" default:"100" help:"maximum in-flight requests across the whole scan"`
	Jitter        int      `arg:"-j,--jitter" default:"0" help:"upper bound of the random delay before each request, in ms (0 = off)"`
	Smart         bool     `arg:"-s,--smart" help:"calibrate against a random path and hide soft-404 responses"`
	Timeout       int      `arg:"--timeout,env:PATHFUZZ_TIMEOUT" default:"10" help:"request timeout in seconds"`
	RateLimit     int      `arg:"--rate-limit,env:PATHFUZZ_RATE_LIMIT" default:"0" help:"max requests per second per host (0 = unlimited)"`
	Retries       int      `arg:"--retries" default:"0" help:"retries after a transport error"`
	MaxResponseMB int      `arg:"--max-response-mb" default:"10" help:"max response body read, in MB"`
	Headers       []string `arg:"-H,--header,separate" help:"custom header \"Name: value\" (repeatable)"`
	VerifyTLS     bool     `arg:"--verify-tls" help:"reject invalid TLS certificates (accepted by default)"`
	JSON          bool     `arg:"--json" help:"print results as JSON lines"`
	NoProgress    bool     `arg:"--no-progress" help:"disable the progress spinner"`
	LogLevel      string   `arg:"--log-level,env:PATHFUZZ_LOG_LEVEL" default:"warn" help:"log level: debug|info|warn|error"`
}

func (Args) Description() string {
	return "pathfuzz - recursive web content discovery"
}

func (Args) Epilogue() string {
	return `Examples:
  pathfuzz -u https://target.com -w wordlist.txt
  pathfuzz -u https://target.com/FUZZ/index.php -w words.txt -t 50
  pathfuzz -u https://target.com -w words.txt -x php,bak -r 3 -s
  PATHFUZZ_THREADS=20 pathfuzz -u https://target.com -w wordlist.txt`
}

// Parse reads os.Args and the environment. Usage errors exit the process.
func Parse() Config {
	var args Args
	arg.MustParse(&args)
	return args.Config()
}

// Config converts the raw arguments. Malformed numeric entries are dropped
// instead of failing the whole list.
func (a Args) Config() Config {
	cfg := Config{
		Target:         strings.TrimSpace(a.URL),
		Wordlist:       a.Wordlist,
		Extensions:     ParseExtensions(a.Extensions),
		ExcludeCodes:   make(map[int]struct{}),
		ExcludeLengths: make(map[int64]struct{}),
		MaxDepth:       a.Recurse,
		Threads:        a.Threads,
		Jitter:         time.Duration(a.Jitter) * time.Millisecond,
		SmartFilter:    a.Smart,
		Timeout:        a.Timeout,
		RateLimit:      a.RateLimit,
		RetryAttempts:  a.Retries,
		MaxResponseMB:  a.MaxResponseMB,
		CustomHeaders:  ParseHeaders(a.Headers),
		Insecure:       !a.VerifyTLS,
		JSON:           a.JSON,
		NoProgress:     a.NoProgress,
		LogLevel:       a.LogLevel,
	}

	for _, code := range ParseInts(a.Exclude) {
		cfg.ExcludeCodes[int(code)] = struct{}{}
	}
	for _, n := range ParseInts(a.FilterSize) {
		cfg.ExcludeLengths[n] = struct{}{}
	}

	return cfg
}

// ParseInts splits a comma-separated list, skipping entries that do not parse.
func ParseInts(list string) []int64 {
	var out []int64
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ParseExtensions trims entries and strips a leading dot; order is kept.
func ParseExtensions(list string) []string {
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

func ParseHeaders(raw []string) map[string]string {
	headers := make(map[string]string)
	for _, h := range raw {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key != "" {
				headers[key] = value
			}
		}
	}
	return headers
}

func Validate(config *Config) error {
	if config.Target == "" {
		return fmt.Errorf("no target specified. Use -u to set the target URL")
	}

	if !strings.HasPrefix(config.Target, "http://") && !strings.HasPrefix(config.Target, "https://") {
		config.Target = "http://" + config.Target
	}

	if config.Wordlist == "" {
		return fmt.Errorf("wordlist is required (-w). Provide a wordlist file path")
	}

	if _, err := os.Stat(config.Wordlist); os.IsNotExist(err) {
		return fmt.Errorf("wordlist file not found: %s. Check the path and try again", config.Wordlist)
	}

	if config.MaxDepth < 1 {
		config.MaxDepth = 1
	}

	if config.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d. Use -t to set (default: 100)", config.Threads)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d. Use --timeout to set (default: 10)", config.Timeout)
	}

	if config.Jitter < 0 {
		return fmt.Errorf("jitter must not be negative, got %s. Use -j to set (default: 0)", config.Jitter)
	}

	if config.MaxResponseMB <= 0 {
		return fmt.Errorf("max response size must be positive, got %d. Use --max-response-mb to set (default: 10)", config.MaxResponseMB)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log level %q. Valid values: debug, info, warn, error", config.LogLevel)
	}

	return nil
}
