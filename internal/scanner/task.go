package scanner

// Pass is one sweep of the wordlist rooted at Base. The root pass has depth 1.
type Pass struct {
	Base  string
	Depth int
}

type Result struct {
	URL           string `json:"url"`
	StatusCode    int    `json:"status_code"`
	ContentLength int64  `json:"content_length"`
	Depth         int    `json:"depth"`
	Method        string `json:"method"`
	ElapsedMS     int64  `json:"elapsed_ms"`
	WAFDetected   string `json:"waf_detected,omitempty"`
	Timestamp     string `json:"timestamp"`
}
