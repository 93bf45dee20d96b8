package websearch

import "errors"

// ErrMissingAPIKey is returned, wrapped with tool.Fatal, when no Tavily key
// is configured.
var ErrMissingAPIKey = errors.New("TAVILY_API_KEY missing")

// Request is the argument of web_search.
type Request struct {
	Query         string `json:"query" description:"what to search for on the web"`
	MaxResults    int    `json:"max_results,omitempty" description:"number of results to keep, default 5"`
	IncludeAnswer *bool  `json:"include_answer,omitempty" description:"ask for a generated direct answer"`
}

func (r Request) String() string { return r.Query }

// Validate rejects blank queries before any request is sent.
func (r Request) Validate() error {
	if r.Query == "" {
		return errors.New("query must not be empty")
	}
	if r.MaxResults < 0 {
		return errors.New("max_results must not be negative")
	}
	return nil
}

// Hit is one compacted search result.
type Hit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Summary is the JSON document returned to the model on success.
type Summary struct {
	Query   string `json:"query"`
	Answer  string `json:"answer,omitempty"`
	Results []Hit  `json:"results"`
}

// Failure is the JSON document returned to the model when the search fails.
type Failure struct {
	Error string `json:"error"`
	Query string `json:"query"`
}

type tavilyRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}
