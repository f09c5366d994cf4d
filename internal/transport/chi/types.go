package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNotFound         ErrorCode = "not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeRequestCanceled  ErrorCode = "request_canceled"
	CodeTimeout          ErrorCode = "timeout"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchParams are the query string parameters of GET /search.
type SearchParams struct {
	Query *string
	TopK  *int
	// Number is the legacy spelling of TopK.
	Number *int
	Page   *int
	Limit  *int
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query  *string `json:"query"`
	TopK   *int    `json:"top_k,omitempty"`
	Number *int    `json:"number,omitempty"`
	Page   *int    `json:"page,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
}

// Recipe is one ranked search hit.
type Recipe struct {
	ID             int     `json:"id"`
	Index          *int    `json:"index,omitempty"`
	Title          string  `json:"title"`
	Image          string  `json:"image"`
	Instructions   string  `json:"instructions"`
	Ingredients    string  `json:"ingredients"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Correction reports a query token replaced by the spelling corrector.
type Correction struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SearchResponse is one page of ranked recipes.
type SearchResponse struct {
	Result         []Recipe     `json:"result"`
	Query          string       `json:"query"`
	CorrectedQuery string       `json:"corrected_query"`
	Corrections    []Correction `json:"corrections"`
	Page           int          `json:"page"`
	Limit          int          `json:"limit"`
	Total          int          `json:"total"`
	HasMore        bool         `json:"has_more"`
}

// SuggestResponse lists vocabulary completions for a prefix.
type SuggestResponse struct {
	Prefix      string   `json:"prefix"`
	Suggestions []string `json:"suggestions"`
}

// HealthResponse reports engine and cache health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	Documents  int               `json:"documents"`
	Vocabulary int               `json:"vocabulary"`
	Dimensions int               `json:"dimensions"`
}

// WelcomeResponse is the body of GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}
