package flavorsearch

// Query is a free-text recipe search.
// Zero TopK uses the configured default. Zero Limit returns every ranked hit.
type Query struct {
	Text  string
	TopK  int
	Page  int
	Limit int
}

// Recipe is one ranked search hit.
type Recipe struct {
	ID           int
	Index        int // row index in the upstream dataset, -1 when absent
	Title        string
	ImageName    string
	Instructions string
	Ingredients  string
	// Score is the log-likelihood relevance, always <= 0. Higher is better.
	Score float64
}

// Correction is a query word replaced by the spelling corrector.
type Correction struct {
	From string
	To   string
}

// Results is one page of ranked recipes.
type Results struct {
	Recipes        []Recipe
	CorrectedQuery string
	Corrections    []Correction
	Total          int
	Page           int
	Limit          int
	HasMore        bool
}

// Stats describes the loaded model and corpus.
type Stats struct {
	Documents  int
	Vocabulary int
	Dimensions int
}
