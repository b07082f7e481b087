package movie

import "cinelist/errs"

var (
	ErrInvalidID     = errs.Errorf(errs.EINVALID, "movie: imdb id is required")
	ErrInvalidQuery  = errs.Errorf(errs.EINVALID, "invalid search query")
	ErrNotFound      = errs.Errorf(errs.ENOTFOUND, "movie not found")
	ErrAlreadyCached = errs.Errorf(errs.ECONFLICT, "movie already cached")
	ErrEmptyCatalog  = errs.Errorf(errs.ENOTFOUND, "no movies cached yet, try searching first")
)

// Movie is the normalized movie record. The same shape is persisted by the
// stores and returned to callers.
type Movie struct {
	ImdbID     string `json:"imdb_id"`
	Title      string `json:"title"`
	Year       string `json:"year,omitempty"`
	Rated      string `json:"rated,omitempty"`
	Released   string `json:"released,omitempty"`
	Runtime    string `json:"runtime,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Director   string `json:"director,omitempty"`
	Writer     string `json:"writer,omitempty"`
	Actors     string `json:"actors,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Language   string `json:"language,omitempty"`
	Country    string `json:"country,omitempty"`
	Poster     string `json:"poster,omitempty"`
	ImdbRating string `json:"imdb_rating,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Field bounds shared by every store. Column sizes in migrations must match.
const (
	MaxImdbIDLength  = 20
	MaxTitleLength   = 200
	MaxShortLength   = 10
	MaxDateLength    = 20
	MaxListLength    = 100
	MaxNameLength    = 200
	MaxCreditsLength = 500
	MaxPlotLength    = 1000
	MaxTypeLength    = 50
)

// Bounded returns m with every field cut to its stored size, so the copy
// handed to callers is the copy later reads return.
func (m Movie) Bounded() Movie {
	return Movie{
		ImdbID:     truncate(m.ImdbID, MaxImdbIDLength),
		Title:      truncate(m.Title, MaxTitleLength),
		Year:       truncate(m.Year, MaxShortLength),
		Rated:      truncate(m.Rated, MaxShortLength),
		Released:   truncate(m.Released, MaxDateLength),
		Runtime:    truncate(m.Runtime, MaxDateLength),
		Genre:      truncate(m.Genre, MaxListLength),
		Director:   truncate(m.Director, MaxNameLength),
		Writer:     truncate(m.Writer, MaxCreditsLength),
		Actors:     truncate(m.Actors, MaxCreditsLength),
		Plot:       truncate(m.Plot, MaxPlotLength),
		Language:   truncate(m.Language, MaxListLength),
		Country:    truncate(m.Country, MaxListLength),
		Poster:     truncate(m.Poster, MaxCreditsLength),
		ImdbRating: truncate(m.ImdbRating, MaxShortLength),
		Type:       truncate(m.Type, MaxTypeLength),
	}
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Outcome tells how a lookup was resolved.
type Outcome string

const (
	OutcomeCached         Outcome = "cached"
	OutcomeFetched        Outcome = "fetched"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeUpstreamFailed Outcome = "upstream_failed"
)

// Result is the outcome of GetOrAdd. Movie is only populated when Found
// reports true; otherwise it carries just the requested ImdbID.
type Result struct {
	Movie   Movie   `json:"movie"`
	Outcome Outcome `json:"outcome"`
}

func (r Result) Found() bool {
	return r.Outcome == OutcomeCached || r.Outcome == OutcomeFetched
}
