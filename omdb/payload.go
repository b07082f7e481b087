package omdb

import (
	"strings"

	"cinelist/movie"
)

// payload mirrors the OMDb title response. Field names are matched
// case-insensitively by encoding/json, so imdbID and ImdbID both land here.
type payload struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
	Type       string `json:"Type"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// ok reports whether the payload is a positive result. OMDb signals misses
// with Response "False" and a 200 status.
func (p payload) ok() bool {
	return !strings.EqualFold(p.Response, "False")
}

func (p payload) toMovie() movie.Movie {
	return movie.Movie{
		ImdbID:     p.ImdbID,
		Title:      p.Title,
		Year:       p.Year,
		Rated:      p.Rated,
		Released:   p.Released,
		Runtime:    p.Runtime,
		Genre:      p.Genre,
		Director:   p.Director,
		Writer:     p.Writer,
		Actors:     p.Actors,
		Plot:       p.Plot,
		Language:   p.Language,
		Country:    p.Country,
		Poster:     notAvailable(p.Poster),
		ImdbRating: notAvailable(p.ImdbRating),
		Type:       p.Type,
	}
}

type searchPayload struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		ImdbID string `json:"imdbID"`
		Type   string `json:"Type"`
	} `json:"Search"`
	TotalResults string `json:"totalResults"`
	Response     string `json:"Response"`
	Error        string `json:"Error"`
}

func (p searchPayload) ok() bool {
	return !strings.EqualFold(p.Response, "False")
}

// OMDb fills unknown values with "N/A".
func notAvailable(s string) string {
	if s == "N/A" {
		return ""
	}
	return s
}
