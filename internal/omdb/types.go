package omdb

// Rating is one entry of the OMDb Ratings list.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Response is the subset of the OMDb title response used for ratings.
type Response struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	ImdbID     string   `json:"imdbID"`
	ImdbRating string   `json:"imdbRating"`
	Ratings    []Rating `json:"Ratings"`
	Response   string   `json:"Response"`
	Error      string   `json:"Error,omitempty"`
}

// Ratings holds the two ratings stored per movie. Empty means absent.
type Ratings struct {
	IMDb           string `json:"imdb_rating"`
	RottenTomatoes string `json:"rt_rating"`
}
