package omdb

const (
	notAvailable         = "N/A"
	rottenTomatoesSource = "Rotten Tomatoes"
)

// ExtractRatings pulls the IMDb and Rotten Tomatoes ratings out of resp.
// "N/A" becomes absent and the first Rotten Tomatoes entry wins.
func ExtractRatings(resp *Response) Ratings {
	var r Ratings
	if resp == nil {
		return r
	}

	if resp.ImdbRating != notAvailable {
		r.IMDb = resp.ImdbRating
	}

	for _, rating := range resp.Ratings {
		if rating.Source == rottenTomatoesSource {
			if rating.Value != notAvailable {
				r.RottenTomatoes = rating.Value
			}
			break
		}
	}
	return r
}
