package tmdb

import "github.com/mantonx/moviecat/internal/database"

// Genre is a TMDB genre id and name
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

// DiscoverPage is one page of the discover listing
type DiscoverPage struct {
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
	Results      []DiscoverMovie `json:"results"`
}

// DiscoverMovie is the summary of a movie in a listing
type DiscoverMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int   `json:"genre_ids"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	Popularity  float64 `json:"popularity"`
}

// MovieDetails is the full record of a movie with its credits
type MovieDetails struct {
	ID                  int            `json:"id"`
	Title               string         `json:"title"`
	ReleaseDate         string         `json:"release_date"`
	Genres              []Genre        `json:"genres"`
	PosterPath          string         `json:"poster_path"`
	Overview            string         `json:"overview"`
	Popularity          float64        `json:"popularity"`
	Credits             Credits        `json:"credits"`
	BelongsToCollection *CollectionRef `json:"belongs_to_collection"`
}

// Director returns the first crew member credited as director, or
// database.UnknownAttribute
func (d *MovieDetails) Director() string {
	for _, member := range d.Credits.Crew {
		if member.Job == "Director" && member.Name != "" {
			return member.Name
		}
	}
	return database.UnknownAttribute
}

// GenreNames returns the names of the movie's genres
func (d *MovieDetails) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// Credits lists the people who worked on a movie
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// CrewMember is one crew credit
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// CollectionRef is the stub of a collection embedded in movie details
type CollectionRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Collection is a franchise and the movies in it
type Collection struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Parts []DiscoverMovie `json:"parts"`
}
