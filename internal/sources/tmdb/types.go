package tmdb

// SearchResult represents a single TMDB search match.
type SearchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	Popularity    float64 `json:"popularity"`
}

// SearchResponse models the TMDB paginated search response.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// FindResponse is the payload of find/{external_id}.
type FindResponse struct {
	MovieResults []SearchResult `json:"movie_results"`
	TVResults    []SearchResult `json:"tv_results"`
}

// Genre is a TMDB genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is the movie/{id} payload.
type Movie struct {
	ID               int64   `json:"id"`
	IMDbID           string  `json:"imdb_id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	Tagline          string  `json:"tagline"`
	Runtime          int     `json:"runtime"`
	ReleaseDate      string  `json:"release_date"`
	Genres           []Genre `json:"genres"`
}

// Show is the tv/{id} payload.
type Show struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	OriginalLanguage string          `json:"original_language"`
	Overview         string          `json:"overview"`
	Tagline          string          `json:"tagline"`
	FirstAirDate     string          `json:"first_air_date"`
	LastAirDate      string          `json:"last_air_date"`
	EpisodeRunTime   []int           `json:"episode_run_time"`
	Genres           []Genre         `json:"genres"`
	Seasons          []SeasonSummary `json:"seasons"`
}

// SeasonSummary is one entry of Show.Seasons.
type SeasonSummary struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
}

// ExternalIDs is the tv/{id}/external_ids payload.
type ExternalIDs struct {
	IMDbID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// Translations is the */translations payload.
type Translations struct {
	Translations []Translation `json:"translations"`
}

// Translation is one localized text bundle.
type Translation struct {
	Region   string          `json:"iso_3166_1"`
	Language string          `json:"iso_639_1"`
	Data     TranslationData `json:"data"`
}

// TranslationData holds the translated fields; movies use Title, shows and
// episodes use Name.
type TranslationData struct {
	Title    string `json:"title"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
	Tagline  string `json:"tagline"`
}

// ReleaseDates is the movie/{id}/release_dates payload.
type ReleaseDates struct {
	Results []RegionReleases `json:"results"`
}

// RegionReleases lists the releases in one region.
type RegionReleases struct {
	Region       string    `json:"iso_3166_1"`
	ReleaseDates []Release `json:"release_dates"`
}

// Release is a single dated release with its certification. Type follows
// TMDB's release type numbering (1 premiere through 6 TV).
type Release struct {
	Certification string `json:"certification"`
	Type          int    `json:"type"`
	ReleaseDate   string `json:"release_date"`
}

// ContentRatings is the tv/{id}/content_ratings payload.
type ContentRatings struct {
	Results []ContentRating `json:"results"`
}

// ContentRating is one regional TV rating.
type ContentRating struct {
	Region string `json:"iso_3166_1"`
	Rating string `json:"rating"`
}

// Images is the */images payload.
type Images struct {
	Posters   []Image `json:"posters"`
	Backdrops []Image `json:"backdrops"`
	Logos     []Image `json:"logos"`
	Stills    []Image `json:"stills"`
}

// Image is one artwork entry. Language is empty for textless images.
type Image struct {
	FilePath    string  `json:"file_path"`
	Language    string  `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// Season is the tv/{id}/season/{n} payload.
type Season struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is the tv/{id}/season/{s}/episode/{e} payload and a Season entry.
type Episode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Runtime       int    `json:"runtime"`
}

// Configuration is the subset of the configuration payload used to build
// image URLs.
type Configuration struct {
	Images struct {
		SecureBaseURL string `json:"secure_base_url"`
	} `json:"images"`
}
