package metadata

import (
	"strings"

	"marquee/internal/language"
	"marquee/internal/library"
	"marquee/internal/ranking"
	"marquee/internal/sources/fanart"
	"marquee/internal/sources/imdb"
	"marquee/internal/sources/tmdb"
)

const (
	akaTypeDisplay = "imdbDisplay"

	sourceTMDB   = "tmdb"
	sourceFanart = "fanart"
)

// mergeNames builds primary and original names from the dataset record and
// adds localized names from display akas. Duplicate (kind, region, value)
// entries are dropped.
func mergeNames(local *imdb.Title, akas []imdb.Aka, original string) []library.Name {
	var names []library.Name
	seen := make(map[string]struct{})
	add := func(n library.Name) {
		n.Value = strings.TrimSpace(n.Value)
		if n.Value == "" {
			return
		}
		key := string(n.Kind) + "\x00" + n.Region + "\x00" + n.Value
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		names = append(names, n)
	}

	if local != nil {
		add(library.Name{Kind: library.NamePrimary, Value: local.PrimaryTitle})
		n := library.Name{Kind: library.NameOriginal, Value: nonEmpty(local.OriginalTitle, local.PrimaryTitle)}
		if original != "" {
			n.Languages = []string{original}
		}
		add(n)
	}
	for _, aka := range akas {
		if !aka.HasType(akaTypeDisplay) {
			continue
		}
		add(library.Name{
			Kind:      library.NameLocalized,
			Region:    strings.ToUpper(strings.TrimSpace(aka.Region)),
			Languages: language.NormalizeList(aka.Languages),
			Value:     aka.Title,
		})
	}
	return names
}

// mergeDescriptions returns the catalog overview as the primary description
// followed by every translation with a non-empty overview.
func (a *Aggregator) mergeDescriptions(overview, tagline string, trans *tmdb.Translations) []library.Description {
	var out []library.Description
	seen := make(map[string]struct{})
	add := func(d library.Description) {
		d.Overview = strings.TrimSpace(d.Overview)
		d.Tagline = strings.TrimSpace(d.Tagline)
		if d.Overview == "" {
			return
		}
		key := d.Region + "\x00" + strings.Join(d.Languages, ",") + "\x00" + d.Overview
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}

	primary := library.Description{Overview: overview, Tagline: tagline}
	if a.language != "" {
		primary.Languages = []string{a.language}
	}
	add(primary)
	if trans == nil {
		return out
	}
	for _, t := range trans.Translations {
		d := library.Description{
			Region:   strings.ToUpper(strings.TrimSpace(t.Region)),
			Overview: t.Data.Overview,
			Tagline:  t.Data.Tagline,
		}
		if lang := language.Normalize(t.Language); lang != "" {
			d.Languages = []string{lang}
		}
		add(d)
	}
	return out
}

func credits(principals []imdb.Principal) []library.Credit {
	if len(principals) == 0 {
		return nil
	}
	out := make([]library.Credit, 0, len(principals))
	for _, p := range principals {
		if p.PersonID == "" {
			continue
		}
		out = append(out, library.Credit{
			PersonID:   p.PersonID,
			PersonName: p.PersonName,
			Category:   p.Category,
			Job:        p.Job,
			Characters: p.Characters,
		})
	}
	return out
}

func genreNames(genres []tmdb.Genre) []string {
	var out []string
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// movieRatings keeps one certification per region: the one attached to the
// highest release type. Equal types keep the first listed.
func movieRatings(releases *tmdb.ReleaseDates) []library.Rating {
	if releases == nil {
		return nil
	}
	var out []library.Rating
	for _, region := range releases.Results {
		code := strings.ToUpper(strings.TrimSpace(region.Region))
		if code == "" {
			continue
		}
		bestType := -1
		var cert string
		for _, r := range region.ReleaseDates {
			c := strings.TrimSpace(r.Certification)
			if c == "" {
				continue
			}
			if r.Type > bestType {
				bestType = r.Type
				cert = c
			}
		}
		if cert != "" {
			out = append(out, library.Rating{Region: code, Certification: cert})
		}
	}
	return out
}

// showRatings keeps the first rating listed per region.
func showRatings(ratings *tmdb.ContentRatings) []library.Rating {
	if ratings == nil {
		return nil
	}
	var out []library.Rating
	seen := make(map[string]struct{})
	for _, r := range ratings.Results {
		code := strings.ToUpper(strings.TrimSpace(r.Region))
		cert := strings.TrimSpace(r.Rating)
		if code == "" || cert == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, library.Rating{Region: code, Certification: cert})
	}
	return out
}

func (a *Aggregator) catalogCandidates(images *tmdb.Images) []ranking.Candidate {
	if images == nil {
		return nil
	}
	var out []ranking.Candidate
	add := func(kind ranking.Kind, list []tmdb.Image) {
		for _, img := range list {
			url := a.sources.Catalog.ImageURL(img.FilePath)
			if url == "" {
				continue
			}
			out = append(out, ranking.Candidate{
				Kind:        kind,
				Language:    language.Normalize(img.Language),
				SourceURL:   url,
				Source:      sourceTMDB,
				VoteAverage: img.VoteAverage,
				VoteCount:   img.VoteCount,
				Width:       img.Width,
				Height:      img.Height,
			})
		}
	}
	add(ranking.KindPoster, images.Posters)
	add(ranking.KindBackdrop, images.Backdrops)
	add(ranking.KindStill, images.Stills)
	return out
}

// fanartCandidates converts logos to candidates. Every like counts as a
// positive vote.
func fanartCandidates(logos []fanart.Logo) []ranking.Candidate {
	out := make([]ranking.Candidate, 0, len(logos))
	for _, logo := range logos {
		if strings.TrimSpace(logo.URL) == "" {
			continue
		}
		out = append(out, ranking.Candidate{
			Kind:        ranking.KindLogo,
			Language:    language.Normalize(logo.Lang),
			SourceURL:   logo.URL,
			Source:      sourceFanart,
			VoteAverage: 10,
			VoteCount:   logo.LikeCount(),
			Width:       logo.Width,
			Height:      logo.Height,
		})
	}
	return out
}
