package ranking

import (
	"math"
	"sort"
)

// Kind is an artwork category.
type Kind string

const (
	KindPoster   Kind = "poster"
	KindBackdrop Kind = "backdrop"
	KindStill    Kind = "still"
	KindLogo     Kind = "logo"
)

var kindOrder = map[Kind]int{KindPoster: 0, KindBackdrop: 1, KindStill: 2, KindLogo: 3}

// CarriesText reports whether images of this kind usually contain legible text,
// which makes a language match more valuable than a textless variant.
func (k Kind) CarriesText() bool {
	return k == KindPoster || k == KindLogo
}

// Candidate is one image offered by an artwork source. Language is empty for
// textless or language-agnostic images.
type Candidate struct {
	Kind        Kind
	Language    string
	SourceURL   string
	Source      string
	VoteAverage float64 // 0..10
	VoteCount   int64
	Width       int
	Height      int
}

// PositiveVotes converts the average rating into an equivalent count of
// positive votes.
func (c Candidate) PositiveVotes() float64 {
	if c.VoteCount <= 0 {
		return 0
	}
	avg := math.Max(0, math.Min(c.VoteAverage, 10))
	return avg / 10 * float64(c.VoteCount)
}

// LanguageWeight ranks a candidate's language against the title's original
// language. Text-bearing kinds prefer the original language, pictorial kinds
// prefer agnostic images; any other language weighs 0.
func LanguageWeight(kind Kind, lang, original string) float64 {
	agnostic := lang == ""
	matches := !agnostic && lang == original
	if kind.CarriesText() {
		switch {
		case matches:
			return 1.5
		case agnostic:
			return 1.0
		}
		return 0
	}
	switch {
	case agnostic:
		return 1.5
	case matches:
		return 1.0
	}
	return 0
}

// Ranker scores and selects artwork candidates.
type Ranker struct {
	Confidence float64
}

// Quality is the secondary sort key: vote confidence scaled by the square root
// of the image area in megapixels.
func (r Ranker) Quality(c Candidate) float64 {
	score := Score(c.PositiveVotes(), float64(c.VoteCount), r.Confidence)
	megapixels := float64(c.Width) * float64(c.Height) / 1e6
	if megapixels < 0 {
		megapixels = 0
	}
	return (0.01 + score) * math.Sqrt(megapixels)
}

type scored struct {
	Candidate
	weight  float64
	quality float64
}

func (r Ranker) better(a, b scored) bool {
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	if a.quality != b.quality {
		return a.quality > b.quality
	}
	areaA, areaB := a.Width*a.Height, b.Width*b.Height
	if areaA != areaB {
		return areaA > areaB
	}
	return a.SourceURL < b.SourceURL
}

// Select returns the best candidate for every (kind, language) pair observed in
// pool. Results are grouped by kind (poster, backdrop, still, logo) and, within
// a kind, ordered best first, so the first entry of each kind is the overall
// winner for that kind. The result depends only on the pool contents, not on
// their order.
func (r Ranker) Select(pool []Candidate, original string) []Candidate {
	type bucket struct {
		kind Kind
		lang string
	}
	best := make(map[bucket]scored)
	for _, c := range pool {
		if c.SourceURL == "" {
			continue
		}
		s := scored{
			Candidate: c,
			weight:    LanguageWeight(c.Kind, c.Language, original),
			quality:   r.Quality(c),
		}
		key := bucket{kind: c.Kind, lang: c.Language}
		if current, ok := best[key]; !ok || r.better(s, current) {
			best[key] = s
		}
	}

	winners := make([]scored, 0, len(best))
	for _, s := range best {
		winners = append(winners, s)
	}
	sort.Slice(winners, func(i, j int) bool {
		a, b := winners[i], winners[j]
		if a.Kind != b.Kind {
			return kindRank(a.Kind) < kindRank(b.Kind)
		}
		return r.better(a, b)
	})

	out := make([]Candidate, len(winners))
	for i, s := range winners {
		out[i] = s.Candidate
	}
	return out
}

// Best returns the overall winner of kind in a Select result.
func Best(selected []Candidate, kind Kind) (Candidate, bool) {
	for _, c := range selected {
		if c.Kind == kind {
			return c, true
		}
	}
	return Candidate{}, false
}

func kindRank(k Kind) int {
	if rank, ok := kindOrder[k]; ok {
		return rank
	}
	return len(kindOrder)
}
