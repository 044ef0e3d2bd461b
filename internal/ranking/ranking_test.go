package ranking

import (
	"math"
	"reflect"
	"testing"
)

func TestScoreZeroInputs(t *testing.T) {
	if got := Score(0, 50, DefaultConfidence); got != 0 {
		t.Fatalf("Score(0, 50) = %v, want 0", got)
	}
	if got := Score(5, 0, DefaultConfidence); got != 0 {
		t.Fatalf("Score(5, 0) = %v, want 0", got)
	}
}

func TestScoreIsMonotonicInPositiveVotes(t *testing.T) {
	const total = 40.0
	prev := -1.0
	for positive := 0.0; positive <= total; positive++ {
		got := Score(positive, total, DefaultConfidence)
		if got < prev {
			t.Fatalf("score decreased at %v/%v: %v < %v", positive, total, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("score out of range at %v/%v: %v", positive, total, got)
		}
		prev = got
	}
}

func TestScoreKnownValue(t *testing.T) {
	// 90% confidence: z = 1.6449; 8 of 10 positive.
	got := Score(8, 10, 0.9)
	if math.Abs(got-0.5408) > 0.001 {
		t.Fatalf("Score(8, 10, 0.9) = %v, want about 0.5408", got)
	}
	if Score(8, 10, 0.99) >= got {
		t.Fatal("higher confidence should lower the bound")
	}
}

func TestScorePrefersMoreEvidence(t *testing.T) {
	few := Score(1, 1, DefaultConfidence)
	many := Score(90, 100, DefaultConfidence)
	if many <= few {
		t.Fatalf("expected 90/100 (%v) to outrank 1/1 (%v)", many, few)
	}
}

func TestLanguageWeight(t *testing.T) {
	tests := []struct {
		kind Kind
		lang string
		want float64
	}{
		{KindPoster, "en", 1.5},
		{KindPoster, "", 1.0},
		{KindPoster, "fr", 0},
		{KindLogo, "en", 1.5},
		{KindBackdrop, "", 1.5},
		{KindBackdrop, "en", 1.0},
		{KindStill, "de", 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.lang, func(t *testing.T) {
			if got := LanguageWeight(tt.kind, tt.lang, "en"); got != tt.want {
				t.Fatalf("LanguageWeight(%s, %q) = %v, want %v", tt.kind, tt.lang, got, tt.want)
			}
		})
	}
}

func samplePool() []Candidate {
	return []Candidate{
		{Kind: KindPoster, Language: "en", SourceURL: "https://img/p-en-small.jpg", VoteAverage: 5, VoteCount: 2, Width: 500, Height: 750},
		{Kind: KindPoster, Language: "en", SourceURL: "https://img/p-en-large.jpg", VoteAverage: 5.4, VoteCount: 10, Width: 1000, Height: 1500},
		{Kind: KindPoster, Language: "", SourceURL: "https://img/p-none.jpg", VoteAverage: 9, VoteCount: 200, Width: 2000, Height: 3000},
		{Kind: KindPoster, Language: "fr", SourceURL: "https://img/p-fr.jpg", VoteAverage: 8, VoteCount: 30, Width: 2000, Height: 3000},
		{Kind: KindBackdrop, Language: "en", SourceURL: "https://img/b-en.jpg", VoteAverage: 9, VoteCount: 100, Width: 3840, Height: 2160},
		{Kind: KindBackdrop, Language: "", SourceURL: "https://img/b-none.jpg", VoteAverage: 5, VoteCount: 4, Width: 1280, Height: 720},
		{Kind: KindLogo, Language: "en", SourceURL: "https://img/l-en.png", Source: "fanart", VoteAverage: 10, VoteCount: 3, Width: 800, Height: 310},
	}
}

func TestSelectKeepsOneWinnerPerKindAndLanguage(t *testing.T) {
	r := Ranker{Confidence: DefaultConfidence}
	got := r.Select(samplePool(), "en")

	var urls []string
	for _, c := range got {
		urls = append(urls, c.SourceURL)
	}
	want := []string{
		"https://img/p-en-large.jpg",
		"https://img/p-none.jpg",
		"https://img/p-fr.jpg",
		"https://img/b-none.jpg",
		"https://img/b-en.jpg",
		"https://img/l-en.png",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Fatalf("unexpected selection:\n got %v\nwant %v", urls, want)
	}

	poster, ok := Best(got, KindPoster)
	if !ok || poster.Language != "en" {
		t.Fatalf("expected original-language poster to win, got %+v", poster)
	}
	backdrop, ok := Best(got, KindBackdrop)
	if !ok || backdrop.Language != "" {
		t.Fatalf("expected agnostic backdrop to win, got %+v", backdrop)
	}
	if _, ok := Best(got, KindStill); ok {
		t.Fatal("expected no still in selection")
	}
}

func TestSelectIsOrderIndependent(t *testing.T) {
	r := Ranker{Confidence: DefaultConfidence}
	pool := samplePool()
	// Two equal candidates differ only by URL; the lexically smaller wins.
	pool = append(pool,
		Candidate{Kind: KindStill, SourceURL: "https://img/s-b.jpg", Width: 1920, Height: 1080},
		Candidate{Kind: KindStill, SourceURL: "https://img/s-a.jpg", Width: 1920, Height: 1080},
	)
	want := r.Select(pool, "en")

	reversed := make([]Candidate, len(pool))
	for i, c := range pool {
		reversed[len(pool)-1-i] = c
	}
	if got := r.Select(reversed, "en"); !reflect.DeepEqual(got, want) {
		t.Fatalf("selection depends on input order:\n got %+v\nwant %+v", got, want)
	}
	still, ok := Best(want, KindStill)
	if !ok || still.SourceURL != "https://img/s-a.jpg" {
		t.Fatalf("unexpected still tie-break winner: %+v", still)
	}
}

func TestSelectIgnoresCandidatesWithoutURL(t *testing.T) {
	r := Ranker{}
	got := r.Select([]Candidate{{Kind: KindPoster, Width: 100, Height: 100}}, "en")
	if len(got) != 0 {
		t.Fatalf("expected empty selection, got %+v", got)
	}
}
