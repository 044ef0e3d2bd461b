package testsupport

import (
	"bytes"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

// FakeService is an httptest server answering canned responses by path.
// Unregistered paths return 404.
type FakeService struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
}

// NewFakeService starts a FakeService that is closed when the test ends.
func NewFakeService(t testing.TB) *FakeService {
	t.Helper()

	f := &FakeService{routes: map[string]http.HandlerFunc{}, hits: map[string]int{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeService) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	f.mu.Lock()
	f.hits[path]++
	handler, ok := f.routes[path]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// Handle registers a handler for path (without leading slash).
func (f *FakeService) Handle(path string, handler http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[strings.TrimPrefix(path, "/")] = handler
}

// JSON registers a 200 JSON body for path.
func (f *FakeService) JSON(path, body string) {
	f.Bytes(path, "application/json", []byte(body))
}

// Status registers an empty response with the given status code.
func (f *FakeService) Status(path string, code int) {
	f.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	})
}

// Bytes registers a raw 200 body.
func (f *FakeService) Bytes(path, contentType string, body []byte) {
	f.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	})
}

// Hits returns how many requests reached path.
func (f *FakeService) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[strings.TrimPrefix(path, "/")]
}

// PNG encodes a solid width x height image.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()

	img := imaging.New(width, height, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
