package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// listingServer serves a paginated bulletin listing plus the bulletin files
// themselves, counting how often each file is fetched.
type listingServer struct {
	*httptest.Server

	mu       sync.Mutex
	fileHits map[string]int
}

// newListingServer maps page number -> hrefs advertised on that page. Pages
// without an entry render empty (the end-of-listing sentinel).
func newListingServer(t *testing.T, pages map[int][]string) *listingServer {
	t.Helper()
	ls := &listingServer{fileHits: map[string]int{}}

	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/upload/") {
			ls.mu.Lock()
			ls.fileHits[r.URL.Path]++
			ls.mu.Unlock()
			_, _ = w.Write([]byte("bulletin-bytes:" + r.URL.Path))
			return
		}

		page := 1
		if q := r.URL.Query().Get("page"); q != "" {
			_, _ = fmt.Sscanf(q, "page-%d", &page)
		}

		var b strings.Builder
		b.WriteString("<html><body>")
		for _, href := range pages[page] {
			fmt.Fprintf(&b, `<a class="xls" href="%s">Бюллетень за день</a>`, href)
		}
		// Listing noise that must never be collected.
		b.WriteString(`<a class="pdf" href="/upload/reports/oil_pdf_20230109162000.pdf">pdf</a>`)
		b.WriteString("</body></html>")
		_, _ = w.Write([]byte(b.String()))
	}))
	t.Cleanup(ls.Close)
	return ls
}

func (ls *listingServer) hits(path string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.fileHits[path]
}

func collectAll(t *testing.T, c *Collector) []string {
	t.Helper()
	out := make(chan string, 32)
	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background(), out) }()

	var got []string
	for link := range out {
		got = append(got, link)
	}
	if err := <-done; err != nil {
		t.Fatalf("collector run: %v", err)
	}
	return got
}

func TestCollector_WindowInclusiveAndPagination(t *testing.T) {
	srv := newListingServer(t, map[int][]string{
		1: {
			"/upload/reports/oil_xls_20230108120000.xls",      // before window
			"/upload/reports/oil_xls_20230109000000.xls",      // == start boundary
			"/upload/reports/oil_xls_20230110120000.xls?r=21", // inside, with query
		},
		2: {
			"/upload/reports/oil_xls_20230111000000.xls", // == end boundary
			"/upload/reports/oil_xls_20230112090000.xls", // after window
			"/upload/reports/not_a_bulletin.xls",         // no embedded stamp
		},
		// page 3 renders empty and ends pagination
	})

	start := time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 11, 0, 0, 0, 0, time.UTC)
	c, err := NewCollector(srv.Client(), srv.URL, start, end)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	got := collectAll(t, c)
	want := []string{
		srv.URL + "/upload/reports/oil_xls_20230109000000.xls",
		srv.URL + "/upload/reports/oil_xls_20230110120000.xls?r=21",
		srv.URL + "/upload/reports/oil_xls_20230111000000.xls",
	}
	if len(got) != len(want) {
		t.Fatalf("links: want %d, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("link %d: want %s, got %s", i, want[i], got[i])
		}
	}
	if c.Found() != 3 {
		t.Fatalf("Found(): want 3, got %d", c.Found())
	}
}

func TestCollector_ContinuesPastFullyFilteredPage(t *testing.T) {
	// The listing is newest-first: a historical window means the leading
	// pages hold only newer, filtered-out bulletins. Pagination must not
	// stop until a page has no bulletin anchors at all.
	srv := newListingServer(t, map[int][]string{
		1: {
			"/upload/reports/oil_xls_20230201120000.xls",
			"/upload/reports/oil_xls_20230131120000.xls",
		},
		2: {
			"/upload/reports/oil_xls_20230110120000.xls",
		},
	})

	start := time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 11, 0, 0, 0, 0, time.UTC)
	c, err := NewCollector(srv.Client(), srv.URL, start, end)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	got := collectAll(t, c)
	if len(got) != 1 || got[0] != srv.URL+"/upload/reports/oil_xls_20230110120000.xls" {
		t.Fatalf("unexpected links: %v", got)
	}
}

func TestCollector_PageErrorFailsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewCollector(srv.Client(), srv.URL, time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	got := collectAll(t, c)
	if len(got) != 0 {
		t.Fatalf("expected no links from a failing listing, got %v", got)
	}
}

func TestDownloader_SkipsExistingFile(t *testing.T) {
	srv := newListingServer(t, nil)
	dir := t.TempDir()

	existing := filepath.Join(dir, "oil_xls_20230109162000.xls")
	if err := os.WriteFile(existing, []byte("already here"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	queue := make(chan string, 2)
	queue <- srv.URL + "/upload/reports/oil_xls_20230109162000.xls"
	queue <- srv.URL + "/upload/reports/oil_xls_20230110162000.xls?r=7"
	close(queue)

	d := NewDownloader(srv.Client(), dir, 2)
	if err := d.Run(context.Background(), 1, queue); err != nil {
		t.Fatalf("run: %v", err)
	}

	if n := srv.hits("/upload/reports/oil_xls_20230109162000.xls"); n != 0 {
		t.Fatalf("existing file fetched %d times, want 0", n)
	}
	files := d.Files()
	if len(files) != 1 || filepath.Base(files[0]) != "oil_xls_20230110162000.xls" {
		t.Fatalf("unexpected files: %v", files)
	}
	// Query string must not leak into the stored name.
	if _, err := os.Stat(filepath.Join(dir, "oil_xls_20230110162000.xls")); err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	// The pre-existing file stays untouched.
	b, _ := os.ReadFile(existing)
	if string(b) != "already here" {
		t.Fatalf("existing file was overwritten: %q", b)
	}
}

func TestDownloader_BadStatusDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	queue := make(chan string, 2)
	queue <- srv.URL + "/upload/missing/oil_xls_20230109162000.xls"
	queue <- srv.URL + "/upload/reports/oil_xls_20230110162000.xls"
	close(queue)

	d := NewDownloader(srv.Client(), dir, 1)
	if err := d.Run(context.Background(), 1, queue); err != nil {
		t.Fatalf("run: %v", err)
	}
	files := d.Files()
	if len(files) != 1 || filepath.Base(files[0]) != "oil_xls_20230110162000.xls" {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestLocalName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://spimex.com/upload/reports/oil_xls_20230109162000.xls", "oil_xls_20230109162000.xls"},
		{"https://spimex.com/upload/reports/oil_xls_20230109162000.xls?r=100&x=1", "oil_xls_20230109162000.xls"},
		{"https://spimex.com/", ""},
	}
	for _, c := range cases {
		if got := localName(c.in); got != c.want {
			t.Fatalf("localName(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestScrape_EndToEndAndIdempotentRerun(t *testing.T) {
	srv := newListingServer(t, map[int][]string{
		1: {
			"/upload/reports/oil_xls_20230109162000.xls",
			"/upload/reports/oil_xls_20230110162000.xls",
		},
		2: {
			"/upload/reports/oil_xls_20230111162000.xls?r=3",
		},
	})

	dir := t.TempDir()
	start := time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 12, 0, 0, 0, 0, time.UTC)

	s := New(srv.Client(), srv.URL, dir, 3, 2)
	files, links, err := s.Scrape(context.Background(), start, end)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if links != 3 {
		t.Fatalf("links found: want 3, got %d", links)
	}
	if len(files) != 3 {
		t.Fatalf("files: want 3, got %d (%v)", len(files), files)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("missing downloaded file %s: %v", f, err)
		}
	}

	// Re-running the same window finds the same links but downloads nothing.
	files2, links2, err := s.Scrape(context.Background(), start, end)
	if err != nil {
		t.Fatalf("second scrape: %v", err)
	}
	if links2 != 3 {
		t.Fatalf("second run links: want 3, got %d", links2)
	}
	if len(files2) != 0 {
		t.Fatalf("second run must skip all downloads, got %v", files2)
	}
	if n := srv.hits("/upload/reports/oil_xls_20230109162000.xls"); n != 1 {
		t.Fatalf("file fetched %d times across runs, want 1", n)
	}
}

func TestScrape_BadDownloadDir(t *testing.T) {
	srv := newListingServer(t, nil)
	// A file in place of the directory makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := New(srv.Client(), srv.URL, blocker, 1, 1)
	if _, _, err := s.Scrape(context.Background(), time.Time{}, time.Now()); err == nil {
		t.Fatalf("expected setup error for unusable download dir")
	}
}
