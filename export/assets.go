package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// maxAssetSize bounds a single downloaded asset.
const maxAssetSize = 25 << 20

// AssetFetcher downloads images referenced by exported pages into a local
// directory and rewrites their references. Downloads are concurrent;
// failures leave the remote reference in place.
type AssetFetcher struct {
	// Dir is where downloaded assets are written.
	Dir string

	// Client is the HTTP client used for downloads.
	// Defaults to http.DefaultClient.
	Client *http.Client

	// Concurrency bounds parallel downloads. Defaults to 4.
	Concurrency int

	mu      sync.Mutex
	fetched map[string]string // remote URL -> local filename
}

// Localize downloads every remote image referenced by contentHTML and
// rewrites its src to relPrefix plus the local filename. References that
// cannot be downloaded are left untouched; Localize never fails the page.
func (f *AssetFetcher) Localize(ctx context.Context, contentHTML, relPrefix string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return contentHTML
	}

	var remote []string
	seen := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if !isRemoteAsset(src) || seen[src] {
			return
		}
		seen[src] = true
		remote = append(remote, src)
	})
	if len(remote) == 0 {
		return contentHTML
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency())
	for _, src := range remote {
		g.Go(func() error {
			// Failures are recorded as absence; the reference stays
			// remote.
			_, _ = f.fetch(gctx, src)
			return nil
		})
	}
	_ = g.Wait()

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if local, ok := f.localName(src); ok {
			sel.SetAttr("src", relPrefix+local)
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return contentHTML
	}
	return out
}

// fetch downloads one asset, naming it by URL hash so repeated references
// across pages share a single file.
func (f *AssetFetcher) fetch(ctx context.Context, src string) (string, error) {
	if local, ok := f.localName(src); ok {
		return local, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching asset %s: status %d", src, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return "", err
	}

	name := assetFilename(src)
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(f.Dir, name), data, 0644); err != nil {
		return "", err
	}

	f.mu.Lock()
	if f.fetched == nil {
		f.fetched = make(map[string]string)
	}
	f.fetched[src] = name
	f.mu.Unlock()

	return name, nil
}

func (f *AssetFetcher) localName(src string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.fetched[src]
	return name, ok
}

func (f *AssetFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *AssetFetcher) concurrency() int {
	if f.Concurrency > 0 {
		return f.Concurrency
	}
	return 4
}

// assetFilename derives a stable local filename from the asset URL: the URL
// hash plus the original extension when it has one.
func assetFilename(src string) string {
	name := fmt.Sprintf("%016x", xxhash.Sum64String(src))
	if u, err := url.Parse(src); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 8 {
			name += ext
		}
	}
	return name
}

// isRemoteAsset checks if a reference points at a downloadable remote asset.
func isRemoteAsset(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
