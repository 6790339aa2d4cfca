package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pgeterrors "github.com/Byteram/pget/internal/errors"
)

// Release is a published GitHub release.
type Release struct {
	TagName     string  `json:"tag_name"`
	Name        string  `json:"name"`
	Draft       bool    `json:"draft"`
	Prerelease  bool    `json:"prerelease"`
	PublishedAt string  `json:"published_at"`
	Assets      []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Version returns the release version without the tag's "v" prefix, the
// form release asset names embed.
func (r *Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// BinaryAsset locates the archive carrying the binary for a platform.
// Assets follow the goreleaser convention {binary}_{version}_{os}_{arch}.{ext}.
func (r *Release) BinaryAsset(binary string, p Platform) (*Asset, error) {
	want := fmt.Sprintf("%s_%s_%s%s", binary, r.Version(), p.String(), p.ArchiveExtension())
	for i := range r.Assets {
		if r.Assets[i].Name == want {
			return &r.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: release %s has no asset for %s", pgeterrors.ErrNotFound, r.TagName, p)
}

// ChecksumAsset locates the published checksums file, nil when the release
// carries none.
func (r *Release) ChecksumAsset(binary string) *Asset {
	want := fmt.Sprintf("%s_%s_checksums.txt", binary, r.Version())
	for i := range r.Assets {
		if r.Assets[i].Name == want {
			return &r.Assets[i]
		}
	}
	return nil
}

// Client fetches release information from the GitHub API.
type Client struct {
	// BaseURL is the API endpoint, overridable in tests.
	BaseURL string

	owner      string
	repo       string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a release client for the given repository.
func NewClient(owner, repo, version string) *Client {
	return &Client{
		BaseURL:    "https://api.github.com",
		owner:      owner,
		repo:       repo,
		userAgent:  "pget/" + version,
		httpClient: http.DefaultClient,
	}
}

// SetHTTPClient sets the HTTP client. Tests substitute one bound to a local
// server.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Latest fetches the newest non-draft, non-prerelease release.
func (c *Client) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.BaseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", pgeterrors.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pgeterrors.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s/%s has no releases", pgeterrors.ErrNotFound, c.owner, c.repo)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: release listing failed with status %d", pgeterrors.ErrTransport, resp.StatusCode)
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("%w: decoding release listing: %v", pgeterrors.ErrTransport, err)
	}

	for i := range releases {
		r := &releases[i]
		if r.TagName == "" || r.Draft || r.Prerelease {
			continue
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s/%s has no stable release", pgeterrors.ErrNotFound, c.owner, c.repo)
}
