package selfupdate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/Byteram/pget/internal/archive"
	pgeterrors "github.com/Byteram/pget/internal/errors"
)

// Updater drives a self-update: check, fetch, verify, apply.
type Updater struct {
	current  string
	binary   string
	platform Platform
	client   *Client
	http     *http.Client
	progress ProgressHook
}

// New creates an Updater for the running binary against the given
// repository.
func New(current, owner, repo string) *Updater {
	return &Updater{
		current:  current,
		binary:   repo,
		platform: CurrentPlatform(),
		client:   NewClient(owner, repo, current),
		http:     http.DefaultClient,
	}
}

// SetHTTPClient sets the HTTP client used for both the API and asset
// downloads.
func (u *Updater) SetHTTPClient(client *http.Client) {
	u.http = client
	u.client.SetHTTPClient(client)
}

// SetBaseURL points the API client at a different endpoint.
func (u *Updater) SetBaseURL(url string) {
	u.client.BaseURL = url
}

// SetPlatform overrides the detected platform.
func (u *Updater) SetPlatform(p Platform) {
	u.platform = p
}

// SetProgressHook sets the download progress callback.
func (u *Updater) SetProgressHook(hook ProgressHook) {
	u.progress = hook
}

// Check fetches the latest release and reports whether it is newer than the
// running version.
func (u *Updater) Check(ctx context.Context) (*Release, bool, error) {
	rel, err := u.client.Latest(ctx)
	if err != nil {
		return nil, false, err
	}
	return rel, newerThan(rel.TagName, u.current), nil
}

// Fetch downloads the release archive for the current platform and verifies
// it against the release's checksums file when one is published.
func (u *Updater) Fetch(ctx context.Context, rel *Release) ([]byte, error) {
	asset, err := rel.BinaryAsset(u.binary, u.platform)
	if err != nil {
		return nil, err
	}

	payload, err := u.download(ctx, asset.BrowserDownloadURL, u.progress)
	if err != nil {
		return nil, err
	}

	if cs := rel.ChecksumAsset(u.binary); cs != nil {
		// The checksums file is metadata; only the archive reports progress.
		sums, err := u.download(ctx, cs.BrowserDownloadURL, nil)
		if err != nil {
			return nil, err
		}
		if err := verifyChecksum(payload, sums, asset.Name); err != nil {
			return nil, err
		}
	}

	return payload, nil
}

// Apply extracts the binary from the release archive and swaps it into
// place at target: stage next to the target, park the old binary, place the
// new one, then discard the parked copy. A failed placement restores the
// old binary.
func (u *Updater) Apply(payload []byte, target string) error {
	arc, err := archive.Parse(payload)
	if err != nil {
		return err
	}

	bin, err := findBinary(arc.Members(), u.binary)
	if err != nil {
		return err
	}

	staged := target + ".new"
	if err := os.WriteFile(staged, bin.Data, 0o755); err != nil {
		return fmt.Errorf("%w: staging new binary: %v", pgeterrors.ErrFilesystem, err)
	}

	backup := target + ".bak"
	if err := os.Rename(target, backup); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("%w: parking current binary: %v", pgeterrors.ErrFilesystem, err)
	}

	if err := os.Rename(staged, target); err != nil {
		_ = os.Rename(backup, target)
		_ = os.Remove(staged)
		return fmt.Errorf("%w: placing new binary: %v", pgeterrors.ErrFilesystem, err)
	}

	_ = os.Remove(backup)
	return nil
}

// findBinary locates the binary member inside a release archive. Release
// archives carry the binary at the root, next to license and readme files.
func findBinary(members []archive.Member, binary string) (*archive.Member, error) {
	for i := range members {
		base := path.Base(members[i].Path)
		if base == binary || base == binary+".exe" {
			return &members[i], nil
		}
	}
	return nil, fmt.Errorf("%w: release archive has no %q binary", pgeterrors.ErrNoEntryPoint, binary)
}

// download buffers one asset fully in memory, reporting progress through
// hook and checking the byte count against the declared content length.
func (u *Updater) download(ctx context.Context, url string, hook ProgressHook) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", pgeterrors.ErrTransport, err)
	}
	req.Header.Set("User-Agent", u.client.userAgent)

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pgeterrors.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download failed with status %d", pgeterrors.ErrTransport, resp.StatusCode)
	}

	total := resp.ContentLength
	if hook != nil {
		hook(0, total)
	}

	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	var downloaded int64
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			downloaded += int64(n)
			if hook != nil {
				hook(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: download interrupted: %v", pgeterrors.ErrTransport, err)
		}
	}

	if total >= 0 && downloaded != total {
		return nil, fmt.Errorf("%w: short download: got %d of %d bytes", pgeterrors.ErrTransport, downloaded, total)
	}
	return buf.Bytes(), nil
}

// verifyChecksum checks the payload's SHA-256 digest against the checksums
// file line naming assetName. A checksums file without a line for the asset
// passes: partial checksum coverage is not a failure.
func verifyChecksum(payload, checksums []byte, assetName string) error {
	want := ""
	for _, line := range strings.Split(string(checksums), "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimPrefix(fields[len(fields)-1], "*")
		if name == assetName {
			want = fields[0]
			break
		}
	}
	if want == "" {
		return nil
	}

	sum := sha256.Sum256(payload)
	got := hex.EncodeToString(sum[:])
	if got != want {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrChecksumMismatch, assetName, want, got)
	}
	return nil
}
