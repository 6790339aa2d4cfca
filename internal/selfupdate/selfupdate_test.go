package selfupdate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/testutil"
)

var testPlatform = Platform{OS: "linux", Arch: "amd64"}

func TestNewerThan(t *testing.T) {
	cases := []struct {
		latest  string
		current string
		want    bool
	}{
		{"v1.1.0", "v1.0.0", true},
		{"v1.0.0", "v1.0.0", false},
		{"v1.0.0", "v1.1.0", false},
		{"v1.0.1", "v1.0.0", true},
		{"v2.0.0", "v1.9.9", true},
		{"v1.0.0", "dev", true},
		{"v1.0.0", "unknown", true},
		{"v1.2.3-rc.1", "v1.2.2", true},
		{"1.1.0", "1.0.0", true},
	}
	for _, tc := range cases {
		got := newerThan(tc.latest, tc.current)
		assert.Equal(t, tc.want, got, "newerThan(%q, %q)", tc.latest, tc.current)
	}
}

func TestBinaryAsset(t *testing.T) {
	rel := &Release{
		TagName: "v1.2.0",
		Assets: []Asset{
			{Name: "pget_1.2.0_checksums.txt"},
			{Name: "pget_1.2.0_darwin_arm64.tar.gz"},
			{Name: "pget_1.2.0_linux_amd64.tar.gz"},
			{Name: "pget_1.2.0_windows_amd64.zip"},
		},
	}

	asset, err := rel.BinaryAsset("pget", testPlatform)
	require.NoError(t, err)
	assert.Equal(t, "pget_1.2.0_linux_amd64.tar.gz", asset.Name)

	asset, err = rel.BinaryAsset("pget", Platform{OS: "windows", Arch: "amd64"})
	require.NoError(t, err)
	assert.Equal(t, "pget_1.2.0_windows_amd64.zip", asset.Name)

	_, err = rel.BinaryAsset("pget", Platform{OS: "plan9", Arch: "386"})
	assert.True(t, pgeterrors.IsNotFound(err))

	cs := rel.ChecksumAsset("pget")
	require.NotNil(t, cs)
	assert.Equal(t, "pget_1.2.0_checksums.txt", cs.Name)

	assert.Nil(t, (&Release{TagName: "v1.2.0"}).ChecksumAsset("pget"))
}

func TestVerifyChecksum(t *testing.T) {
	payload := []byte("release archive bytes")
	sum := sha256.Sum256(payload)
	digest := hex.EncodeToString(sum[:])

	good := fmt.Sprintf("%s  pget_1.0.0_linux_amd64.tar.gz\n", digest)
	assert.NoError(t, verifyChecksum(payload, []byte(good), "pget_1.0.0_linux_amd64.tar.gz"))

	starred := fmt.Sprintf("%s *pget_1.0.0_linux_amd64.tar.gz\n", digest)
	assert.NoError(t, verifyChecksum(payload, []byte(starred), "pget_1.0.0_linux_amd64.tar.gz"))

	wrong := "0000000000000000000000000000000000000000000000000000000000000000  pget_1.0.0_linux_amd64.tar.gz\n"
	err := verifyChecksum(payload, []byte(wrong), "pget_1.0.0_linux_amd64.tar.gz")
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	// No line for the asset: coverage gap, not a failure.
	other := fmt.Sprintf("%s  pget_1.0.0_darwin_arm64.tar.gz\n", digest)
	assert.NoError(t, verifyChecksum(payload, []byte(other), "pget_1.0.0_linux_amd64.tar.gz"))
}

func TestLatest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/Byteram/pget/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"tag_name": "v2.0.0-rc.1", "prerelease": true},
			{"tag_name": "v1.9.0", "draft": true},
			{"tag_name": "v1.8.0", "name": "v1.8.0", "assets": []},
			{"tag_name": "v1.7.0"}
		]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient("Byteram", "pget", "dev")
	c.BaseURL = srv.URL

	rel, err := c.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.8.0", rel.TagName, "drafts and prereleases are skipped")
}

func TestLatestErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("Byteram", "pget", "dev")
	c.BaseURL = srv.URL
	_, err := c.Latest(context.Background())
	assert.True(t, pgeterrors.IsNotFound(err))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	c.BaseURL = broken.URL
	_, err = c.Latest(context.Background())
	assert.True(t, pgeterrors.IsTransport(err))

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer empty.Close()

	c.BaseURL = empty.URL
	_, err = c.Latest(context.Background())
	assert.True(t, pgeterrors.IsNotFound(err))
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"tag_name": "v1.1.0"}]`)
	}))
	defer srv.Close()

	u := New("v1.0.0", "Byteram", "pget")
	u.SetBaseURL(srv.URL)

	rel, newer, err := u.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, newer)
	assert.Equal(t, "v1.1.0", rel.TagName)

	u = New("v1.1.0", "Byteram", "pget")
	u.SetBaseURL(srv.URL)
	_, newer, err = u.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, newer)
}

// serveRelease stands up a server publishing one release with a binary
// archive and a checksums file, returning the updater pointed at it.
func serveRelease(t *testing.T, archive []byte) *Updater {
	t.Helper()

	sum := sha256.Sum256(archive)
	checksums := fmt.Sprintf("%s  pget_1.1.0_linux_amd64.tar.gz\n", hex.EncodeToString(sum[:]))

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/repos/Byteram/pget/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"tag_name": "v1.1.0", "assets": [
			{"name": "pget_1.1.0_linux_amd64.tar.gz", "browser_download_url": %q},
			{"name": "pget_1.1.0_checksums.txt", "browser_download_url": %q}
		]}]`, srv.URL+"/dl/archive", srv.URL+"/dl/checksums")
	})
	mux.HandleFunc("/dl/archive", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})
	mux.HandleFunc("/dl/checksums", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, checksums)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u := New("v1.0.0", "Byteram", "pget")
	u.SetBaseURL(srv.URL)
	u.SetPlatform(testPlatform)
	return u
}

func TestFetchVerifies(t *testing.T) {
	payload := testutil.TarGzArchive(t, map[string]string{
		"pget":    "new binary build\n",
		"LICENSE": "MIT\n",
	})
	u := serveRelease(t, payload)
	ctx := context.Background()

	rel, newer, err := u.Check(ctx)
	require.NoError(t, err)
	require.True(t, newer)

	var progressed int64
	u.SetProgressHook(func(downloaded, total int64) {
		progressed = downloaded
	})

	got, err := u.Fetch(ctx, rel)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, int64(len(payload)), progressed)
}

func TestFetchChecksumMismatch(t *testing.T) {
	payload := testutil.TarGzArchive(t, map[string]string{"pget": "v2\n"})
	u := serveRelease(t, payload)

	rel, _, err := u.Check(context.Background())
	require.NoError(t, err)

	// Corrupt the asset in flight by serving different bytes than the
	// checksums cover.
	tampered := testutil.TarGzArchive(t, map[string]string{"pget": "evil\n"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(tampered)
	}))
	defer srv.Close()
	rel.Assets[0].BrowserDownloadURL = srv.URL + "/dl/archive"

	_, err = u.Fetch(context.Background(), rel)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pget")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0o755))

	payload := testutil.TarGzArchive(t, map[string]string{
		"pget":      "new binary build\n",
		"LICENSE":   "MIT\n",
		"README.md": "pget\n",
	})

	u := New("v1.0.0", "Byteram", "pget")
	require.NoError(t, u.Apply(payload, target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new binary build\n", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	if info.Mode().Perm()&0o111 == 0 {
		t.Error("replaced binary is not executable")
	}

	_, err = os.Stat(target + ".bak")
	assert.True(t, os.IsNotExist(err), "backup not cleaned up")
	_, err = os.Stat(target + ".new")
	assert.True(t, os.IsNotExist(err), "staged binary not cleaned up")
}

func TestApplyMissingBinary(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "pget")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0o755))

	payload := testutil.TarGzArchive(t, map[string]string{"LICENSE": "MIT\n"})

	u := New("v1.0.0", "Byteram", "pget")
	err := u.Apply(payload, target)
	assert.True(t, pgeterrors.IsNoEntryPoint(err))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old binary", string(data), "failed apply must not touch the target")
}
