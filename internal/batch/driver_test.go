package batch_test

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaun/repopush/internal/batch"
	"github.com/shaun/repopush/internal/config"
	"github.com/shaun/repopush/internal/github"
	"github.com/shaun/repopush/internal/githubtest"
	"github.com/shaun/repopush/internal/manifest"
)

type fakeUploader struct {
	uploads []string
	probes  []string
	results map[string]github.UploadResult
	errs    map[string]error
}

func (f *fakeUploader) Probe(_ context.Context, path string) github.RemoteFile {
	f.probes = append(f.probes, path)
	return github.RemoteFile{}
}

func (f *fakeUploader) Upload(_ context.Context, path, _, _ string) (github.UploadResult, error) {
	f.uploads = append(f.uploads, path)
	if err := f.errs[path]; err != nil {
		return github.UploadResult{Status: http.StatusUnprocessableEntity}, err
	}
	if r, ok := f.results[path]; ok {
		return r, nil
	}
	return github.UploadResult{Created: true, Status: http.StatusCreated}, nil
}

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("content of "+p), 0o644))
	}
}

func TestDriver_missingLocalFileSkipped(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.md")
	up := &fakeUploader{}
	var out bytes.Buffer
	rep := batch.NewDriver(up, batch.Options{Root: root, Out: &out}).Run(context.Background(), []manifest.Task{
		{Path: "a.md", Message: "a"},
		{Path: "b.md", Message: "b"},
	})

	assert.Equal(t, []string{"b.md"}, up.uploads)
	assert.Equal(t, 1, rep.Skipped())
	assert.Equal(t, 0, rep.Failed())
	assert.Equal(t, 1, rep.Attempted())
	assert.Contains(t, out.String(), "skipped   a.md")
}

func TestDriver_countsOnlySuccessfulWrites(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.md", "b.md", "c.md", "d.md")
	up := &fakeUploader{
		results: map[string]github.UploadResult{
			"b.md": {Status: http.StatusOK},
		},
		errs: map[string]error{
			"c.md": &github.UploadError{Status: http.StatusUnprocessableEntity, Message: "bad"},
			"d.md": &github.UploadError{Status: http.StatusConflict, Message: "stale"},
		},
	}
	var out bytes.Buffer
	rep := batch.NewDriver(up, batch.Options{Root: root, Out: &out}).Run(context.Background(), []manifest.Task{
		{Path: "a.md", Message: "a"},
		{Path: "b.md", Message: "b"},
		{Path: "c.md", Message: "c"},
		{Path: "d.md", Message: "d"},
	})

	assert.Len(t, up.uploads, 4, "failures do not stop the batch")
	assert.Equal(t, 2, rep.Succeeded())
	assert.Equal(t, 2, rep.Failed())
	res := rep.Results()
	assert.Equal(t, batch.OutcomeCreated, res[0].Outcome)
	assert.Equal(t, batch.OutcomeUpdated, res[1].Outcome)
	assert.Equal(t, batch.OutcomeFailed, res[2].Outcome)
	assert.Contains(t, out.String(), "failed    c.md: 422 bad")
	assert.Contains(t, out.String(), "Summary: 2/4 files uploaded (2 failed)")
}

func TestDriver_dryRunNeverUploads(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.md")
	up := &fakeUploader{}
	var out bytes.Buffer
	rep := batch.NewDriver(up, batch.Options{Root: root, Out: &out, DryRun: true}).Run(context.Background(), []manifest.Task{
		{Path: "a.md", Message: "a"},
		{Path: "missing.md", Message: "m"},
	})
	assert.Empty(t, up.uploads)
	assert.Equal(t, []string{"a.md"}, up.probes)
	assert.Equal(t, 0, rep.Succeeded())
	assert.Contains(t, out.String(), "would create a.md")
}

func TestDriver_cancelledContextStops(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.md")
	up := &fakeUploader{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := batch.NewDriver(up, batch.Options{Root: root}).Run(ctx, []manifest.Task{{Path: "a.md", Message: "a"}})
	assert.Empty(t, up.uploads)
	assert.Empty(t, rep.Results())
	assert.Equal(t, 1, rep.Total)
}

// Missing local file, an update answered 200 and a create answered 201.
func TestDriver_endToEnd(t *testing.T) {
	srv := githubtest.NewServer("octo", "site", "tk")
	defer srv.Close()
	existingSHA := srv.Seed("main", "docs/two.md", []byte("old"))

	root := t.TempDir()
	writeFiles(t, root, "docs/two.md", "three.md")

	sess := config.Session{Owner: "octo", Repo: "site", Branch: "main", Token: "tk", APIURL: srv.URL}
	client, err := github.NewClient(sess)
	require.NoError(t, err)

	var out bytes.Buffer
	rep := batch.NewDriver(client, batch.Options{Root: root, Out: &out, HistoryURL: sess.HistoryURL()}).
		Run(context.Background(), []manifest.Task{
			{Path: "one.md", Message: "Add one"},
			{Path: "docs/two.md", Message: "Update two"},
			{Path: "three.md", Message: "Add three"},
		})

	res := rep.Results()
	require.Len(t, res, 3)
	assert.Equal(t, batch.OutcomeSkipped, res[0].Outcome)
	assert.Equal(t, batch.OutcomeUpdated, res[1].Outcome)
	assert.Equal(t, http.StatusOK, res[1].Status)
	assert.Equal(t, batch.OutcomeCreated, res[2].Outcome)
	assert.Equal(t, http.StatusCreated, res[2].Status)

	puts := srv.Puts()
	require.Len(t, puts, 2)
	require.NotNil(t, puts[0].Put.SHA)
	assert.Equal(t, existingSHA, *puts[0].Put.SHA)
	assert.Equal(t, "Update two", puts[0].Put.Message)
	assert.Nil(t, puts[1].Put.SHA)

	assert.Contains(t, out.String(), "skipped   one.md")
	assert.Contains(t, out.String(), "Summary: 2/3 files uploaded (1 skipped)")
	assert.Contains(t, out.String(), "Commit history: http://")
}
