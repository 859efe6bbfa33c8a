package git

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

type recorded struct {
	cmds []Command
	fail map[string]error  // keyed by first arg
	outs map[string][]byte // keyed by first arg
	out  []byte
}

func (r *recorded) run(_ context.Context, c Command) ([]byte, error) {
	r.cmds = append(r.cmds, c)
	if len(c.Args) > 0 {
		if err, ok := r.fail[c.Args[0]]; ok {
			return nil, err
		}
		if out, ok := r.outs[c.Args[0]]; ok {
			return out, nil
		}
	}
	return r.out, nil
}

func (r *recorded) commands() []string {
	var got []string
	for _, c := range r.cmds {
		got = append(got, c.String())
	}
	return got
}

var remoteMain = []byte("4b825dc642cb6eb9a060e54bf8d69288fbee4904\trefs/heads/main\n")

// ============================================================
// Repo
// ============================================================

func TestInit(t *testing.T) {
	rec := &recorded{}
	r, err := Init(context.Background(), "/work", "art", rec.run, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Dir != filepath.Join("/work", "art") {
		t.Fatalf("Dir = %q", r.Dir)
	}
	c := rec.cmds[0]
	if c.Dir != "/work" || c.Name != "git" || !slices.Equal(c.Args, []string{"init", "-b", "main", "art"}) {
		t.Fatalf("unexpected command %+v", c)
	}
}

func TestInitEmptyName(t *testing.T) {
	if _, err := Init(context.Background(), "/work", "", (&recorded{}).run, nil); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestInitFailure(t *testing.T) {
	rec := &recorded{fail: map[string]error{"init": errors.New("boom")}}
	if _, err := Init(context.Background(), "/work", "art", rec.run, nil); err == nil {
		t.Fatal("expected init error")
	}
}

func TestEmitEventSetsDates(t *testing.T) {
	rec := &recorded{}
	r := Open("/work/art", rec.run, nil)
	at := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)
	if err := r.EmitEvent(context.Background(), at); err != nil {
		t.Fatal(err)
	}
	c := rec.cmds[0]
	if c.Dir != "/work/art" || c.Args[0] != "commit" {
		t.Fatalf("unexpected command %+v", c)
	}
	if !slices.Contains(c.Args, "--allow-empty") || !slices.Contains(c.Args, "--allow-empty-message") {
		t.Fatalf("commit must allow empty: %v", c.Args)
	}
	want := []string{"GIT_AUTHOR_DATE=2024-01-07T00:00:00Z", "GIT_COMMITTER_DATE=2024-01-07T00:00:00Z"}
	if !slices.Equal(c.Env, want) {
		t.Fatalf("Env = %v, want %v", c.Env, want)
	}
}

func TestPublishWithRemote(t *testing.T) {
	rec := &recorded{outs: map[string][]byte{"ls-remote": remoteMain}}
	r := Open("/work/art", rec.run, nil)
	if err := r.Publish(context.Background(), "git@example.com:me/art.git"); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"git remote",
		"git remote add origin git@example.com:me/art.git",
		"git ls-remote --heads origin main",
		"git pull origin main --rebase",
		"git push -u origin main",
	}
	if got := rec.commands(); !slices.Equal(got, want) {
		t.Fatalf("commands = %q, want %q", got, want)
	}
}

func TestPublishSkipsPullOnEmptyRemote(t *testing.T) {
	rec := &recorded{}
	r := Open("/work/art", rec.run, nil)
	if err := r.Publish(context.Background(), "https://example.com/art.git"); err != nil {
		t.Fatalf("empty remote should not fail: %v", err)
	}
	for _, c := range rec.cmds {
		if len(c.Args) > 0 && c.Args[0] == "pull" {
			t.Fatal("nothing to pull from an empty remote")
		}
	}
	if rec.cmds[len(rec.cmds)-1].Args[0] != "push" {
		t.Fatal("push should still run")
	}
}

func TestPublishPullFailure(t *testing.T) {
	rec := &recorded{
		outs: map[string][]byte{"ls-remote": remoteMain},
		fail: map[string]error{"pull": errors.New("conflict")},
	}
	r := Open("/work/art", rec.run, nil)
	if err := r.Publish(context.Background(), "https://example.com/art.git"); err == nil {
		t.Fatal("expected pull error")
	}
}

func TestPublishLsRemoteFailure(t *testing.T) {
	rec := &recorded{fail: map[string]error{"ls-remote": errors.New("could not read from remote")}}
	r := Open("/work/art", rec.run, nil)
	if err := r.Publish(context.Background(), "https://example.com/art.git"); err == nil {
		t.Fatal("expected ls-remote error")
	}
	if rec.cmds[len(rec.cmds)-1].Args[0] != "ls-remote" {
		t.Fatal("nothing should run after a failed ls-remote")
	}
}

func TestPublishRetryReusesOrigin(t *testing.T) {
	rec := &recorded{outs: map[string][]byte{"remote": []byte("origin\n")}}
	r := Open("/work/art", rec.run, nil)
	if err := r.Publish(context.Background(), "https://example.com/art.git"); err != nil {
		t.Fatal(err)
	}
	if got := rec.cmds[1].String(); got != "git remote set-url origin https://example.com/art.git" {
		t.Fatalf("second command = %q", got)
	}
}

func TestPublishWithGH(t *testing.T) {
	rec := &recorded{}
	r := Open("/work/art", rec.run, nil)
	if err := r.Publish(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	c := rec.cmds[1]
	if c.Name != "gh" || c.Dir != "/work" {
		t.Fatalf("unexpected command %+v", c)
	}
	if !slices.Equal(c.Args, []string{"repo", "create", "--source=art", "--private", "--push"}) {
		t.Fatalf("args = %v", c.Args)
	}
}

func TestPublishWithGHRetryPushesOnly(t *testing.T) {
	rec := &recorded{outs: map[string][]byte{"remote": []byte("origin\n")}}
	r := Open("/work/art", rec.run, nil)
	if err := r.Publish(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	want := []string{"git remote", "git push -u origin main"}
	if got := rec.commands(); !slices.Equal(got, want) {
		t.Fatalf("commands = %q, want %q", got, want)
	}
}

func TestRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "art")
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Open(dir, nil, nil).Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("directory should be gone")
	}
}

func TestRemoveRefusesRoot(t *testing.T) {
	if err := Open("/", nil, nil).Remove(); err == nil {
		t.Fatal("should refuse to remove /")
	}
	if err := Open("", nil, nil).Remove(); err == nil {
		t.Fatal("should refuse to remove empty path")
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "git", Args: []string{"push", "-u"}}
	if c.String() != "git push -u" {
		t.Fatalf("String = %q", c.String())
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner(context.Background(), Command{Name: "definitely-not-a-binary-xyz"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

// ============================================================
// Contributions
// ============================================================

func contributionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !strings.Contains(req.Query, "contributionsCollection") {
			t.Errorf("unexpected query %q", req.Query)
		}
		if req.Variables["from"] != "2024-01-01T00:00:00Z" || req.Variables["to"] != "2024-12-31T23:59:59Z" {
			t.Errorf("unexpected variables %v", req.Variables)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMaxDaily(t *testing.T) {
	body := `{"data":{"viewer":{"contributionsCollection":{"contributionCalendar":{"weeks":[
		{"contributionDays":[{"contributionCount":1},{"contributionCount":12}]},
		{"contributionDays":[{"contributionCount":0},{"contributionCount":7}]}
	]}}}}}`
	srv := contributionServer(t, http.StatusOK, body)

	c := NewContributionClient(context.Background(), "tok", nil)
	c.Endpoint = srv.URL
	got, err := c.MaxDaily(context.Background(), 2024)
	if err != nil {
		t.Fatal(err)
	}
	if got != 12 {
		t.Fatalf("MaxDaily = %d, want 12", got)
	}
}

func TestMaxDailyEmptyCalendar(t *testing.T) {
	srv := contributionServer(t, http.StatusOK, `{"data":{"viewer":{"contributionsCollection":{"contributionCalendar":{"weeks":[]}}}}}`)
	c := NewContributionClient(context.Background(), "tok", nil)
	c.Endpoint = srv.URL
	got, err := c.MaxDaily(context.Background(), 2024)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("MaxDaily = %d, want 0", got)
	}
}

func TestMaxDailyGraphQLError(t *testing.T) {
	srv := contributionServer(t, http.StatusOK, `{"errors":[{"message":"Bad credentials"}]}`)
	c := NewContributionClient(context.Background(), "tok", nil)
	c.Endpoint = srv.URL
	_, err := c.MaxDaily(context.Background(), 2024)
	if err == nil || !strings.Contains(err.Error(), "Bad credentials") {
		t.Fatalf("expected graphql error, got %v", err)
	}
}

func TestMaxDailyHTTPError(t *testing.T) {
	srv := contributionServer(t, http.StatusUnauthorized, `{}`)
	c := NewContributionClient(context.Background(), "tok", nil)
	c.Endpoint = srv.URL
	if _, err := c.MaxDaily(context.Background(), 2024); err == nil {
		t.Fatal("expected status error")
	}
}

func TestResolveTokenFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", " from-gh-env ")
	tok, err := ResolveToken(context.Background(), (&recorded{}).run)
	if err != nil {
		t.Fatal(err)
	}
	if tok != "from-gh-env" {
		t.Fatalf("token = %q", tok)
	}
}

func TestResolveTokenFromCLI(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	rec := &recorded{out: []byte("cli-token\n")}
	tok, err := ResolveToken(context.Background(), rec.run)
	if err != nil {
		t.Fatal(err)
	}
	if tok != "cli-token" {
		t.Fatalf("token = %q", tok)
	}
	if rec.cmds[0].String() != "gh auth token" {
		t.Fatalf("command = %q", rec.cmds[0].String())
	}
}

func TestResolveTokenMissing(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	rec := &recorded{fail: map[string]error{"auth": errors.New("not logged in")}}
	_, err := ResolveToken(context.Background(), rec.run)
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}
