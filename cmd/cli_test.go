package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookies = "guest_id=v1%3A1; ct0=csrf-456; twid=u%3D4242; lang=en"

func executeCLI(t *testing.T, home string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// platformFixture fakes the platform: a base page whose inline script carries
// the bearer and operation table, a timeline query, and a delete mutation.
type platformFixture struct {
	server     *httptest.Server
	deleted    []string
	failingIDs map[string]bool
}

func newPlatformFixture(t *testing.T) *platformFixture {
	t.Helper()

	fixture := &platformFixture{failingIDs: map[string]bool{}}

	timelineEntry := func(id, text, createdAt string) string {
		return fmt.Sprintf(`{"entryId":"tweet-%s","content":{"itemContent":{"tweet_results":{"result":{"rest_id":%q,"legacy":{"user_id_str":"4242","full_text":%q,"created_at":%q}}}}}}`, id, id, text, createdAt)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page := `<html><head><script>` +
			`window.cfg={token:"Bearer AAAAtest%2Ftoken"};` +
			`e.exports={queryId:"abc123",operationName:"UserTweets"};` +
			`e.exports={queryId:"def456",operationName:"DeleteTweet"};` +
			`</script></head><body>` +
			`<a data-testid="AppTabBar_Profile_Link" href="/sweeper_dev"></a>` +
			`</body></html>`
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/i/api/graphql/abc123/UserTweets", func(w http.ResponseWriter, r *http.Request) {
		doc := `{"data":{"entries":[` +
			timelineEntry("101", "newest post", "Mon Jan 02 15:04:07 +0000 2023") + `,` +
			timelineEntry("102", "middle post", "Mon Jan 02 15:04:06 +0000 2023") + `,` +
			timelineEntry("103", "oldest post", "Mon Jan 02 15:04:05 +0000 2023") +
			`]}}`
		_, _ = w.Write([]byte(doc))
	})
	mux.HandleFunc("/i/api/graphql/def456/DeleteTweet", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Variables struct {
				TweetID string `json:"tweet_id"`
			} `json:"variables"`
		}
		_ = json.Unmarshal(body, &payload)

		if fixture.failingIDs[payload.Variables.TweetID] {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		fixture.deleted = append(fixture.deleted, payload.Variables.TweetID)
		_, _ = w.Write([]byte(`{"data":{"delete_tweet":{}}}`))
	})

	fixture.server = httptest.NewServer(mux)
	t.Cleanup(fixture.server.Close)

	t.Setenv("TWS_BASE_URL", fixture.server.URL)
	t.Setenv("TWS_DELETE_INTERVAL_MS", "100")
	return fixture
}

func storeTestSession(t *testing.T, home string) {
	t.Helper()

	stdout, _, err := executeCLI(t, home, "", "session", "set", "--cookies", testCookies)
	require.NoError(t, err)
	require.Contains(t, stdout, "Stored session for profile 1 (user id 4242)")
}

func TestSessionSetRejectsCookiesWithoutCSRF(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "", "session", "set", "--cookies", "lang=en; twid=u%3D4242")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ct0")
}

func TestSessionSetRejectsCookiesWithoutUserID(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "", "session", "set", "--cookies", "ct0=csrf-456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twid")
}

func TestSessionSetReadsCookiesFromStdin(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, testCookies+"\n", "session", "set")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stored session for profile 1")
}

func TestSessionSetAutoAssignsNextProfileID(t *testing.T) {
	home := t.TempDir()
	storeTestSession(t, home)

	stdout, _, err := executeCLI(t, home, "", "session", "set", "--cookies", testCookies)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stored session for profile 2")

	stdout, _, err = executeCLI(t, home, "", "session", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "user id 4242")
	assert.Contains(t, stdout, "1\t")
	assert.Contains(t, stdout, "2\t")
}

func TestSessionShowWithoutProfiles(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "", "session", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No profiles stored")
}

func TestSessionRemoveDeletesProfileAndCookies(t *testing.T) {
	home := t.TempDir()
	storeTestSession(t, home)

	stdout, _, err := executeCLI(t, home, "", "session", "remove", "--profile", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed profile 1")

	stdout, _, err = executeCLI(t, home, "", "session", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No profiles stored")
}

func TestDiscoverPrintsEndpointTable(t *testing.T) {
	home := t.TempDir()
	newPlatformFixture(t)

	stdout, _, err := executeCLI(t, home, "", "discover")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bearer: found")
	assert.Contains(t, stdout, "UserTweets\tabc123\t/i/api/graphql/abc123/UserTweets")
	assert.Contains(t, stdout, "DeleteTweet\tdef456\t/i/api/graphql/def456/DeleteTweet")
}

func TestDiscoverReportsMissingRequiredOperations(t *testing.T) {
	home := t.TempDir()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	t.Cleanup(server.Close)
	t.Setenv("TWS_BASE_URL", server.URL)

	_, _, err := executeCLI(t, home, "", "discover")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bearer credential")
	assert.Contains(t, err.Error(), "operation UserTweets")
}

func TestListRendersFetchedPosts(t *testing.T) {
	home := t.TempDir()
	newPlatformFixture(t)
	storeTestSession(t, home)

	stdout, _, err := executeCLI(t, home, "", "list", "--profile", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Posts by @sweeper_dev")
	assert.Contains(t, stdout, "found: 3")
	assert.Contains(t, stdout, "newest post")
	assert.Contains(t, stdout, "https://x.com/i/status/101")
}

func TestListJSONOutput(t *testing.T) {
	home := t.TempDir()
	newPlatformFixture(t)
	storeTestSession(t, home)

	stdout, _, err := executeCLI(t, home, "", "list", "--profile", "1", "--json")
	require.NoError(t, err)

	// The spinner may write terminal control output before the JSON document.
	start := strings.Index(stdout, "[\n")
	require.GreaterOrEqual(t, start, 0)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout[start:]), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "101", records[0]["id"])
}

func TestListPersistsResolvedHandle(t *testing.T) {
	home := t.TempDir()
	newPlatformFixture(t)
	storeTestSession(t, home)

	_, _, err := executeCLI(t, home, "", "list", "--profile", "1")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "", "session", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "@sweeper_dev")
}

func TestDeleteRequiresSelectionFlags(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "", "delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ids or --all")
}

func TestDeleteRejectsUnknownPostID(t *testing.T) {
	home := t.TempDir()
	newPlatformFixture(t)
	storeTestSession(t, home)

	_, _, err := executeCLI(t, home, "", "delete", "--ids", "999999", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the vault")
}

func TestDeleteAbortsWhenDeclined(t *testing.T) {
	home := t.TempDir()
	fixture := newPlatformFixture(t)
	storeTestSession(t, home)

	stdout, _, err := executeCLI(t, home, "n\n", "delete", "--ids", "101")
	require.NoError(t, err)
	assert.Contains(t, stdout, "About to delete 1 post(s)")
	assert.Contains(t, stdout, "Aborted.")
	assert.Empty(t, fixture.deleted)
}

func TestDeleteWithConfirmation(t *testing.T) {
	home := t.TempDir()
	fixture := newPlatformFixture(t)
	storeTestSession(t, home)

	stdout, _, err := executeCLI(t, home, "y\n", "delete", "--ids", "101")
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleted 101")
	assert.Contains(t, stdout, "Done: 1 deleted, 0 failed.")
	assert.Equal(t, []string{"101"}, fixture.deleted)
}

func TestDeleteAllContinuesPastFailures(t *testing.T) {
	home := t.TempDir()
	fixture := newPlatformFixture(t)
	fixture.failingIDs["102"] = true
	storeTestSession(t, home)

	stdout, _, err := executeCLI(t, home, "", "delete", "--all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleted 101")
	assert.Contains(t, stdout, "failed  102")
	assert.Contains(t, stdout, "deleted 103")
	assert.Contains(t, stdout, "Done: 2 deleted, 1 failed.")
	assert.Equal(t, []string{"101", "103"}, fixture.deleted)
}

func TestVersionCommand(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0.1.0")
}
