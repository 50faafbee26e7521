package cleaner_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joseph-ayodele/notes-summarizer/internal/cleaner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicClean(t *testing.T) {
	t.Parallel()

	in := "  Line one  \r\nLine two\t\n\n\n\n\nLine three  \n"
	require.Equal(t, "Line one\nLine two\n\nLine three", cleaner.BasicClean(in))
}

func TestSplitSections(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a\nb", "c", "d"}, cleaner.SplitSections("a\nb\n\nc\n \t \nd"))
	require.Equal(t, []string{}, cleaner.SplitSections(""))
}

func TestLocalClean(t *testing.T) {
	t.Parallel()

	text := "Meeting notes: we decided to ship the new version next week.\r\n\r\n\r\n" +
		"Alice will prepare the rollout plan and share it with the whole team before Friday.   \n"
	res, err := cleaner.NewLocal().Clean(t.Context(), text)
	require.NoError(t, err)
	require.Equal(t,
		"Meeting notes: we decided to ship the new version next week.\n\n"+
			"Alice will prepare the rollout plan and share it with the whole team before Friday.",
		res.CleanedText)
	require.Len(t, res.Sections, 2)
	require.Equal(t, "en", res.DetectedLanguage)

	empty, err := cleaner.NewLocal().Clean(t.Context(), " \n ")
	require.NoError(t, err)
	require.Empty(t, empty.CleanedText)
	require.Equal(t, cleaner.UnknownLanguage, empty.DetectedLanguage)
}

func TestHTTPClientClean(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clean", r.URL.Path)
		var in struct {
			Text string `json:"text"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		switch in.Text {
		case "fail":
			w.WriteHeader(http.StatusInternalServerError)
		case "partial":
			_, _ = w.Write([]byte(`{"sections":null}`))
		default:
			_, _ = w.Write([]byte(`{"cleaned_text":"clean","sections":["clean"],"detected_language":"en"}`))
		}
	}))
	t.Cleanup(srv.Close)

	c := cleaner.NewHTTPClient(srv.URL+"/", time.Second, nil)

	res, err := c.Clean(t.Context(), "raw")
	require.NoError(t, err)
	require.Equal(t, cleaner.Result{CleanedText: "clean", Sections: []string{"clean"}, DetectedLanguage: "en"}, res)

	partial, err := c.Clean(t.Context(), "partial")
	require.NoError(t, err)
	require.Equal(t, cleaner.Result{}, partial)

	_, err = c.Clean(t.Context(), "fail")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cleaner request")
}
