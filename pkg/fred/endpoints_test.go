package fred

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryChildrenURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantPfx string
	}{
		{"default base", "", "https://api.stlouisfed.org/fred/category/children?"},
		{"custom base", "http://127.0.0.1:8080/fred", "http://127.0.0.1:8080/fred/category/children?"},
		{"trailing slash", "http://127.0.0.1:8080/fred/", "http://127.0.0.1:8080/fred/category/children?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategoryChildrenURL(tt.baseURL, "32991", "key&value")
			assert.Contains(t, got, tt.wantPfx)

			u, err := url.Parse(got)
			require.NoError(t, err)
			q := u.Query()
			assert.Equal(t, "32991", q.Get("category_id"))
			assert.Equal(t, "json", q.Get("file_type"))
			assert.Equal(t, "key&value", q.Get("api_key"))
		})
	}
}

func TestRedactURL(t *testing.T) {
	raw := CategoryChildrenURL("", "0", "supersecret")
	redacted := RedactURL(raw)

	assert.NotContains(t, redacted, "supersecret")
	assert.Contains(t, redacted, "api_key=REDACTED")
	assert.Contains(t, redacted, "category_id=0")

	assert.Equal(t, "http://x/fred?a=1", RedactURL("http://x/fred?a=1"))
	assert.Equal(t, "::not a url", RedactURL("::not a url"))
}
