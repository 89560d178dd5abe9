package fred

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the root of the FRED REST API
	BaseURL = "https://api.stlouisfed.org/fred"

	// CategoryChildrenEndpoint lists the direct children of a category
	CategoryChildrenEndpoint = "/category/children"

	// RootCategoryID is the top of the FRED category tree
	RootCategoryID = "0"
)

// CategoryChildrenURL constructs the URL for fetching the children of a
// category as JSON.
func CategoryChildrenURL(baseURL, categoryID, apiKey string) string {
	if baseURL == "" {
		baseURL = BaseURL
	}
	params := url.Values{}
	params.Set("category_id", categoryID)
	params.Set("file_type", "json")
	params.Set("api_key", apiKey)

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), CategoryChildrenEndpoint, params.Encode())
}

// RedactURL masks the api_key query parameter so URLs can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("api_key") == "" {
		return raw
	}
	q.Set("api_key", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
