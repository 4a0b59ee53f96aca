package cache

import (
	"net/url"
	"strconv"
)

// ListVariant identifies one search/page combination of a list path
func ListVariant(query string, page int) string {
	v := url.Values{}
	v.Set("query", query)
	v.Set("page", strconv.Itoa(page))
	return v.Encode()
}
