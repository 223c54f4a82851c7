package stash

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	graphql "github.com/hasura/go-graphql-client"

	"github.com/stashapp/stash/pkg/plugin/common"
)

// sanitize removes null JSON properties from GraphQL request bodies. The
// models input types serialize every unset pointer as null, which Stash
// treats as "clear this field".
func sanitize(req *http.Request) {
	if req.Method != http.MethodPost || req.Body == nil {
		return
	}

	if req.Header.Get("Content-Type") != "application/json" {
		return
	}

	bodyBytes, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		return
	}

	var data interface{}
	if err := json.Unmarshal(bodyBytes, &data); err != nil {
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		return
	}

	cleanedBytes, err := json.Marshal(dropNulls(data))
	if err != nil {
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		return
	}

	req.Body = io.NopCloser(bytes.NewReader(cleanedBytes))
	req.ContentLength = int64(len(cleanedBytes))
}

// dropNulls recursively removes null map values
func dropNulls(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		cleaned := make(map[string]interface{}, len(val))
		for k, v2 := range val {
			if v2 == nil {
				continue
			}
			cleaned[k] = dropNulls(v2)
		}
		return cleaned
	case []interface{}:
		for i, v2 := range val {
			val[i] = dropNulls(v2)
		}
		return val
	default:
		return val
	}
}

// NewClient creates a sanitizing GraphQL client for an explicit endpoint
func NewClient(endpoint string, httpClient graphql.Doer, options ...graphql.ClientOption) *graphql.Client {
	return graphql.NewClient(endpoint, httpClient, options...).WithRequestModifier(sanitize)
}

// Client creates a graphql Client connecting to the stash server using
// the plugin's server connection and session cookie.
func Client(provider common.StashServerConnection) *graphql.Client {
	scheme := provider.Scheme
	if scheme == "" {
		scheme = "http"
	}
	u := &url.URL{
		Scheme: scheme,
		Host:   provider.Host + ":" + strconv.Itoa(provider.Port),
		Path:   "/graphql",
	}

	cookieJar, _ := cookiejar.New(nil)
	if provider.SessionCookie != nil {
		cookieJar.SetCookies(u, []*http.Cookie{provider.SessionCookie})
	}

	return NewClient(u.String(), &http.Client{Jar: cookieJar})
}
