package dentalink

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/keviinplz/go-dentalink/query"
)

// uriSafe lists the reserved characters the API expects to see unescaped
// inside the q parameter, matching JavaScript's encodeURI.
const uriSafe = "@#$&()*!+=:;,?/'"

const upperhex = "0123456789ABCDEF"

// makeURI builds the full request URI for an endpoint, appending the
// filter query as ?q=<encoded JSON> when one is present.
func (c *Client) makeURI(endpoint string, q *query.Query) (string, error) {
	if q.IsEmpty() {
		return c.baseURL + endpoint, nil
	}

	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("failed to encode filter query: %w", err)
	}

	return c.baseURL + endpoint + "?q=" + encodeURI(string(data)), nil
}

// encodeURI percent-encodes s, letting unreserved characters and the
// uriSafe set through and escaping everything else byte by byte.
func encodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreserved(ch) || strings.IndexByte(uriSafe, ch) >= 0 {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[ch>>4])
		b.WriteByte(upperhex[ch&0xF])
	}

	return b.String()
}

func isUnreserved(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '-', ch == '_', ch == '.', ch == '~':
		return true
	}
	return false
}
