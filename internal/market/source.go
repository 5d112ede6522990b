package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// maxBodySize caps how much of a provider response is read
const maxBodySize = 1 << 20

const userAgent = "finbot-backend/1.0"

// getJSON performs an HTTP GET bound to ctx and decodes the JSON body into an
// untyped document suitable for jsonpath queries
func getJSON(ctx context.Context, client *http.Client, addr string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}

	var doc any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

// lookup evaluates path against doc. jsonpath is never clear about whether it
// returns a list of one answer or the answer itself, so the first element of a
// list is kept.
func lookup(doc any, path string) (any, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("jsonpath %q: %w", path, err)
	}
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("jsonpath %q: no match", path)
		}
		val = list[0]
	}
	return val, nil
}

// lookupDecimal evaluates path and converts the result to a decimal
func lookupDecimal(doc any, path string) (decimal.Decimal, error) {
	val, err := lookup(doc, path)
	if err != nil {
		return decimal.Zero, err
	}

	switch v := val.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", "."))
		if err != nil {
			return decimal.Zero, fmt.Errorf("jsonpath %q: %q is not a number", path, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("jsonpath %q: unexpected value %v", path, val)
	}
}

// lookupTime evaluates an optional RFC 3339 timestamp path, falling back to now
func lookupTime(doc any, path string, now time.Time) time.Time {
	if path == "" {
		return now
	}
	val, err := lookup(doc, path)
	if err != nil {
		return now
	}
	s, ok := val.(string)
	if !ok {
		return now
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return now
	}
	return t
}
