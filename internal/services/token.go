package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/poofware/intake-service/internal/constants"
	"github.com/poofware/intake-service/internal/utils"
)

// ResolveURLParams collects the parameters a form URL carries: query
// parameters first, then fragment parameters for keys not already found.
// For repeated keys the first occurrence wins. When no formToken was found
// the last non-empty path segment is used if it is long enough.
func ResolveURLParams(u *url.URL) map[string]string {
	params := make(map[string]string)
	if u == nil {
		return params
	}

	addAll(params, u.RawQuery)

	if frag := u.EscapedFragment(); frag != "" {
		addAll(params, strings.TrimPrefix(frag, "?"))
	}

	if params[constants.TokenParam] == "" {
		if tok := tokenFromPath(u.Path); tok != "" {
			params[constants.TokenParam] = tok
		}
	}
	return params
}

// ResolveToken returns the form token carried by u, or "".
func ResolveToken(u *url.URL) string {
	return ResolveURLParams(u)[constants.TokenParam]
}

func addAll(dst map[string]string, raw string) {
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		if _, seen := dst[key]; seen {
			continue
		}
		dst[key] = val
	}
}

func tokenFromPath(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		seg, err := url.PathUnescape(segments[i])
		if err != nil {
			seg = segments[i]
		}
		if len(seg) > constants.MinPathTokenLength {
			return seg
		}
		return ""
	}
	return ""
}

// TokenSource yields the current token, "" while none is known yet.
type TokenSource func() string

// StaticToken is a TokenSource that always returns token.
func StaticToken(token string) TokenSource {
	return func() string { return token }
}

// AwaitToken polls src until it yields a token or grace elapses. The grace
// window absorbs clients that fill in the token asynchronously.
func AwaitToken(ctx context.Context, src TokenSource, grace time.Duration) (string, error) {
	if tok := src(); tok != "" {
		return tok, nil
	}

	deadline := time.NewTimer(grace)
	defer deadline.Stop()
	tick := time.NewTicker(constants.TokenPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			if tok := src(); tok != "" {
				return tok, nil
			}
			return "", utils.ErrNoToken
		case <-tick.C:
			if tok := src(); tok != "" {
				return tok, nil
			}
		}
	}
}
