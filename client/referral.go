package client

import (
	"context"
	"net/url"
	"time"
)

// AmbientSource reads a referral value from a third-party affiliate tracker
// whose script may not have loaded yet. Implementations return "" until a
// value is available.
type AmbientSource func() string

// ReferralResolver captures the session referral id: the page URL's query
// string wins, otherwise the ambient tracker is polled for a bounded time.
type ReferralResolver struct {
	params  url.Values
	ambient AmbientSource
	wait    time.Duration
}

// NewReferralResolver builds a resolver from the checkout page URL. An
// unparseable URL behaves as if it carried no query parameters.
func NewReferralResolver(pageURL string, ambient AmbientSource) *ReferralResolver {
	params := url.Values{}
	if u, err := url.Parse(pageURL); err == nil {
		params = u.Query()
	}
	return &ReferralResolver{
		params:  params,
		ambient: ambient,
		wait:    time.Second,
	}
}

// Resolve returns the referral id, or "" if none was found within the wait
// window. The first non-empty value wins; callers freeze it for the session.
func (r *ReferralResolver) Resolve(ctx context.Context) string {
	for _, key := range []string{"ref", "referral"} {
		if v := r.params.Get(key); v != "" {
			return v
		}
	}

	if r.ambient == nil {
		return ""
	}
	if v := r.ambient(); v != "" {
		return v
	}

	// The tracker script may still be loading; check once more after a
	// bounded delay.
	timer := time.NewTimer(r.wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ""
	case <-timer.C:
		return r.ambient()
	}
}
