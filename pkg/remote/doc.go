// Package remote defines the contracts the authoring engine consumes (source
// fetching, asset upload, document persistence, preview refresh) together
// with an HTTP client, a directory backed store and a location based
// fetcher.
//
// Persistence failures surface as *StatusError so callers can tell an expired
// session (IsUnauthorized) from a permission problem (IsForbidden); Describe
// turns either into a user facing message.
package remote
