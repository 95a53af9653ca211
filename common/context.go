package common

type contextKey int

// HTTPClientKey carries an *http.Client override for outgoing requests.
// Used by tests and by sources that need a family-pinned dialer.
const HTTPClientKey contextKey = iota
