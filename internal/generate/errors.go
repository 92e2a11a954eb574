package generate

import "strconv"

// dependencyUnavailableError signals a missing or disabled runtime (no llama
// build tag, no API key, backend "none") so callers can degrade instead of fail.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}

// invalidOptionsError reports decoding options outside the accepted range.
type invalidOptionsError struct{ msg string }

func (e invalidOptionsError) Error() string { return "invalid generation options: " + e.msg }

// IsInvalidOptions reports whether err was produced by Options.Validate.
func IsInvalidOptions(err error) bool {
	_, ok := err.(invalidOptionsError)
	return ok
}

// runtimeError wraps a non-2xx response from a remote runtime.
type runtimeError struct {
	status int
	body   string
}

func (e runtimeError) Error() string {
	return "runtime http error: " + strconv.Itoa(e.status) + ": " + e.body
}

// StatusCode exposes the upstream status for diagnostics.
func (e runtimeError) StatusCode() int { return e.status }
