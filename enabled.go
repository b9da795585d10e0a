//go:build !noaspect

package aspect

// Enabled reports whether interception is compiled in. Build with
// -tags noaspect to turn every proxy into a direct call.
const Enabled = true
