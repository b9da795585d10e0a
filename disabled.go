//go:build noaspect

package aspect

// Enabled reports whether interception is compiled in. This build was made
// with -tags noaspect, so proxies call straight through without running
// any aspect.
const Enabled = false
