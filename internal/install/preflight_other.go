//go:build !unix

package install

// On Windows the consent prompt at copy time decides; report writable.
func writable(string) bool {
	return true
}
