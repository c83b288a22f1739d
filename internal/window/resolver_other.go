//go:build !windows
// +build !windows

package window

// Window enumeration by owning process is only implemented for Windows.
// Other platforms report no candidates so callers take the primary-display
// capture fallback.
func enumCandidates(processName string) ([]candidate, error) {
	return nil, nil
}
