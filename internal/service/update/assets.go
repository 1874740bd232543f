package update

import "strings"

// UpdateSuffixes maps a target platform to the file-name suffixes of the
// update artifact and its detached signature. An unrecognized target yields
// empty suffixes, which callers must reject as an invalid target. The arch
// argument is reserved for per-architecture artifacts and is not used by the
// current matching rule.
func UpdateSuffixes(target, _ string) (string, string) {
	switch strings.ToLower(target) {
	case "mac", "macos", "darwin":
		return ".app.tar.gz", ".app.tar.gz.sig"
	case "linux":
		return ".AppImage.tar.gz", ".AppImage.tar.gz.sig"
	case "windows":
		return ".nsis.zip", ".nsis.zip.sig"
	}

	return "", ""
}

// InstallSuffix maps a target platform to the file-name suffix of the plain
// installer binary.
func InstallSuffix(target, _ string) string {
	switch strings.ToLower(target) {
	case "mac", "macos", "darwin":
		return ".dmg"
	case "linux":
		return ".AppImage"
	case "windows":
		return "-setup.exe"
	}

	return ""
}
