package toolchain

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// gccVersionRegex matches the version in the banner line, e.g.
// "arm-none-eabi-gcc (Arm GNU Toolchain 13.2.rel1 (Build arm-13.7)) 13.2.1 20231009".
var gccVersionRegex = regexp.MustCompile(`\) ([\d.]+) `)

// ParseGCCVersion extracts the compiler version from "--version" output.
func ParseGCCVersion(output string) (string, bool) {
	match := gccVersionRegex.FindStringSubmatch(output)
	if match == nil {
		return "", false
	}
	version := strings.Trim(match[1], ".")
	if version == "" {
		return "", false
	}
	return version, true
}

// MajorVersion returns the leading numeric component of version.
func MajorVersion(version string) (int, bool) {
	parts := numericParts(version)
	if len(parts) == 0 {
		return 0, false
	}
	return parts[0], true
}

// AtLeast reports whether version is greater than or equal to minimum.
func AtLeast(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if version == "" {
		return false
	}

	v, m := "v"+version, "v"+minimum
	if semver.IsValid(v) && semver.IsValid(m) {
		return semver.Compare(v, m) >= 0
	}

	vParts := numericParts(version)
	mParts := numericParts(minimum)
	for len(vParts) < len(mParts) {
		vParts = append(vParts, 0)
	}
	for len(mParts) < len(vParts) {
		mParts = append(mParts, 0)
	}
	for i := range vParts {
		if vParts[i] > mParts[i] {
			return true
		}
		if vParts[i] < mParts[i] {
			return false
		}
	}
	return true
}

func numericParts(version string) []int {
	var parts []int
	current := strings.Builder{}
	for _, r := range version {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			val, _ := strconv.Atoi(current.String())
			parts = append(parts, val)
			current.Reset()
		}
	}
	if current.Len() > 0 {
		val, _ := strconv.Atoi(current.String())
		parts = append(parts, val)
	}
	return parts
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimRight(text[:idx], "\r")
	}
	return text
}

// VersionLine returns the first non-empty line of a version banner.
func VersionLine(output string) string {
	return firstLine(strings.TrimSpace(output))
}
