package crossfile

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// DefaultRepository hosts the upstream cross file templates.
const DefaultRepository = "https://raw.githubusercontent.com/JalonWong/mcu_meson"

// Kind classifies how a reference is obtained.
type Kind int

const (
	KindLocal Kind = iota
	KindURL
	KindMain
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindURL:
		return "url"
	case KindMain:
		return "main"
	case KindTag:
		return "tag"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reference is a parsed cross file reference.
type Reference struct {
	Raw      string
	Kind     Kind
	Revision string
	// Name is the file name the reference is stored under.
	Name string
	// Location is the local path (KindLocal) or the download URL.
	Location string
}

// Remote reports whether the reference must be downloaded.
func (r Reference) Remote() bool {
	return r.Kind != KindLocal
}

// ReferenceError reports a malformed reference.
type ReferenceError struct {
	Raw    string
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid cross file reference %q: %s", e.Raw, e.Reason)
}

// Repository expands shorthand references into raw-content URLs.
type Repository struct {
	Base string
}

func (r Repository) base() string {
	base := strings.TrimRight(strings.TrimSpace(r.Base), "/")
	if base == "" {
		return DefaultRepository
	}
	return base
}

// MainURL returns the URL of name on the main branch.
func (r Repository) MainURL(name string) string {
	return r.base() + "/refs/heads/main/" + name
}

// TagURL returns the URL of name at a pinned revision.
func (r Repository) TagURL(revision, name string) string {
	return r.base() + "/refs/tags/" + revision + "/" + name
}

// Parse classifies raw as one of the supported reference shapes.
func (r Repository) Parse(raw string) (Reference, error) {
	ref := Reference{Raw: raw}
	value := strings.TrimSpace(raw)
	if value == "" {
		return ref, &ReferenceError{Raw: raw, Reason: "empty reference"}
	}

	switch {
	case strings.HasPrefix(value, "main:"):
		name := strings.TrimPrefix(value, "main:")
		if err := validateName(name); err != "" {
			return ref, &ReferenceError{Raw: raw, Reason: err}
		}
		ref.Kind = KindMain
		ref.Name = path.Base(name)
		ref.Location = r.MainURL(name)
	case strings.HasPrefix(value, "tag:"):
		rest := strings.TrimPrefix(value, "tag:")
		revision, name, ok := strings.Cut(rest, ":")
		if !ok {
			return ref, &ReferenceError{Raw: raw, Reason: "expected tag:<revision>:<name>"}
		}
		if revision == "" {
			return ref, &ReferenceError{Raw: raw, Reason: "missing revision"}
		}
		if err := validateName(name); err != "" {
			return ref, &ReferenceError{Raw: raw, Reason: err}
		}
		ref.Kind = KindTag
		ref.Revision = revision
		ref.Name = path.Base(name)
		ref.Location = r.TagURL(revision, name)
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		u, err := url.Parse(value)
		if err != nil {
			return ref, &ReferenceError{Raw: raw, Reason: err.Error()}
		}
		name := path.Base(u.Path)
		if name == "" || name == "/" || name == "." {
			return ref, &ReferenceError{Raw: raw, Reason: "url has no file name"}
		}
		ref.Kind = KindURL
		ref.Name = name
		ref.Location = value
	default:
		ref.Kind = KindLocal
		ref.Name = filepath.Base(value)
		ref.Location = value
	}
	return ref, nil
}

func validateName(name string) string {
	if name == "" {
		return "missing file name"
	}
	if strings.HasSuffix(name, "/") {
		return "file name ends with a slash"
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "file name must not contain .."
		}
	}
	return ""
}

// ParseAll parses refs in order and rejects lists where two references
// would be stored under the same name.
func (r Repository) ParseAll(refs []string) ([]Reference, error) {
	parsed := make([]Reference, 0, len(refs))
	seen := make(map[string]string, len(refs))
	for _, raw := range refs {
		ref, err := r.Parse(raw)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[ref.Name]; ok {
			return nil, &ReferenceError{Raw: raw, Reason: fmt.Sprintf("file name %s already used by %q", ref.Name, prev)}
		}
		seen[ref.Name] = raw
		parsed = append(parsed, ref)
	}
	return parsed, nil
}
