package dataset

import (
	"path"
	"strings"
)

// Datatypes recognized as the directory holding a data file.
var knownDatatypes = map[string]struct{}{
	"anat": {},
	"func": {},
	"dwi":  {},
	"fmap": {},
	"perf": {},
	"beh":  {},
}

// Entities are the key-value pairs and suffix encoded in a BIDS file name.
type Entities struct {
	Subject     string
	Session     string
	Task        string
	Acquisition string
	Run         string
	Echo        string
	Datatype    string
	Suffix      string
	Extension   string
	// Other keeps entities without a dedicated field, such as dir or rec.
	Other map[string]string
}

// ParseEntities parses a slash-separated path relative to the dataset root.
func ParseEntities(rel string) Entities {
	dir, base := path.Split(rel)
	var e Entities

	stem := base
	if idx := strings.Index(base, "."); idx >= 0 {
		stem = base[:idx]
		e.Extension = base[idx:]
	}

	parts := strings.Split(stem, "_")
	for i, part := range parts {
		key, value, ok := strings.Cut(part, "-")
		if !ok {
			if i == len(parts)-1 {
				e.Suffix = part
			}
			continue
		}
		e.set(key, value)
	}

	if parent := path.Base(strings.TrimSuffix(dir, "/")); parent != "" {
		if _, ok := knownDatatypes[parent]; ok {
			e.Datatype = parent
		}
	}
	return e
}

func (e *Entities) set(key, value string) {
	switch key {
	case "sub":
		e.Subject = value
	case "ses":
		e.Session = value
	case "task":
		e.Task = value
	case "acq":
		e.Acquisition = value
	case "run":
		e.Run = value
	case "echo":
		e.Echo = value
	default:
		if e.Other == nil {
			e.Other = make(map[string]string)
		}
		e.Other[key] = value
	}
}

// pairs returns the key-value entities that are set.
func (e Entities) pairs() map[string]string {
	out := make(map[string]string, 6+len(e.Other))
	for key, value := range map[string]string{
		"sub":  e.Subject,
		"ses":  e.Session,
		"task": e.Task,
		"acq":  e.Acquisition,
		"run":  e.Run,
		"echo": e.Echo,
	} {
		if value != "" {
			out[key] = value
		}
	}
	for key, value := range e.Other {
		out[key] = value
	}
	return out
}

// appliesTo reports whether a file with entities e (a sidecar or companion)
// describes target: the suffix matches and every entity e sets has the same
// value on target.
func (e Entities) appliesTo(target Entities) bool {
	if e.Suffix != target.Suffix {
		return false
	}
	want := target.pairs()
	for key, value := range e.pairs() {
		if want[key] != value {
			return false
		}
	}
	return true
}

// Stem returns the file name without its extension.
func Stem(rel string) string {
	base := path.Base(rel)
	if idx := strings.Index(base, "."); idx >= 0 {
		return base[:idx]
	}
	return base
}
