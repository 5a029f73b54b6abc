package dataset

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"bidsmeta/internal/catalog"
	"bidsmeta/internal/fileutil"
	"bidsmeta/internal/logging"
	"bidsmeta/internal/media/nifti"
	"bidsmeta/internal/openminds"
	"bidsmeta/internal/terms"
)

// Content types of non-image files, keyed by extension.
var contentTypes = map[string]string{
	".json":   "application/json",
	".tsv":    "text/tab-separated-values",
	".tsv.gz": "application/gzip",
	".bval":   "text/plain",
	".bvec":   "text/plain",
}

// RegisterFiles emits one file entity per dataset file and records its
// identifier for FileRef. It is meant to be called once per run.
func (d *Dataset) RegisterFiles(sink catalog.Sink) error {
	byteUnit, err := d.units.ByName("byte")
	if err != nil {
		return fmt.Errorf("register files: %w", err)
	}
	for _, rel := range d.files {
		abs := filepath.Join(d.root, filepath.FromSlash(rel))
		size, err := fileutil.Size(abs)
		if err != nil {
			return fmt.Errorf("register %s: %w", rel, err)
		}

		entity := &openminds.File{
			ID:          openminds.NewID(),
			IRI:         rel,
			Name:        path.Base(rel),
			StorageSize: &openminds.Quantity{Value: float64(size), Unit: byteUnit},
		}
		if term, ok := d.contentType(rel, abs, size); ok {
			entity.ContentType = &term
		}
		if d.hash {
			digest, _, err := fileutil.Digest(abs, fileutil.AlgorithmMD5)
			if err != nil {
				return fmt.Errorf("register %s: %w", rel, err)
			}
			entity.Hash = &openminds.Hash{Algorithm: fileutil.AlgorithmMD5, Digest: digest}
		}
		if err := sink.Add(entity); err != nil {
			return fmt.Errorf("register %s: %w", rel, err)
		}
		d.mu.Lock()
		d.refs[rel] = openminds.RefTo(entity)
		d.mu.Unlock()
	}
	d.logger.Debug("files registered", logging.Int("file_count", len(d.files)))
	return nil
}

func (d *Dataset) contentType(rel, abs string, size int64) (terms.Term, bool) {
	var name string
	if ext := nifti.ExtensionOf(rel); ext != "" {
		name = nifti.Detect(abs, ext, size).ContentType()
	} else {
		name = contentTypes[strings.ToLower(ParseEntities(rel).Extension)]
	}
	if name == "" {
		return terms.Term{}, false
	}
	term, err := d.terms.ByName(terms.SetContentType, name)
	if err != nil {
		d.logger.Debug("content type not registered",
			logging.String("file", rel),
			logging.String("content_type", name),
		)
		return terms.Term{}, false
	}
	return term, true
}

// FileRef returns the entity reference registered for rel.
func (d *Dataset) FileRef(rel string) (openminds.Ref, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ref, ok := d.refs[rel]
	return ref, ok
}
