package reconcile

import (
	"fmt"
	"log/slog"
	"sync"

	"bidsmeta/internal/catalog"
	"bidsmeta/internal/logging"
	"bidsmeta/internal/metadata"
	"bidsmeta/internal/openminds"
)

const fieldStrengthUnit = "tesla"

// Options adjusts candidate construction.
type Options struct {
	// LegacyDepartmentNaming names a department organization after its
	// institution instead of the department field.
	LegacyDepartmentNaming bool
}

type orgKey struct {
	fullName string
	parent   string
}

// Registry is the run-scoped working set of scanners. Resolve calls are
// serialized, so concurrent callers never register the same device twice.
type Registry struct {
	mu         sync.Mutex
	sink       catalog.Sink
	normalizer *metadata.Normalizer
	logger     *slog.Logger
	opts       Options

	scanners []*openminds.MRIScanner
	orgs     map[orgKey]*openminds.Organization

	departmentNotice sync.Once
}

// NewRegistry builds an empty registry emitting into sink.
func NewRegistry(sink catalog.Sink, normalizer *metadata.Normalizer, logger *slog.Logger, opts Options) *Registry {
	if normalizer == nil {
		normalizer = metadata.NewNormalizer(nil, nil)
	}
	return &Registry{
		sink:       sink,
		normalizer: normalizer,
		logger:     logging.NewComponentLogger(logger, "reconcile"),
		opts:       opts,
		orgs:       make(map[orgKey]*openminds.Organization),
	}
}

// Reconcile returns the scanner described by rec, registering it when no
// known scanner matches.
func (r *Registry) Reconcile(rec metadata.Record, datasetName string) (*openminds.MRIScanner, error) {
	candidate, err := r.Candidate(rec, datasetName)
	if err != nil {
		return nil, err
	}
	scanner, _, err := r.Resolve(candidate)
	return scanner, err
}

// Resolve returns the first registered scanner matching candidate, in
// registration order. Otherwise candidate is registered, emitted and
// returned with created set.
func (r *Registry) Resolve(candidate *openminds.MRIScanner) (scanner *openminds.MRIScanner, created bool, err error) {
	if candidate == nil {
		return nil, false, fmt.Errorf("reconcile: nil candidate")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.scanners {
		if same, rule := sameDevice(existing, candidate); same {
			r.logger.Debug("scanner matched",
				logging.String("scanner", existing.Name),
				logging.String("rule", rule),
			)
			return existing, false, nil
		}
	}

	if candidate.ID == "" {
		candidate.ID = openminds.NewID()
	}
	if candidate.Manufacturer, err = r.internOrganization(candidate.Manufacturer); err != nil {
		return nil, false, err
	}
	if candidate.Owner, err = r.internOrganization(candidate.Owner); err != nil {
		return nil, false, err
	}
	if err := r.sink.Add(candidate); err != nil {
		return nil, false, fmt.Errorf("emit scanner %q: %w", candidate.Name, err)
	}
	r.scanners = append(r.scanners, candidate)
	r.logger.Info("scanner registered",
		logging.String("scanner", candidate.Name),
		logging.String("serial_number", candidate.SerialNumber),
		logging.Int("scanner_count", len(r.scanners)),
	)
	return candidate, true, nil
}

// internOrganization returns the registered organization equal to org
// (same full name under the same parent), registering org and its parent
// chain when new.
func (r *Registry) internOrganization(org *openminds.Organization) (*openminds.Organization, error) {
	if org == nil {
		return nil, nil
	}
	key := orgKey{fullName: org.FullName, parent: org.ParentName()}
	if existing, ok := r.orgs[key]; ok {
		return existing, nil
	}
	if org.Parent() != nil {
		parent, err := r.internOrganization(org.Parent())
		if err != nil {
			return nil, err
		}
		org.SetParent(parent)
	}
	if err := r.sink.Add(org); err != nil {
		return nil, fmt.Errorf("emit organization %q: %w", org.FullName, err)
	}
	r.orgs[key] = org
	return org, nil
}

// Scanners returns the registered scanners in registration order.
func (r *Registry) Scanners() []*openminds.MRIScanner {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*openminds.MRIScanner(nil), r.scanners...)
}

// Len returns the number of registered scanners.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scanners)
}
