package reconcile

import (
	"fmt"

	"bidsmeta/internal/logging"
	"bidsmeta/internal/metadata"
	"bidsmeta/internal/openminds"
)

// Candidate builds an unregistered scanner from the device fields of rec.
// A record without a model name yields a name derived from datasetName.
func (r *Registry) Candidate(rec metadata.Record, datasetName string) (*openminds.MRIScanner, error) {
	fields, err := r.texts(rec,
		metadata.PropManufacturer,
		metadata.PropModelName,
		metadata.PropSerialNumber,
		metadata.PropStationName,
		metadata.PropInstitutionName,
		metadata.PropDepartmentName,
	)
	if err != nil {
		return nil, err
	}

	candidate := &openminds.MRIScanner{
		Name:         fields[metadata.PropModelName],
		SerialNumber: fields[metadata.PropSerialNumber],
		LookupLabel:  fields[metadata.PropStationName],
	}
	if candidate.Name == "" {
		candidate.Name = FallbackScannerName(datasetName)
	}
	if manufacturer := fields[metadata.PropManufacturer]; manufacturer != "" {
		candidate.Manufacturer = openminds.NewOrganization(manufacturer)
	}
	candidate.Owner = r.owner(fields[metadata.PropInstitutionName], fields[metadata.PropDepartmentName])

	raw, err := metadata.Extract(rec, metadata.PropMagneticFieldStrength)
	if err != nil {
		return nil, err
	}
	if candidate.MagneticFieldStrength, err = r.normalizer.Quantity(raw, metadata.PropMagneticFieldStrength, fieldStrengthUnit); err != nil {
		return nil, err
	}
	return candidate, nil
}

// owner returns the organization owning the device. A department is nested
// under its institution.
func (r *Registry) owner(institution, department string) *openminds.Organization {
	if institution == "" && department == "" {
		return nil
	}
	if department == "" {
		return openminds.NewOrganization(institution)
	}
	if institution == "" {
		return openminds.NewOrganization(department)
	}
	name := department
	if r.opts.LegacyDepartmentNaming {
		name = institution
	}
	r.departmentNotice.Do(func() { r.noteDepartmentNaming(institution, department, name) })
	dept := openminds.NewOrganization(name)
	dept.SetParent(openminds.NewOrganization(institution))
	return dept
}

// noteDepartmentNaming records once per run which name department
// organizations receive. Older output repeated the institution name.
func (r *Registry) noteDepartmentNaming(institution, department, name string) {
	naming := "department"
	hint := "set conversion.legacy_department_naming to reproduce older output"
	impact := "department organizations are named differently from older output"
	if r.opts.LegacyDepartmentNaming {
		naming = "institution"
		hint = "unset conversion.legacy_department_naming to name departments after themselves"
		impact = "department organizations repeat the institution name"
	}
	logging.WarnWithContext(r.logger, "department organization naming", "department_naming",
		logging.Alert("department_naming"),
		logging.String("naming", naming),
		logging.String("institution", institution),
		logging.String("department", department),
		logging.String("organization", name),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, impact),
	)
}

func (r *Registry) texts(rec metadata.Record, props ...metadata.Property) (map[metadata.Property]string, error) {
	out := make(map[metadata.Property]string, len(props))
	for _, prop := range props {
		raw, err := metadata.Extract(rec, prop)
		if err != nil {
			return nil, err
		}
		out[prop] = r.normalizer.Text(raw)
	}
	return out, nil
}

// FallbackScannerName names a scanner whose model is unknown.
func FallbackScannerName(datasetName string) string {
	if datasetName == "" {
		return "MRI scanner"
	}
	return fmt.Sprintf("MRI scanner used in %s", datasetName)
}
