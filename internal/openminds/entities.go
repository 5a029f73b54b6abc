package openminds

import "encoding/json"

// Organization is an institution, department or manufacturer.
type Organization struct {
	ID        string `json:"@id"`
	FullName  string `json:"fullName"`
	ShortName string `json:"shortName,omitempty"`
	HasParent *Ref   `json:"hasParent,omitempty"`
	parent    *Organization
}

func (o *Organization) EntityID() string   { return o.ID }
func (o *Organization) EntityType() string { return TypeOrganization }

// Parent returns the organization o is nested under, if any.
func (o *Organization) Parent() *Organization { return o.parent }

// ParentName returns the full name of the parent organization, if any.
func (o *Organization) ParentName() string {
	if o.parent == nil {
		return ""
	}
	return o.parent.FullName
}

// NewOrganization creates an organization with a fresh identifier.
func NewOrganization(fullName string) *Organization {
	return &Organization{ID: NewID(), FullName: fullName}
}

// SetParent nests o under parent.
func (o *Organization) SetParent(parent *Organization) {
	if parent == nil {
		o.HasParent = nil
		o.parent = nil
		return
	}
	ref := RefTo(parent)
	o.HasParent = &ref
	o.parent = parent
}

// File is one file of the dataset.
type File struct {
	ID          string          `json:"@id"`
	IRI         string          `json:"IRI"`
	Name        string          `json:"name"`
	ContentType *ControlledTerm `json:"format,omitempty"`
	Hash        *Hash           `json:"hash,omitempty"`
	StorageSize *Quantity       `json:"storageSize,omitempty"`
}

func (f *File) EntityID() string   { return f.ID }
func (f *File) EntityType() string { return TypeFile }

// MRIScanner is one physical acquisition device.
type MRIScanner struct {
	ID                    string             `json:"@id"`
	Name                  string             `json:"name"`
	LookupLabel           string             `json:"lookupLabel,omitempty"`
	SerialNumber          string             `json:"serialNumber,omitempty"`
	Manufacturer          *Organization      `json:"-"`
	Owner                 *Organization      `json:"-"`
	MagneticFieldStrength *Quantity          `json:"magneticFieldStrength,omitempty"`
	DigitalIdentifier     *DigitalIdentifier `json:"digitalIdentifier,omitempty"`
}

func (s *MRIScanner) EntityID() string   { return s.ID }
func (s *MRIScanner) EntityType() string { return TypeMRIScanner }

// ScannerUsage records one acquisition's device configuration.
type ScannerUsage struct {
	ID                             string          `json:"@id"`
	LookupLabel                    string          `json:"lookupLabel"`
	Device                         Ref             `json:"device"`
	AcquisitionType                *ControlledTerm `json:"acquisitionType,omitempty"`
	MTState                        *bool           `json:"MTState,omitempty"`
	DwellTime                      *Quantity       `json:"dwellTime,omitempty"`
	EchoTime                       *EchoTimes      `json:"echoTime,omitempty"`
	FlipAngle                      *Quantity       `json:"flipAngle,omitempty"`
	InversionTime                  *Quantity       `json:"inversionTime,omitempty"`
	NonlinearGradientCorrection    *bool           `json:"nonlinearGradientCorrection,omitempty"`
	NumberOfVolumesDiscardedByUser int             `json:"numberOfVolumesDiscardedByUser"`
	ParallelAcquisitionTechnique   string          `json:"parallelAcquisitionTechnique,omitempty"`
	PulseSequenceType              *ControlledTerm `json:"pulseSequenceType,omitempty"`
	MetadataLocations              []Ref           `json:"metadataLocation,omitempty"`
}

func (u *ScannerUsage) EntityID() string   { return u.ID }
func (u *ScannerUsage) EntityType() string { return TypeScannerUsage }

// FunctionalAcquisition summarizes one functional imaging run.
type FunctionalAcquisition struct {
	ID                  string     `json:"@id"`
	LookupLabel         string     `json:"lookupLabel"`
	Usage               Ref        `json:"usage"`
	Subject             string     `json:"subject,omitempty"`
	Session             string     `json:"session,omitempty"`
	Task                string     `json:"task,omitempty"`
	Run                 string     `json:"run,omitempty"`
	AcquisitionDuration *Quantity  `json:"acquisitionDuration,omitempty"`
	DelayAfterTrigger   *Quantity  `json:"delayAfterTrigger,omitempty"`
	DelayTime           *Quantity  `json:"delayTime,omitempty"`
	RepetitionTime      *Quantity  `json:"repetitionTime,omitempty"`
	VolumeTiming        []Quantity `json:"volumeTiming,omitempty"`
	Files               []Ref      `json:"files,omitempty"`
}

func (a *FunctionalAcquisition) EntityID() string   { return a.ID }
func (a *FunctionalAcquisition) EntityType() string { return TypeFunctionalAcquisition }

// MarshalJSON emits manufacturer and owner as references.
func (s *MRIScanner) MarshalJSON() ([]byte, error) {
	type plain MRIScanner
	out := struct {
		*plain
		Manufacturer *Ref `json:"manufacturer,omitempty"`
		Owner        *Ref `json:"owner,omitempty"`
	}{plain: (*plain)(s)}
	if s.Manufacturer != nil {
		ref := RefTo(s.Manufacturer)
		out.Manufacturer = &ref
	}
	if s.Owner != nil {
		ref := RefTo(s.Owner)
		out.Owner = &ref
	}
	return json.Marshal(out)
}
