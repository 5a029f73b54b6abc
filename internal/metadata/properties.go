package metadata

import (
	"errors"
	"fmt"
	"sort"
)

// ErrConfiguration reports a canonical property the table does not know.
var ErrConfiguration = errors.New("configuration error")

// Property is a canonical (output schema) property name.
type Property string

const (
	PropManufacturer                   Property = "manufacturer"
	PropModelName                      Property = "modelName"
	PropSerialNumber                   Property = "serialNumber"
	PropStationName                    Property = "stationName"
	PropMagneticFieldStrength          Property = "magneticFieldStrength"
	PropInstitutionName                Property = "institutionName"
	PropInstitutionAddress             Property = "institutionAddress"
	PropDepartmentName                 Property = "departmentName"
	PropAcquisitionType                Property = "acquisitionType"
	PropMTState                        Property = "MTState"
	PropDwellTime                      Property = "dwellTime"
	PropEchoTime                       Property = "echoTime"
	PropEchoTime1                      Property = "echoTime1"
	PropEchoTime2                      Property = "echoTime2"
	PropFlipAngle                      Property = "flipAngle"
	PropInversionTime                  Property = "inversionTime"
	PropNonlinearGradientCorrection    Property = "nonlinearGradientCorrection"
	PropNumberOfVolumesDiscardedByUser Property = "numberOfVolumesDiscardedByUser"
	PropParallelAcquisitionTechnique   Property = "parallelAcquisitionTechnique"
	PropPulseSequenceType              Property = "pulseSequenceType"
	PropRepetitionTime                 Property = "repetitionTime"
	PropAcquisitionDuration            Property = "acquisitionDuration"
	PropDelayAfterTrigger              Property = "delayAfterTrigger"
	PropDelayTime                      Property = "delayTime"
	PropVolumeTiming                   Property = "volumeTiming"
	PropTaskName                       Property = "taskName"
)

// nativeNames maps canonical properties to BIDS sidecar keys.
var nativeNames = map[Property]string{
	PropManufacturer:                   "Manufacturer",
	PropModelName:                      "ManufacturersModelName",
	PropSerialNumber:                   "DeviceSerialNumber",
	PropStationName:                    "StationName",
	PropMagneticFieldStrength:          "MagneticFieldStrength",
	PropInstitutionName:                "InstitutionName",
	PropInstitutionAddress:             "InstitutionAddress",
	PropDepartmentName:                 "InstitutionalDepartmentName",
	PropAcquisitionType:                "MRAcquisitionType",
	PropMTState:                        "MTState",
	PropDwellTime:                      "DwellTime",
	PropEchoTime:                       "EchoTime",
	PropEchoTime1:                      "EchoTime1",
	PropEchoTime2:                      "EchoTime2",
	PropFlipAngle:                      "FlipAngle",
	PropInversionTime:                  "InversionTime",
	PropNonlinearGradientCorrection:    "NonlinearGradientCorrection",
	PropNumberOfVolumesDiscardedByUser: "NumberOfVolumesDiscardedByUser",
	PropParallelAcquisitionTechnique:   "ParallelAcquisitionTechnique",
	PropPulseSequenceType:              "PulseSequenceType",
	PropRepetitionTime:                 "RepetitionTime",
	PropAcquisitionDuration:            "AcquisitionDuration",
	PropDelayAfterTrigger:              "DelayAfterTrigger",
	PropDelayTime:                      "DelayTime",
	PropVolumeTiming:                   "VolumeTiming",
	PropTaskName:                       "TaskName",
}

var canonicalNames = func() map[string]Property {
	out := make(map[string]Property, len(nativeNames))
	for prop, native := range nativeNames {
		if _, dup := out[native]; dup {
			panic(fmt.Sprintf("metadata: native field %q mapped twice", native))
		}
		out[native] = prop
	}
	return out
}()

// NativeName returns the sidecar key for prop.
func NativeName(prop Property) (string, error) {
	native, ok := nativeNames[prop]
	if !ok {
		return "", fmt.Errorf("%w: unknown canonical property %q", ErrConfiguration, prop)
	}
	return native, nil
}

// PropertyFor returns the canonical property for a sidecar key.
func PropertyFor(native string) (Property, bool) {
	prop, ok := canonicalNames[native]
	return prop, ok
}

// Properties lists every canonical property in sorted order.
func Properties() []Property {
	out := make([]Property, 0, len(nativeNames))
	for prop := range nativeNames {
		out = append(out, prop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
