package model

import "strings"

// Chemistry identifies the cell technology. It drives the default voltage
// bounds and the safe nominal voltage used by emergency restarts.
type Chemistry string

const (
	ChemistryLFP Chemistry = "lfp"
	ChemistryNMC Chemistry = "nmc"
	ChemistryNCA Chemistry = "nca"
	ChemistryLTO Chemistry = "lto"
)

// VoltageProfile holds the chemistry-dependent voltage bounds in volts.
type VoltageProfile struct {
	Min     float64
	Max     float64
	Nominal float64
}

var (
	lfpProfile  = VoltageProfile{Min: 2.8, Max: 3.6, Nominal: 3.2}
	highProfile = VoltageProfile{Min: 3.2, Max: 4.0, Nominal: 3.6}
)

// Profile returns the voltage bounds for the chemistry. Unknown chemistries
// use the higher voltage profile.
func (c Chemistry) Profile() VoltageProfile {
	if c == ChemistryLFP {
		return lfpProfile
	}
	return highProfile
}

// Valid reports whether the chemistry is one of the known tags.
func (c Chemistry) Valid() bool {
	switch c {
	case ChemistryLFP, ChemistryNMC, ChemistryNCA, ChemistryLTO:
		return true
	}
	return false
}

func (c Chemistry) String() string { return string(c) }

// InferChemistry derives a chemistry from a cell id when none was given
// explicitly. Ids carrying an "lfp" tag map to LFP, everything else to the
// higher voltage profile chemistries via NMC.
func InferChemistry(id string) Chemistry {
	if strings.Contains(strings.ToLower(id), string(ChemistryLFP)) {
		return ChemistryLFP
	}
	return ChemistryNMC
}
