package models

import (
	"strings"

	dErrors "tracker/pkg/domain-errors"
)

// IdScheme selects which identifier of a metadata object is shown to the client.
type IdScheme string

const (
	IdSchemeUID  IdScheme = "UID"
	IdSchemeCode IdScheme = "CODE"
	IdSchemeName IdScheme = "NAME"
)

// ParseIdScheme validates s case-insensitively. Empty input means UID.
func ParseIdScheme(s string) (IdScheme, error) {
	if s == "" {
		return IdSchemeUID, nil
	}
	scheme := IdScheme(strings.ToUpper(s))
	switch scheme {
	case IdSchemeUID, IdSchemeCode, IdSchemeName:
		return scheme, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid idScheme: "+s)
}

// MetadataType names the metadata families that can appear in messages.
type MetadataType string

const (
	MetadataOrgUnit      MetadataType = "OrganisationUnit"
	MetadataProgram      MetadataType = "Program"
	MetadataProgramStage MetadataType = "ProgramStage"
	MetadataDataElement  MetadataType = "DataElement"
)

// IdSchemeParams is the identifier rendering configuration of an import.
// Unset per-type schemes fall back to Default, and an unset Default means UID.
type IdSchemeParams struct {
	Default      IdScheme
	OrgUnit      IdScheme
	Program      IdScheme
	ProgramStage IdScheme
	DataElement  IdScheme
}

// SchemeFor returns the effective scheme for a metadata type.
func (p IdSchemeParams) SchemeFor(t MetadataType) IdScheme {
	var scheme IdScheme
	switch t {
	case MetadataOrgUnit:
		scheme = p.OrgUnit
	case MetadataProgram:
		scheme = p.Program
	case MetadataProgramStage:
		scheme = p.ProgramStage
	case MetadataDataElement:
		scheme = p.DataElement
	}
	if scheme != "" {
		return scheme
	}
	if p.Default != "" {
		return p.Default
	}
	return IdSchemeUID
}

// MetadataObject is a metadata reference passed as a message argument.
type MetadataObject struct {
	Type MetadataType
	UID  string
	Code string
	Name string
}

// Render picks the identifier selected by params, falling back to the uid when
// the selected identifier is empty.
func (m MetadataObject) Render(params IdSchemeParams) string {
	switch params.SchemeFor(m.Type) {
	case IdSchemeCode:
		if m.Code != "" {
			return m.Code
		}
	case IdSchemeName:
		if m.Name != "" {
			return m.Name
		}
	}
	return m.UID
}
