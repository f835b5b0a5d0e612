package validation

// ErrorCode identifies a validation finding. Codes are stable; the message text
// for each code lives in the formatter catalog.
type ErrorCode string

const (
	// Record level
	E1002 ErrorCode = "E1002" // root already exists
	E1007 ErrorCode = "E1007" // uid duplicated in payload
	E1030 ErrorCode = "E1030" // event already exists
	E1032 ErrorCode = "E1032" // event not found
	E1033 ErrorCode = "E1033" // event enrollment not found
	E1048 ErrorCode = "E1048" // invalid uid
	E1063 ErrorCode = "E1063" // root not found
	E1068 ErrorCode = "E1068" // enrollment root not found
	E1080 ErrorCode = "E1080" // enrollment already exists
	E1081 ErrorCode = "E1081" // enrollment not found
	E1121 ErrorCode = "E1121" // missing root property
	E1122 ErrorCode = "E1122" // missing enrollment property
	E1123 ErrorCode = "E1123" // missing event property
	E1304 ErrorCode = "E1304" // duplicated data element

	// Rule engine
	E1200 ErrorCode = "E1200"
	E1300 ErrorCode = "E1300"
	E1301 ErrorCode = "E1301"
	E1302 ErrorCode = "E1302"
	E1303 ErrorCode = "E1303"
	E1305 ErrorCode = "E1305"

	// Relationships
	E4000 ErrorCode = "E4000" // links to itself
	E4001 ErrorCode = "E4001" // unresolvable item
	E4002 ErrorCode = "E4002" // missing property
	E4012 ErrorCode = "E4012" // item not found
	E4015 ErrorCode = "E4015" // already exists
	E4016 ErrorCode = "E4016" // not found

	// E5000 is the dependency rejection raised by the persistability filter.
	E5000 ErrorCode = "E5000"
)

// messageTemplates holds the English catalog. Every argument is rendered to a
// string before substitution.
var messageTemplates = map[ErrorCode]string{
	E1002: "TrackedEntity: `%s`, already exists.",
	E1007: "%s: `%s`, is duplicated in the payload.",
	E1030: "Event: `%s`, already exists.",
	E1032: "Event: `%s`, does not exist.",
	E1033: "Event: `%s`, Enrollment `%s` does not exist.",
	E1048: "Object: `%s`, uid: `%s`, has an invalid uid format.",
	E1063: "TrackedEntity: `%s`, does not exist.",
	E1068: "Could not find TrackedEntity: `%s`, linked to Enrollment.",
	E1080: "Enrollment: `%s`, already exists.",
	E1081: "Enrollment: `%s`, does not exist.",
	E1121: "Missing required tracked entity property: `%s`.",
	E1122: "Missing required enrollment property: `%s`.",
	E1123: "Missing required event property: `%s`.",
	E1304: "DataElement: `%s`, is captured more than once in Event: `%s`.",
	E1200: "Rule engine error: `%s`.",
	E1300: "Generated by program rule (`%s`) - `%s`",
	E1301: "Generated by program rule (`%s`) - `%s`",
	E1302: "Generated by program rule (`%s`) - `%s`",
	E1303: "Generated by program rule (`%s`) - `%s`",
	E1305: "Generated by program rule (`%s`) - Mandatory DataElement `%s` is not present",
	E4000: "Relationship: `%s` cannot link to itself.",
	E4001: "Relationship Item `%s` for Relationship `%s` is invalid: an Item must link exactly one Tracker entity.",
	E4002: "Missing required relationship property: `%s`.",
	E4012: "Could not find `%s`: `%s`, linked to Relationship.",
	E4015: "Relationship: `%s`, already exists.",
	E4016: "Relationship: `%s`, does not exist.",
	E5000: "%s `%s` cannot be persisted because referenced %s `%s` is not persistable.",
}
