// Package schema mirrors the JSON written by the LDtk level editor for a
// single pinned format version (see JSONVersion).
//
// Every record decodes strictly: non-nullable keys must be present, values
// must have the declared JSON type, and the polymorphic parts of the format
// (field instance values and layer instance kinds) are selected by the tag
// LDtk stores next to them. Unknown tags are rejected. Unknown keys are
// ignored so that files saved by a newer editor patch release still load.
//
// Encoding a decoded record with encoding/json and decoding the result
// again yields an equal record.
package schema
