// Package openminds defines the typed entities emitted into the output
// metadata graph: quantities, controlled terms, organizations, files, MRI
// scanners, scanner usages and functional acquisitions.
//
// Entities reference each other through Ref values rather than embedding,
// so a scanner shared by thousands of usages is serialized once. Every
// entity carries a blank-node identifier ("_:<uuid>") and a schema type IRI.
package openminds
