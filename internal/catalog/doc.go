// Package catalog collects the entities produced by a conversion run and
// persists them.
//
// Collection is the in-memory sink every builder emits into. WriteJSONLD
// serializes a collection as one JSON-LD document. Store keeps a history of
// runs and their entities in SQLite; it is an archive only and is never
// consulted when reconciling a new run.
package catalog
