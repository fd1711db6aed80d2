// Package jsonfile implements the AppStore port on top of a single JSON file.
//
// The whole collection is rewritten on every mutation. Writes go to a
// temporary file in the same directory which is synced and renamed over the
// previous file, so readers and crash recovery only ever see a complete
// collection.
package jsonfile
