// Package models defines the records persisted by testbench and the
// request payloads accepted for them.
//
// Read models carry the JSON names of the public API. Create payloads hold
// the client-settable fields of a record; Update payloads use pointer fields
// so that only the fields present in a request body are written.
package models
