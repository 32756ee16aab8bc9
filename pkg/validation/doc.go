// Package validation checks an OpenAPI document with kin-openapi.
//
// The serving path never validates; documents are read best-effort. This
// package backs the "validate" command, which reports structural problems
// and checks that every synthesized mock body satisfies the response it was
// generated for.
package validation
