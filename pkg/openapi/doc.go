// Package openapi exports registered OpenC2 types as an OpenAPI 3 document
// and validates wire messages against the exported component schemas. The
// document is assembled as JSON and loaded through kin-openapi so consumers
// receive a resolved *openapi3.T.
package openapi
