// Package server implements the HTTP handlers for docshare: signup and
// login against the credential store, multipart uploads into MinIO, and
// token-gated downloads. It wires together the routes, dependencies
// (database, MinIO client), and lifecycle helpers used by tests and the
// production binary.
package server
