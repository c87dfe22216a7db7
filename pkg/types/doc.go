// Package types defines the connection configuration, sentinel errors, and
// error types shared by the rowkit schema, statement, connection, and
// entity packages.
package types
