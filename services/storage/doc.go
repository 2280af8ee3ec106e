/*
Package storage provides a transactional key/value interface used to persist herald state.

The usage pattern is a small number of whole-value reads and writes: values are opaque
byte slices, usually a versioned record produced by VersionJSONEncode.
A BoltDB backed implementation and an in-memory implementation for tests are provided.
*/
package storage
