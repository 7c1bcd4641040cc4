// Package storage provides the client's durable key-value store, kept in a
// local SQLite file so that session state survives restarts.
package storage
