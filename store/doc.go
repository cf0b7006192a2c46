// Package store keeps a word-embedding vocabulary in SQLite and answers
// neighbor queries in SQL with the vec_cosine function registered by the
// engine package.
package store
