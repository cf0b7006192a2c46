// Package engine opens SQLite databases through the pure-Go modernc.org/sqlite
// driver with the vec_cosine SQL function registered, so
// embedding stores can rank terms inside a query.
package engine
