// Package embedding defines the contract between the neighbor reporter and
// whatever serves word vectors: the Space interface, the Neighbor result
// entry and the two failure kinds a run can end with.
package embedding
