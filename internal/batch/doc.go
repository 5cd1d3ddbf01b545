// Package batch models the result of processing a single item of a sequential
// batch, distinguishing an item that is kept from one that is skipped and from a
// failure that aborts the whole batch.
package batch
