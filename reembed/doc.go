// Package reembed re-embeds the documents already stored in a collection
// with the currently configured embedding model.
//
// Entries are walked in ID order in fixed size batches. Each batch is
// embedded with retry and exponential backoff and written back with Upsert,
// so document, metadata and fingerprint are kept while the vector is
// replaced. Progress is written to an io.Writer. The retry and progress
// helpers are shared with the event refresh job.
package reembed
