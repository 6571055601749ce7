// Package writers serializes wire records (pkg/api v1) to an output stream.
//
// Each format registers a Streamer in init(); callers either push records
// through Start's channel or hand a finished batch to Write. Batch formats
// (json, yaml) buffer until the channel closes; line formats (jsonl, tsv,
// fasta) write as records arrive.
package writers
