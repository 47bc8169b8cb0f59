// Package analyzer walks a repository tree and produces an analysis report.
//
// # Traversal
//
// A single depth-first walk (lexical order) visits every entry under the
// root. Ignore decisions are taken on the walking goroutine before a
// directory is entered, so an ignored subtree is never read:
//
//	node_modules/        -> FileEntry{Role: ignored}, subtree pruned
//	app.py               -> classified by name, dispatched to a worker
//	bin/run (symlink)    -> FileEntry{Role: unknown}, listed as skipped
//
// # Workers
//
// Regular files are handed to a bounded errgroup pool. Workers open the file
// inside the root, read a head or a whole manifest, sniff shebangs and parse
// manifests. Each worker sends its finding to one collector goroutine; the
// report builder is only touched after all workers finish, in discovery
// order, so repeated runs over the same tree produce the same report.
//
// # Errors
//
// Only a missing or unreadable root is an error. Everything below the root
// degrades into the report (unknown roles, skipped paths, partial
// manifests). A cancelled context aborts the walk and returns ctx.Err()
// without a report.
package analyzer
