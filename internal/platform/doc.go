package platform

// Package platform isolates OS-specific concerns: resolving the public
// downloads directory, sanitizing titles into legal filenames, and
// notifying the system media indexer about produced files.
