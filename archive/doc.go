// Package archive ships the index files of finished cycles to a
// blobstore.BlobStore and restores them.
//
// Each index file of a cycle becomes one compressed object named
// "<cycle>/index-<block><ext>", where ext names the codec. Index files are
// mostly zero until their block fills up, so they compress well.
//
// Archiving reads the files as they are on disk. Archive only cycles that
// are no longer appended to.
package archive
