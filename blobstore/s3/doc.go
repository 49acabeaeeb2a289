// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("queue-archive/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	arch := archive.New(store)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart streaming uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix for sharing a bucket between stores
package s3
