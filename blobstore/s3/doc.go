// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("snapshots/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = snapshot.Export(ctx, bitmap, store, "dataset.tcbm")
//
// # Features
//
//   - Range reads for streaming restores
//   - Multipart uploads for large snapshots
//   - CRC32C checksums on upload
//   - Automatic pagination for listing
package s3
