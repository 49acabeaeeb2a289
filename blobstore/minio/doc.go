// Package minio stores archived cycles on MinIO or any other S3-compatible
// server (Ceph, Garage, SeaweedFS) through the MinIO client.
//
//	store, err := minio.New("localhost:9000", "queue-archive",
//	    minio.WithCredentials("minioadmin", "minioadmin"),
//	    minio.WithPrefix("prod/"),
//	)
//	arch := archive.New(store)
package minio
