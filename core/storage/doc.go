// Package storage provides an abstraction layer for the object store behind the CDN.
//
// It wraps the MinIO Go client so listing photos can live on AWS S3 or a self-hosted
// MinIO instance. The Client interface keeps only the operations the CDN uses, which
// keeps core/storage/mocks small for unit tests.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
