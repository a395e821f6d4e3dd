package core

import (
	"context"
	"fmt"
	"os"

	blobcore "agricore/internal/blob/core"
	blobfs "agricore/internal/infra/blob/fs"
	blobmem "agricore/internal/infra/blob/memory"
	blobs3 "agricore/internal/infra/blob/s3"
)

// OpenBlobStore selects a blob backend using environment variables.
//
//	AGRICORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	AGRICORE_BLOB_FS_ROOT: directory root when driver=fs (default ./agricore-blobs)
//	(S3 variables documented in the s3 package)
func OpenBlobStore(ctx context.Context) (blobcore.Store, error) {
	driver := os.Getenv("AGRICORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(blobcore.DriverFilesystem)
	}
	switch blobcore.Driver(driver) {
	case blobcore.DriverFilesystem:
		return blobfs.New(os.Getenv("AGRICORE_BLOB_FS_ROOT"))
	case blobcore.DriverS3:
		return blobs3.OpenFromEnv(ctx)
	case blobcore.DriverMemory:
		return blobmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
