package stores

import (
	"os"

	"sharehub/core"
	"sharehub/stores/aws"
	"sharehub/stores/filesystem"
	"sharehub/stores/memory"
	"sharehub/stores/minio"
	"sharehub/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore selects the content store backend from STORAGE_TYPE. A nil
// return means no store is configured and file uploads are rejected with
// NoStorage; text sharing keeps working.
func GetStore() core.ContentStore {
	storageType := os.Getenv("STORAGE_TYPE")
	var store core.ContentStore

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "none":
		logrus.Info("No content store configured, file uploads disabled")
		return nil
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data"
		}
		storageField["basePath"] = basePath
		store = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "sharehub.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = bucketName
		store = aws.NewStore(bucketName)
	case "minio":
		cfg := minio.Config{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		}
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			logrus.Fatal("MINIO_ENDPOINT and MINIO_BUCKET must be set for minio storage type")
		}
		storageField["endpoint"] = cfg.Endpoint
		storageField["bucket"] = cfg.Bucket
		store = minio.NewStore(cfg)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use content storage")
	return store
}
