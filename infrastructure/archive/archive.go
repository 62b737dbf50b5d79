// Package archive stores captured plate images for registered
// identities under a date/identity prefix, mirroring the on-disk layout
// the capture stations used before S3.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"attendgate.com/attendgate/infrastructure/filesystem"
)

type S3Archiver struct {
	Bucket string
}

func NewS3Archiver(bucket string) *S3Archiver {
	return &S3Archiver{Bucket: bucket}
}

// Archive uploads one image and returns its object key, shaped as
// {date}/{identity}/{key}_{HH.MM}_{SS}.jpg.
func (a *S3Archiver) Archive(ctx context.Context, image []byte, identityID, key string, at time.Time) (string, error) {
	objectKey := fmt.Sprintf("%s/%s/%s_%s_%s.jpg",
		at.Format("2006-01-02"), identityID, key, at.Format("15.04"), at.Format("05"))

	if err := filesystem.WriteFile(a.Bucket, objectKey, ctx, bytes.NewReader(image), "image/jpeg"); err != nil {
		return "", err
	}
	return objectKey, nil
}
