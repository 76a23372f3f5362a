package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/google/uuid"
)

// Archiver keeps a copy of a note that is about to be deleted.
type Archiver interface {
	Archive(ctx context.Context, v *models.NoteView) error
}

// s3PutObject is the subset of *s3.Client the archiver uses.
type s3PutObject interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3PutObject {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Archiver writes the transport form of deleted notes to an S3-compatible
// bucket. Only ciphertext and plaintext metadata leave the server, exactly as
// clients already see them.
type S3Archiver struct {
	bucket string
	client s3PutObject
	now    func() time.Time
}

// NewS3Archiver builds an archiver from the S3 settings of cfg.
func NewS3Archiver(ctx context.Context, cfg *sc.Config) (*S3Archiver, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Archiver{bucket: cfg.S3Bucket, client: client, now: time.Now}, nil
}

// ArchiveKey returns a unique object key for note id archived at t.
func ArchiveKey(id uint64, t time.Time) string {
	return fmt.Sprintf("notes/%d/%02d/%02d/%d-%s.json", t.Year(), t.Month(), t.Day(), id, uuid.New())
}

func (a *S3Archiver) Archive(ctx context.Context, v *models.NoteView) error {
	body, err := json.Marshal(NoteToWire(v))
	if err != nil {
		return fmt.Errorf("encode note %d: %w", v.Note.ID, err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ArchiveKey(v.Note.ID, a.now().UTC())),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive note %d: %w", v.Note.ID, err)
	}
	return nil
}
