package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	MaxAvatarSize       = 5 * 1024 * 1024
	avatarUploadExpiry  = time.Hour
	tempAvatarKeyPrefix = "temp/avatars/"
)

var avatarContentTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// AvatarUploadRequest describes the file a client intends to upload.
type AvatarUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
}

// AvatarUploadTicket lets the client PUT the file straight to the bucket.
type AvatarUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	TempKey   string `json:"tempKey"`
	ExpiresIn int    `json:"expiresIn"`
}

// AvatarStore keeps uploaded avatars. Uploads land under a temporary key
// and are moved to the user's folder once the profile update confirms them.
type AvatarStore interface {
	PresignUpload(ctx context.Context, req AvatarUploadRequest) (*AvatarUploadTicket, error)
	Confirm(ctx context.Context, userID uint, tempKey string) (string, error)
	Discard(ctx context.Context, tempKey string) error
}

func validateAvatarFile(req AvatarUploadRequest) error {
	valid := false
	for _, ct := range avatarContentTypes {
		if req.ContentType == ct {
			valid = true
			break
		}
	}
	if !valid || req.FileSize <= 0 || req.FileSize > MaxAvatarSize {
		return invalid("Invalid avatar file type or size")
	}
	return nil
}

func isTempAvatarKey(key string) bool {
	return strings.HasPrefix(key, tempAvatarKeyPrefix) && !strings.Contains(key, "..")
}

func tempAvatarKey(fileName string, now time.Time) string {
	return fmt.Sprintf("%s%d_%s%s", tempAvatarKeyPrefix, now.Unix(), uuid.New().String(), filepath.Ext(fileName))
}

func avatarKey(userID uint, tempKey string, now time.Time) string {
	return fmt.Sprintf("users/%d/avatar/%d_avatar%s", userID, now.Unix(), filepath.Ext(tempKey))
}

// S3API is the part of the S3 client the avatar store needs.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3AvatarStore keeps avatars in an S3-compatible bucket such as Cloudflare R2.
type S3AvatarStore struct {
	Client    S3API
	Presigner S3Presigner
	Bucket    string
	PublicURL string
	now       func() time.Time
}

func NewS3AvatarStore(client *s3.Client, bucket, publicURL string) *S3AvatarStore {
	return &S3AvatarStore{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		PublicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

func (s *S3AvatarStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *S3AvatarStore) PresignUpload(ctx context.Context, req AvatarUploadRequest) (*AvatarUploadTicket, error) {
	key := tempAvatarKey(req.FileName, s.clock())
	presigned, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = avatarUploadExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("presign avatar upload: %w", err)
	}
	return &AvatarUploadTicket{
		UploadURL: presigned.URL,
		TempKey:   key,
		ExpiresIn: int(avatarUploadExpiry.Seconds()),
	}, nil
}

// Confirm moves an uploaded temporary object into the user's folder and
// returns its public URL.
func (s *S3AvatarStore) Confirm(ctx context.Context, userID uint, tempKey string) (string, error) {
	_, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(tempKey),
	})
	if err != nil {
		return "", notFound("Temporary avatar file not found")
	}

	key := avatarKey(userID, tempKey, s.clock())
	_, err = s.Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.Bucket),
		CopySource: aws.String(fmt.Sprintf("%s/%s", s.Bucket, tempKey)),
		Key:        aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("copy avatar: %w", err)
	}
	if err := s.Discard(ctx, tempKey); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.PublicURL, key), nil
}

func (s *S3AvatarStore) Discard(ctx context.Context, tempKey string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(tempKey),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", tempKey, err)
	}
	return nil
}
