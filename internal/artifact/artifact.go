package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"flockscope/internal/config"
)

var ErrInvalidName = errors.New("invalid artifact name")

// Store keeps annotated videos on local disk and mirrors them to S3 when
// enabled.
type Store struct {
	dir      string
	bucket   string
	minioCli *minio.Client
}

func NewStore(dir string, s3 config.S3Config) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact dir failed: %w", err)
	}
	st := &Store{dir: dir}
	if !s3.Enabled {
		return st, nil
	}

	region := s3.Region
	if region == "" {
		region = "us-east-1"
	}
	minioCli, err := minio.New(s3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3.AccessKeyID, s3.SecretAccessKey, ""),
		Secure: s3.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	st.bucket = s3.Bucket
	st.minioCli = minioCli
	return st, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Resolve maps a download name to a file inside the artifact dir.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	p := s.Path(name)
	info, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q is a directory", ErrInvalidName, name)
	}
	return p, nil
}

func (s *Store) Remove(name string) error {
	p, err := s.Resolve(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.Remove(p)
}

func (s *Store) UploadEnabled() bool {
	return s.minioCli != nil
}

// Upload mirrors a local artifact to the bucket and returns its object path.
func (s *Store) Upload(ctx context.Context, name, objectPath string) (string, error) {
	if s.minioCli == nil {
		return "", nil
	}
	p, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := uploadFileToMinio(ctx, s.minioCli, s.bucket, p, objectPath); err != nil {
		return "", err
	}
	return objectPath, nil
}

func ContentType(localPath string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(localPath)), ".") {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "json":
		return "application/json"
	case "mp4":
		return "video/mp4"
	case "avi":
		return "video/avi"
	case "mov":
		return "video/quicktime"
	}
	return "application/octet-stream"
}

func uploadFileToMinio(ctx context.Context, minioCli *minio.Client, bucket, localPath, minioPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("get file info failed: %w", err)
	}

	_, err = minioCli.PutObject(
		ctx,
		bucket,
		strings.TrimPrefix(minioPath, "/"),
		file,
		fileInfo.Size(),
		minio.PutObjectOptions{
			ContentType: ContentType(localPath),
		},
	)
	if err != nil {
		return fmt.Errorf("put object to minio failed: %w", err)
	}

	return nil
}
