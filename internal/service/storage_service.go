package service

import (
	"context"
	"curriculum_backend/internal/config"
	"curriculum_backend/internal/util"
	"curriculum_backend/pkg/logger"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	storage "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error)
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) path(filename string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	return dst, nil
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst, err := p.path(filename)
	if err != nil {
		return "", err
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	dst, err := p.path(filename)
	if err != nil {
		return "", err
	}
	if localPath == dst {
		return p.GetURL(filename), nil
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return p.Upload(ctx, filename, src, -1, contentType)
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Config.MinioBucket, filename, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(filename, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObjectFromFile(filename, localPath, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, filename)
}

// SupabaseStorageProvider Supabase Storage 实现，返回公开访问地址
type SupabaseStorageProvider struct {
	Config *config.StorageConfig
	Client *storage.Client
}

func NewSupabaseStorageProvider(cfg *config.StorageConfig) (*SupabaseStorageProvider, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client := storage.NewClient(strings.TrimSuffix(cfg.SupabaseURL, "/")+"/storage/v1", cfg.SupabaseKey, nil)
	return &SupabaseStorageProvider{Config: cfg, Client: client}, nil
}

func (p *SupabaseStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.UploadFile(p.Config.SupabaseBucket, filename, reader, storage.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *SupabaseStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return p.Upload(ctx, filename, src, -1, contentType)
}

func (p *SupabaseStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimSuffix(p.Config.SupabaseURL, "/"), p.Config.SupabaseBucket, filename)
}

// UploadResult 上传结果；视频附带时长
type UploadResult struct {
	URL             string `json:"url"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// StorageService 封面图片与课时视频的上传
type StorageService struct {
	Provider StorageProvider
	Cfg      *config.StorageConfig

	// probe 获取视频时长，测试中可替换
	probe func(path string) (int, error)
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	var err error
	switch cfg.Storage.Type {
	case util.StorageMinio:
		provider, err = NewMinioStorageProvider(&cfg.Storage)
	case util.StorageOSS:
		provider, err = NewOSSStorageProvider(&cfg.Storage)
	case util.StorageSupabase:
		provider, err = NewSupabaseStorageProvider(&cfg.Storage)
	}
	if err != nil {
		logger.Log.Warn("存储初始化失败，回退到本地存储", zap.String("type", cfg.Storage.Type), zap.Error(err))
		provider = nil
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider, Cfg: &cfg.Storage, probe: util.ProbeDurationSeconds}
}

func (s *StorageService) maxBytes() int64 {
	if s.Cfg == nil || s.Cfg.MaxUploadMB <= 0 {
		return 0
	}
	return s.Cfg.MaxUploadMB << 20
}

// sniff 校验扩展名、大小与内容类型，返回完整内容的 reader
func (s *StorageService) sniff(filename string, r io.Reader, size int64, exts []string, mimePrefix string) (io.Reader, string, error) {
	if !util.HasAllowedExtension(filename, exts) {
		return nil, "", util.NewValidationError("file", fmt.Sprintf("extension %q is not allowed", filepath.Ext(filename)))
	}
	if limit := s.maxBytes(); limit > 0 && size > limit {
		return nil, "", util.NewValidationError("file", fmt.Sprintf("file exceeds %d MB", s.Cfg.MaxUploadMB))
	}
	return util.SniffContentType(filename, r, mimePrefix)
}

func objectKey(dir, filename string) string {
	return dir + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// UploadImage 上传课程封面等图片
func (s *StorageService) UploadImage(ctx context.Context, filename string, r io.Reader, size int64) (*UploadResult, error) {
	body, mime, err := s.sniff(filename, r, size, util.AllowedImageExtensions, util.MimeImage)
	if err != nil {
		return nil, err
	}
	url, err := s.Provider.Upload(ctx, objectKey("images", filename), body, size, mime)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return &UploadResult{URL: url}, nil
}

// UploadVideo 先落到临时文件获取时长，再上传
func (s *StorageService) UploadVideo(ctx context.Context, filename string, r io.Reader, size int64) (*UploadResult, error) {
	body, mime, err := s.sniff(filename, r, size, util.AllowedVideoExtensions, util.MimeVideo)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "lesson-video-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	duration := 0
	if s.probe != nil {
		if duration, err = s.probe(tmp.Name()); err != nil {
			logger.Log.Warn("获取视频时长失败", zap.String("file", filename), zap.Error(err))
			duration = 0
		}
	}

	url, err := s.Provider.UploadFile(ctx, objectKey("videos", filename), tmp.Name(), mime)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}
	return &UploadResult{URL: url, DurationSeconds: duration}, nil
}
