package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"transcript-hr-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadAudioFile 流式上传音频文件并同时计算MD5，返回对象键与MD5
	UploadAudioFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error)

	// GetAudioFile 按对象键下载音频文件
	GetAudioFile(ctx context.Context, objectKey string) ([]byte, error)

	// UploadTranscript 上传转写文本，返回对象键
	UploadTranscript(ctx context.Context, submissionUUID string, text string) (string, error)

	// GetTranscript 按对象键下载转写文本
	GetTranscript(ctx context.Context, objectKey string) (string, error)

	// GetAudioPresignedURL 获取音频文件的预签名URL
	GetAudioPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)

	// DeleteAudioFile 删除音频文件
	DeleteAudioFile(ctx context.Context, objectKey string) error
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client           *minio.Client
	cfg              *config.MinIOConfig
	audioBucket      string
	transcriptBucket string
	logger           *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing client: endpoint=%s, audioBucket=%s, transcriptBucket=%s",
		cfg.Endpoint, cfg.AudioBucket, cfg.TranscriptBucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	audioBucket := cfg.AudioBucket
	if audioBucket == "" {
		audioBucket = "interview-audio"
	}
	transcriptBucket := cfg.TranscriptBucket
	if transcriptBucket == "" {
		transcriptBucket = "interview-transcripts"
	}

	m := &MinIO{
		client:           client,
		cfg:              cfg,
		audioBucket:      audioBucket,
		transcriptBucket: transcriptBucket,
		logger:           logger,
	}

	if err := m.ensureBucketExists(audioBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保音频存储桶 %s 存在失败: %w", audioBucket, err)
	}
	if err := m.ensureBucketExists(transcriptBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保转写文本存储桶 %s 存在失败: %w", transcriptBucket, err)
	}

	// 设置生命周期规则
	if cfg.AudioExpireDays > 0 || cfg.TranscriptExpireDays > 0 {
		if err := m.setupLifecycleRules(context.Background()); err != nil {
			logger.Printf("[MinIO] Warning: failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created.", bucketName)
	}
	return nil
}

// setupLifecycleRules 设置对象生命周期规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.AudioExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.audioBucket, "expire-audio", m.cfg.AudioExpireDays); err != nil {
			return fmt.Errorf("为音频存储桶 %s 设置生命周期失败: %w", m.audioBucket, err)
		}
	}
	if m.cfg.TranscriptExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.transcriptBucket, "expire-transcripts", m.cfg.TranscriptExpireDays); err != nil {
			return fmt.Errorf("为转写文本存储桶 %s 设置生命周期失败: %w", m.transcriptBucket, err)
		}
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置生命周期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lifecycleConfig := lifecycle.NewConfiguration()
	lifecycleConfig.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	if err := m.client.SetBucketLifecycle(ctx, bucketName, lifecycleConfig); err != nil {
		return err
	}
	m.logger.Printf("[MinIO] Lifecycle rule %s set for bucket %s (%d days).", ruleID, bucketName, expiryDays)
	return nil
}

// UploadAudioFile 流式上传音频文件并同时计算MD5。
// 对象键格式: audio/{submissionUUID}/original{ext}
func (m *MinIO) UploadAudioFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, string, error) {
	objectName := fmt.Sprintf("audio/%s/original%s", submissionUUID, fileExt)
	contentType := audioContentType(fileExt)

	// TeeReader让上传与MD5计算共用一次流读取
	md5Hash := md5.New()
	teeReader := io.TeeReader(reader, md5Hash)

	info, err := m.client.PutObject(ctx, m.audioBucket, objectName, teeReader,
		fileSize, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("上传音频文件 %s 到存储桶 %s 失败: %w", objectName, m.audioBucket, err)
	}

	md5Hex := hex.EncodeToString(md5Hash.Sum(nil))
	m.logger.Printf("[MinIO] Uploaded audio %s (size=%d, etag=%s, md5=%s)", objectName, info.Size, info.ETag, md5Hex)
	return objectName, md5Hex, nil
}

// GetAudioFile 按对象键下载音频文件
func (m *MinIO) GetAudioFile(ctx context.Context, objectKey string) ([]byte, error) {
	return m.downloadObject(ctx, m.audioBucket, objectKey)
}

// UploadTranscript 上传转写文本。
// 对象键格式: audio/{submissionUUID}/transcript.txt
func (m *MinIO) UploadTranscript(ctx context.Context, submissionUUID string, text string) (string, error) {
	objectName := fmt.Sprintf("audio/%s/transcript.txt", submissionUUID)

	_, err := m.client.PutObject(ctx, m.transcriptBucket, objectName, strings.NewReader(text),
		int64(len(text)), minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return "", fmt.Errorf("上传转写文本 %s 到存储桶 %s 失败: %w", objectName, m.transcriptBucket, err)
	}
	return objectName, nil
}

// GetTranscript 按对象键下载转写文本
func (m *MinIO) GetTranscript(ctx context.Context, objectKey string) (string, error) {
	data, err := m.downloadObject(ctx, m.transcriptBucket, objectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetAudioPresignedURL 获取音频文件的预签名URL
func (m *MinIO) GetAudioPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.audioBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

// DeleteAudioFile 删除音频文件
func (m *MinIO) DeleteAudioFile(ctx context.Context, objectKey string) error {
	err := m.client.RemoveObject(ctx, m.audioBucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除对象 %s 失败: %w", objectKey, err)
	}
	return nil
}

// downloadObject 下载对象的通用实现
func (m *MinIO) downloadObject(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	// Stat确认对象确实存在（GetObject本身是惰性的）
	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, objectKey, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectKey, err)
	}
	return data, nil
}

// audioContentType 按扩展名返回音频内容类型
func audioContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".mp4":
		return "video/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}
