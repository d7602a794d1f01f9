package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Transcriber 语音转写能力接口
type Transcriber interface {
	// TranscribeFromFile 转写本地音频文件
	TranscribeFromFile(ctx context.Context, filePath string) (string, error)

	// TranscribeFromReader 从io.Reader转写音频内容
	TranscribeFromReader(ctx context.Context, reader io.Reader, fileName string) (string, error)

	// TranscribeFromBytes 从字节数组转写音频内容
	TranscribeFromBytes(ctx context.Context, data []byte, fileName string) (string, error)
}

// WhisperTranscriber 是基于Whisper ASR服务的转写器
type WhisperTranscriber struct {
	// Whisper服务地址，例如 http://localhost:9000
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 语言代码（如"en"、"hi"），为空时由服务端自动检测
	language string
	// 日志记录
	logger *log.Logger
}

// WhisperOption 定义配置选项函数
type WhisperOption func(*WhisperTranscriber)

// WithLanguage 配置转写语言，为空时自动检测
func WithLanguage(language string) WhisperOption {
	return func(t *WhisperTranscriber) {
		t.language = language
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) WhisperOption {
	return func(t *WhisperTranscriber) {
		t.Client.Timeout = timeout
	}
}

// WithWhisperLogger 配置自定义日志记录器
func WithWhisperLogger(logger *log.Logger) WhisperOption {
	return func(t *WhisperTranscriber) {
		t.logger = logger
	}
}

// 确保WhisperTranscriber实现了Transcriber接口
var _ Transcriber = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber 创建一个新的Whisper转写器
func NewWhisperTranscriber(serverURL string, options ...WhisperOption) *WhisperTranscriber {
	// 音频转写耗时较长，默认超时放宽到10分钟
	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	transcriber := &WhisperTranscriber{
		ServerURL: serverURL,
		Client:    client,
		logger:    log.New(os.Stderr, "[Whisper] ", log.LstdFlags),
	}

	for _, option := range options {
		option(transcriber)
	}

	return transcriber
}

// TranscribeFromFile 转写本地音频文件
func (t *WhisperTranscriber) TranscribeFromFile(ctx context.Context, filePath string) (string, error) {
	startTime := time.Now()
	t.logger.Printf("开始处理音频文件: %s", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("打开音频文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, err := file.Stat(); err == nil {
		t.logger.Printf("音频文件大小: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}

	transcript, err := t.TranscribeFromReader(ctx, file, filePath)

	duration := time.Since(startTime)
	if err != nil {
		t.logger.Printf("音频转写失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", err
	}

	t.logger.Printf("音频转写完成: 转写了 %d 个字符 (用时 %.2f秒)", len(transcript), duration.Seconds())
	return transcript, nil
}

// TranscribeFromReader 从io.Reader转写音频内容
func (t *WhisperTranscriber) TranscribeFromReader(ctx context.Context, reader io.Reader, fileName string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取音频内容失败: %w", err)
	}
	return t.TranscribeFromBytes(ctx, data, fileName)
}

// TranscribeFromBytes 从字节数组转写音频内容
func (t *WhisperTranscriber) TranscribeFromBytes(ctx context.Context, data []byte, fileName string) (string, error) {
	startTime := time.Now()

	// 构建multipart请求体
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", fileName)
	if err != nil {
		return "", fmt.Errorf("构建multipart请求失败: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("写入音频数据失败: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("关闭multipart写入器失败: %w", err)
	}

	// 构建请求URL - 纯文本输出模式
	query := url.Values{}
	query.Set("task", "transcribe")
	query.Set("output", "txt")
	if t.language != "" {
		query.Set("language", t.language)
	}
	reqURL := fmt.Sprintf("%s/asr?%s", t.ServerURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, &body)
	if err != nil {
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "text/plain")

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("发送请求到Whisper服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper服务返回错误状态码: %d", resp.StatusCode)
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取Whisper响应失败: %w", err)
	}

	transcript := strings.TrimSpace(string(textBytes))
	if transcript == "" {
		t.logger.Printf("转写结果为空 (文件: %s)", fileName)
	}

	t.logger.Printf("转写完成: %d 个字符 (用时 %.2f秒)", len(transcript), time.Since(startTime).Seconds())
	return transcript, nil
}
