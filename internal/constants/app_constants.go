package constants

import "time"

const (
	// 应用级常量
	ServiceName       = "transcript-hr-go"
	DefaultASRModel   = "tiny" // whisper默认模型，追求转写速度
	DefaultAPIVersion = "v1"

	// 提交处理状态
	StatusProcessing       = "PROCESSING"
	StatusTranscribing     = "TRANSCRIBING"
	StatusExtracting       = "EXTRACTING"
	StatusCompleted        = "COMPLETED"
	StatusFailed           = "FAILED"
	StatusDuplicateSkipped = "DUPLICATE_FILE_SKIPPED"

	// 音频文件限制
	MaxAudioFileSize = 500 * 1024 * 1024 // 500MB

	// Redis相关的过期时间
	AudioMD5SetDefaultExpire = 365 * 24 * time.Hour
	ExtractionCacheDuration  = 24 * time.Hour
)

// AllowedAudioExtensions 允许上传的音频文件扩展名
var AllowedAudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".mp4":  true,
	".ogg":  true,
	".flac": true,
	".webm": true,
}
