package storage

import "time"

// AudioUploadedMessage 音频上传完成后发布到消息队列的事件，
// 消费者据此驱动"转写→抽取→入库"流水线。
type AudioUploadedMessage struct {
	SubmissionUUID      string    `json:"submission_uuid"`
	OriginalFilename    string    `json:"original_filename"`
	AudioPathOSS        string    `json:"audio_path_oss"` // MinIO对象键
	RawFileMD5          string    `json:"raw_file_md5"`
	SubmissionTimestamp time.Time `json:"submission_timestamp"`
}
