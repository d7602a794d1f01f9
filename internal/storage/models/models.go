package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Candidate 候选人主表。九个抽取字段全部可空：
// 抽取结果是固定形态的记录，缺失的字段以NULL落库。
type Candidate struct {
	CandidateID    string    `gorm:"type:char(36);primaryKey" json:"candidate_id"`
	Name           *string   `gorm:"type:varchar(100);index:idx_candidates_name" json:"name"`
	Email          *string   `gorm:"type:varchar(100);index:idx_candidates_email" json:"email"`
	Phone          *string   `gorm:"type:varchar(20)" json:"phone"`
	College        *string   `gorm:"type:varchar(200)" json:"college"`
	Degree         *string   `gorm:"type:varchar(100)" json:"degree"`
	GraduationYear *int      `gorm:"type:int" json:"graduation_year"`
	Experience     *string   `gorm:"type:varchar(50)" json:"experience"`
	Location       *string   `gorm:"type:varchar(100)" json:"location"`
	Skills         *string   `gorm:"type:text" json:"skills"`
	Transcript     string    `gorm:"type:mediumtext" json:"transcript"`
	// 抽取引擎的原始输出快照，便于重放和排查
	RawExtraction datatypes.JSON `gorm:"type:json" json:"raw_extraction,omitempty"`
	CreatedAt     time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_candidates_created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// AudioSubmission 音频提交/处理状态表
type AudioSubmission struct {
	SubmissionUUID      string    `gorm:"type:char(36);primaryKey" json:"submission_uuid"`
	CandidateID         *string   `gorm:"type:char(36);index:idx_as_candidate_id" json:"candidate_id"`
	SubmissionTimestamp time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_as_submission_timestamp" json:"submission_timestamp"`
	OriginalFilename    string    `gorm:"type:varchar(255)" json:"original_filename"`
	AudioPathOSS        string    `gorm:"type:varchar(1024)" json:"audio_path_oss"`
	TranscriptPathOSS   string    `gorm:"type:varchar(1024)" json:"transcript_path_oss"`
	RawFileMD5          string    `gorm:"type:char(32);index:idx_as_raw_file_md5" json:"raw_file_md5"`
	ProcessingStatus    string    `gorm:"type:varchar(50);default:'PROCESSING';index:idx_as_processing_status" json:"processing_status"`
	ErrorMessage        string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)" json:"created_at"`
	UpdatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime" json:"updated_at"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

func (AudioSubmission) TableName() string {
	return "audio_submissions"
}

// MapToJSON 将map转换为datatypes.JSON
func MapToJSON(m map[string]interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// StructToJSON 将任意可序列化结构转换为datatypes.JSON
func StructToJSON(v interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
