package handler

import (
	"strings"
	"testing"

	"transcript-hr-go/internal/constants"
	"transcript-hr-go/internal/storage/models"
	"transcript-hr-go/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAudioUpload(t *testing.T) {
	ext, err := ValidateAudioUpload("interview.mp3", 1024)
	require.NoError(t, err)
	assert.Equal(t, ".mp3", ext)

	// 扩展名大小写不敏感
	ext, err = ValidateAudioUpload("Interview.WAV", 1024)
	require.NoError(t, err)
	assert.Equal(t, ".wav", ext)

	_, err = ValidateAudioUpload("resume.pdf", 1024)
	assert.Error(t, err, "非音频格式应被拒绝")

	_, err = ValidateAudioUpload("noext", 1024)
	assert.Error(t, err, "无扩展名应被拒绝")

	_, err = ValidateAudioUpload("interview.mp3", 0)
	assert.Error(t, err, "空文件应被拒绝")

	_, err = ValidateAudioUpload("interview.mp3", constants.MaxAudioFileSize+1)
	assert.Error(t, err, "超过大小限制应被拒绝")
}

func TestDropInvalidFields(t *testing.T) {
	badYear := 1800
	c := &models.Candidate{
		Name:           utils.StringPtr("Rahul Verma"),
		Email:          utils.StringPtr("not-an-email"),
		Phone:          utils.StringPtr("123"),
		GraduationYear: &badYear,
	}

	dropInvalidFields(c)

	require.NotNil(t, c.Name, "合法字段应保留")
	assert.Equal(t, "Rahul Verma", *c.Name)
	assert.Nil(t, c.Email, "非法邮箱应被丢弃")
	assert.Nil(t, c.Phone, "非法电话应被丢弃")
	assert.Nil(t, c.GraduationYear, "区间外年份应被丢弃")
}

func TestDropInvalidFieldsKeepsValid(t *testing.T) {
	year := 2019
	c := &models.Candidate{
		Name:           utils.StringPtr("Mary-Jane O'Brien"),
		Email:          utils.StringPtr("mj@example.com"),
		Phone:          utils.StringPtr("+91-9876543210"),
		GraduationYear: &year,
	}

	dropInvalidFields(c)

	assert.NotNil(t, c.Name)
	assert.NotNil(t, c.Email)
	assert.NotNil(t, c.Phone)
	assert.NotNil(t, c.GraduationYear)
}

func TestDropInvalidFieldsLongName(t *testing.T) {
	c := &models.Candidate{Name: utils.StringPtr(strings.Repeat("a", 60))}
	dropInvalidFields(c)
	assert.Nil(t, c.Name, "超长姓名应被丢弃")
}
