package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWhisperTranscriber(t *testing.T) {
	tr := NewWhisperTranscriber("http://localhost:9000")
	require.NotNil(t, tr, "创建的转写器不应为nil")
	require.NotNil(t, tr.Client, "转写器应该有默认的HTTP客户端")
	require.NotNil(t, tr.logger, "转写器应该有默认的logger")

	// 测试选项函数
	tr = NewWhisperTranscriber("http://localhost:9000",
		WithLanguage("en"),
		WithTimeout(30*time.Second))
	assert.Equal(t, "en", tr.language, "应该使用配置的语言")
	assert.Equal(t, 30*time.Second, tr.Client.Timeout, "应该使用配置的超时")
}

func TestTranscribeFromBytes(t *testing.T) {
	// 模拟Whisper ASR服务
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/asr", r.URL.Path)
		assert.Equal(t, "transcribe", r.URL.Query().Get("task"))
		assert.Equal(t, "txt", r.URL.Query().Get("output"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("audio_file")
		require.NoError(t, err, "请求应包含audio_file表单字段")
		assert.Equal(t, "interview.mp3", header.Filename)

		w.Write([]byte("My name is Rahul Verma.\n"))
	}))
	defer server.Close()

	tr := NewWhisperTranscriber(server.URL)
	transcript, err := tr.TranscribeFromBytes(context.Background(), []byte("fake-audio"), "interview.mp3")
	require.NoError(t, err, "转写不应返回错误")
	assert.Equal(t, "My name is Rahul Verma.", transcript, "转写结果应去除首尾空白")
}

func TestTranscribeFromBytesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := NewWhisperTranscriber(server.URL)
	_, err := tr.TranscribeFromBytes(context.Background(), []byte("fake-audio"), "interview.mp3")
	require.Error(t, err, "服务端错误应向上传递")
	assert.Contains(t, err.Error(), "状态码")
}

func TestTranscribeLanguageParameter(t *testing.T) {
	var gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLanguage = r.URL.Query().Get("language")
		w.Write([]byte("ok text"))
	}))
	defer server.Close()

	tr := NewWhisperTranscriber(server.URL, WithLanguage("hi"))
	_, err := tr.TranscribeFromBytes(context.Background(), []byte("fake-audio"), "a.wav")
	require.NoError(t, err)
	assert.Equal(t, "hi", gotLanguage, "语言参数应被传递给服务端")
}
