package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "张*", MaskPII("张三"))
	assert.Equal(t, "王*明", MaskPII("王小明"))

	masked := MaskPII("someone@example.com")
	assert.Equal(t, "so", masked[:2], "应保留前2个字符")
	assert.Equal(t, "om", masked[len(masked)-2:], "应保留后2个字符")
	assert.Contains(t, masked, "***")
	assert.NotContains(t, masked, "example", "中间部分应被掩码")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10), "未超长时应原样返回")

	long := strings.Repeat("x", 300)
	truncated := TruncateString(long, DefaultMaxLength)
	assert.LessOrEqual(t, len([]rune(truncated)), DefaultMaxLength)
	assert.Contains(t, truncated, "...")
}

func TestSafeAttributeValue(t *testing.T) {
	// 敏感键名应触发掩码
	masked := SafeAttributeValue("user.email", "someone@example.com", DefaultMaxLength)
	assert.NotContains(t, masked, "example")

	// 非敏感键名只做截断
	plain := SafeAttributeValue("db.statement", "SELECT 1", DefaultMaxLength)
	assert.Equal(t, "SELECT 1", plain)
}
