package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWriteAndLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	logger.Info("读取源文件完成")
	logger.Warning("发现异常标签")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "INFO: 读取源文件完成") {
		t.Errorf("缺少INFO日志: %s", content)
	}
	if !strings.Contains(content, "WARNING: 发现异常标签") {
		t.Errorf("缺少WARNING日志: %s", content)
	}
}

func TestLoggerSubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	ch := logger.Subscribe()
	logger.Error("清洗失败")

	select {
	case msg := <-ch:
		if !strings.Contains(msg, "ERROR: 清洗失败") {
			t.Errorf("订阅消息错误: %s", msg)
		}
	default:
		t.Fatal("订阅者没有收到日志")
	}
}

func TestEvalSizeExpr(t *testing.T) {
	if got := eval("10 * 1024 * 1024"); got != 10*1024*1024 {
		t.Errorf("eval错误: %d", got)
	}
	if got := eval("512"); got != 512 {
		t.Errorf("eval错误: %d", got)
	}
}
