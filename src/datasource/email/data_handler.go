// data_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"CyclisticAnalysis/src/storage"
)

// ExportHandler 把骑行数据导出邮件里的附件落到原始数据目录
type ExportHandler struct {
	targetSubject string // 只处理主题包含该关键字的邮件
	dataDir       string
}

func NewExportHandler(targetSubject, dataDir string) *ExportHandler {
	return &ExportHandler{
		targetSubject: targetSubject,
		dataDir:       dataDir,
	}
}

// Matches 判断邮件是不是数据组发的导出邮件
func (h *ExportHandler) Matches(e *Email) bool {
	return e != nil && strings.Contains(e.Subject, h.targetSubject)
}

// Handle 保存邮件里的数据附件，返回落盘后的文件路径
// 只认csv和xlsx，其余附件忽略
func (h *ExportHandler) Handle(e *Email, logger *storage.Logger) ([]string, error) {
	if !h.Matches(e) {
		return nil, nil
	}

	if err := os.MkdirAll(h.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	var saved []string
	for _, att := range e.Attachments {
		ext := strings.ToLower(filepath.Ext(att.Filename))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		path := filepath.Join(h.dataDir, filepath.Base(att.Filename))
		if err := os.WriteFile(path, att.Content, 0644); err != nil {
			return saved, fmt.Errorf("保存附件 %s 失败: %w", att.Filename, err)
		}
		saved = append(saved, path)
		if logger != nil {
			logger.Info(fmt.Sprintf("已保存数据附件: %s (%d 字节)", path, len(att.Content)))
		}
	}

	return saved, nil
}

// CheckAndProcessEmails 查一轮邮箱，把匹配到的导出附件全部落盘
func CheckAndProcessEmails(client MailService, handler *ExportHandler, logger *storage.Logger) ([]string, error) {
	emails, err := client.FetchUnreadEmails()
	if err != nil {
		return nil, fmt.Errorf("检查邮件失败: %w", err)
	}

	var saved []string
	for _, e := range emails {
		paths, err := handler.Handle(e, logger)
		if err != nil {
			if logger != nil {
				logger.Error(fmt.Sprintf("处理邮件失败(UID:%d): %v", e.UID, err))
			}
			continue
		}
		saved = append(saved, paths...)
	}

	return saved, nil
}
