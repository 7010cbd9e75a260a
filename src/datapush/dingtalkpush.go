// dingtalkpush.go
package datapush

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	RETRY_TIMES    = 5
	RETRY_INTERVAL = 2 * time.Second
)

// 钉钉 API 响应结构体
type DingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

type textMessage struct {
	MsgType string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
}

// PushDingTalk 通过机器人webhook把报告推到群里
// secret非空时走加签校验，失败自动重试
func PushDingTalk(webhook, secret, content string) error {
	if webhook == "" {
		return fmt.Errorf("未配置钉钉webhook")
	}

	target := webhook
	if secret != "" {
		target = signWebhook(webhook, secret, time.Now())
	}

	msg := textMessage{MsgType: "text"}
	msg.Text.Content = content

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	var lastErr error
	for i := 0; i < RETRY_TIMES; i++ {
		if i > 0 {
			time.Sleep(RETRY_INTERVAL)
		}
		if err := postOnce(target, payload); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("钉钉推送重试%d次后仍失败: %w", RETRY_TIMES, lastErr)
}

func postOnce(target string, payload []byte) error {
	resp, err := http.Post(target, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("推送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取推送响应失败: %w", err)
	}

	var dtResp DingTalkResponse
	if err := json.Unmarshal(body, &dtResp); err != nil {
		return fmt.Errorf("解析推送响应失败: %w", err)
	}
	if dtResp.ErrCode != 0 {
		return fmt.Errorf("钉钉返回错误: %s", dtResp.ErrMsg)
	}
	return nil
}

// signWebhook 机器人加签：timestamp+"\n"+secret 做HMAC-SHA256
func signWebhook(webhook, secret string, now time.Time) string {
	timestamp := now.UnixMilli()
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, secret)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(stringToSign))
	sign := url.QueryEscape(base64.StdEncoding.EncodeToString(h.Sum(nil)))

	return fmt.Sprintf("%s&timestamp=%d&sign=%s", webhook, timestamp, sign)
}
