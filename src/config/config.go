package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Email struct {
		Server        string   `json:"server"`         // 邮件服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码/授权码
		TargetSubject string   `json:"target_subject"` // 骑行数据导出邮件的主题关键字
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	SendEmail struct {
		Server   string `json:"server"`   // SMTP服务器地址
		Username string `json:"username"` // 发件邮箱
		Password string `json:"password"` // 发件密码/授权码
		To       string `json:"to"`       // 报告接收人
		Subject  string `json:"subject"`  // 报告邮件主题
	} `json:"send_email"`

	DingTalk struct {
		Webhook string `json:"webhook"` // 机器人webhook地址
		Secret  string `json:"secret"`  // 加签密钥
	} `json:"dingtalk"`

	DataDir    string   `json:"data_dir"`    // 原始骑行数据目录
	OutputDir  string   `json:"output_dir"`  // 清洗结果输出目录
	Sources    []string `json:"sources"`     // 两个季度的源文件名(旧版schema在前)
	SheetName  string   `json:"sheet_name"`  // xlsx导出时的工作表名
	Period     string   `json:"period"`      // 输出文件名中的期间标记，如 2019q1_2020q1
	LogName    string   `json:"log_name"`
	LogMaxSize string   `json:"log_max_size"`
}

// DataConfig 存放清洗规则的数据字典
// Fallback: 规范列名 -> 旧版schema里的备选列名(合并取值时的回退表)
// UserTypes: 原始用户标签 -> Annual/Casual 分组
type DataConfig struct {
	Fallback  map[string]string `json:"fallback"`
	UserTypes map[string]string `json:"usertypes"`
	Switches  map[string]int    `json:"switches"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据字典失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// GetFallback 查询规范列对应的备选列名，没有则返回空串
func (dc *DataConfig) GetFallback(colName string) string {
	mu.RLock()
	defer mu.RUnlock()
	return dc.Fallback[colName]
}

func (dc *DataConfig) SetFallback(colName, legacy string) {
	mu.Lock()
	defer mu.Unlock()
	dc.Fallback[colName] = legacy
}

// GetUserTypeGroup 按词表映射原始标签，没命中返回空串
func (dc *DataConfig) GetUserTypeGroup(label string) string {
	mu.RLock()
	defer mu.RUnlock()
	return dc.UserTypes[label]
}

func (dc *DataConfig) GetSwitch(name string) int {
	mu.RLock()
	defer mu.RUnlock()
	return dc.Switches[name]
}

func (dc *DataConfig) SetSwitch(name string, value int) {
	mu.Lock()
	defer mu.Unlock()
	dc.Switches[name] = value
}
