package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"CyclisticAnalysis/src/config"
	"CyclisticAnalysis/src/datapush"
	"CyclisticAnalysis/src/datasource/email"
	"CyclisticAnalysis/src/datasource/file"
	"CyclisticAnalysis/src/processor"
	"CyclisticAnalysis/src/storage"

	"github.com/go-gota/gota/dataframe"
	"github.com/robfig/cron"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	dataJsonFile := "dataconfig.json"
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	// watch模式：常驻进程，邮箱和数据目录有新导出就重跑
	if len(os.Args) > 1 && os.Args[1] == "watch" {
		runWatch(cfg, dcfg, logger)
		return
	}

	// 默认单次批处理
	if err := runOnce(cfg, dcfg, logger); err != nil {
		logger.Error(err.Error())
		log.Fatal(err)
	}
}

// runOnce 执行一次完整的清洗和报告流程
func runOnce(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) error {
	t1 := time.Now()

	// 1. 读取两个季度的源文件
	frames := make([]dataframe.DataFrame, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		path := filepath.Join(cfg.DataDir, name)
		df, err := file.ReadSource(path, cfg.SheetName)
		if err != nil {
			return fmt.Errorf("读取源文件失败: %w", err)
		}
		logger.Info(fmt.Sprintf("已读取 %s: %d 行", name, df.Nrow()))
		frames = append(frames, df)
	}

	// 2. 清洗流程
	pipeline := processor.NewPipeline(dcfg, logger)
	cleaned, err := pipeline.Run(frames...)
	if err != nil {
		return err
	}

	// 3. 落盘清洗结果
	outPath := filepath.Join(cfg.OutputDir, storage.CleanedFileName(cfg.Period))
	if err := storage.WriteCleanedCSV(cleaned, outPath); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("清洗结果已写入 %s", outPath))

	// 4. 分组汇总
	sections, err := buildSections(pipeline, cleaned)
	if err != nil {
		return err
	}

	// 5. 报告产出，按开关推送
	report := datapush.BuildReport(cfg.Period, sections)

	if dcfg.GetSwitch("导出Excel汇总") == 1 {
		sheets := make([]storage.SummarySheet, 0, len(sections))
		for _, sec := range sections {
			sheets = append(sheets, storage.SummarySheet{
				Name: sec.Title,
				DF:   processor.SummaryDataFrame(sec.Summaries, sec.GroupCols),
			})
		}
		xlsxPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("cyclistic_summary_%s.xlsx", cfg.Period))
		if err := storage.SaveSummaryWorkbook(xlsxPath, sheets); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("汇总工作簿已写入 %s", xlsxPath))
	}

	if dcfg.GetSwitch("推送钉钉") == 1 {
		if err := datapush.PushDingTalk(cfg.DingTalk.Webhook, cfg.DingTalk.Secret, report); err != nil {
			logger.Error(err.Error())
		} else {
			logger.Info("报告已推送到钉钉")
		}
	}

	if dcfg.GetSwitch("发送报告邮件") == 1 {
		if err := email.SendReport(cfg, report, outPath); err != nil {
			logger.Error(err.Error())
		} else {
			logger.Info("报告邮件已发送")
		}
	}

	logger.Info(fmt.Sprintf("本次运行耗时 %v", time.Since(t1)))
	logger.CheckRotate(cfg)
	return nil
}

// buildSections 报告固定的四组透视：用户类型本身，再分别叠加
// 工作日/周末、星期、月份
func buildSections(pipeline *processor.Pipeline, cleaned dataframe.DataFrame) ([]datapush.ReportSection, error) {
	groupings := []struct {
		title string
		cols  []string
	}{
		{"按用户类型", []string{processor.ColUserTypeGroup}},
		{"用户类型+工作日周末", []string{processor.ColUserTypeGroup, processor.ColDayType}},
		{"用户类型+星期", []string{processor.ColUserTypeGroup, processor.ColDayOfWeek}},
		{"用户类型+月份", []string{processor.ColUserTypeGroup, processor.ColMonth}},
	}

	sections := make([]datapush.ReportSection, 0, len(groupings))
	for _, g := range groupings {
		summaries, err := pipeline.Summarize(cleaned, g.cols...)
		if err != nil {
			return nil, err
		}
		sections = append(sections, datapush.ReportSection{
			Title:     g.title,
			GroupCols: g.cols,
			Summaries: summaries,
		})
	}
	return sections, nil
}

// runWatch 常驻模式：定时查邮箱里的新导出，同时盯数据目录
func runWatch(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) {
	emailClient := email.NewEmailClient(
		cfg.Email.Server,
		cfg.Email.Username,
		cfg.Email.Password)
	handler := email.NewExportHandler(cfg.Email.TargetSubject, cfg.DataDir)

	// 设置定时任务
	c := cron.New()
	interval := time.Duration(cfg.Email.CheckInterval).String()
	cronSpec := fmt.Sprintf("@every %s", interval)

	err := c.AddFunc(cronSpec, func() {
		logger.Info(fmt.Sprintf("开始定时检查邮箱(间隔: %v)...", interval))
		saved, err := email.CheckAndProcessEmails(emailClient, handler, logger)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		if len(saved) == 0 {
			return
		}
		logger.Info(fmt.Sprintf("收到 %d 个新数据文件，重新执行清洗", len(saved)))
		if err := runOnce(cfg, dcfg, logger); err != nil {
			logger.Error(err.Error())
		}
	})
	if err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return
	}

	c.Start()
	defer c.Stop()

	// 数据目录里手工放文件也触发重跑
	monitor, err := file.NewFileMonitor(cfg.DataDir)
	if err != nil {
		logger.Error("创建目录监控失败: " + err.Error())
	} else {
		defer monitor.Close()
		go func() {
			if err := monitor.Watch(func(path string) {
				logger.Info("检测到新数据文件: " + path)
				if err := runOnce(cfg, dcfg, logger); err != nil {
					logger.Error(err.Error())
				}
			}); err != nil {
				logger.Error("目录监控出错: " + err.Error())
			}
		}()
	}

	logger.Info(fmt.Sprintf("监控服务已启动(检查间隔: %v)，按Ctrl+C退出", interval))
	select {}
}
