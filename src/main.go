package main

import (
	"fmt"
	"os"
	"path/filepath"

	"ShiftInsight/src/config"
	"ShiftInsight/src/datapush"
	"ShiftInsight/src/processor"
	"ShiftInsight/src/storage"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options 命令行参数，只有显式给出的参数才覆盖配置文件
type options struct {
	configPath   string
	dataDir      string
	outDir       string
	allDims      bool
	intermediate bool
	workbook     string
	sqlite       string
	dedup        string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "shiftinsight",
		Short: "统计班次预订与取消情况并导出CSV",
		Long: `读取预订日志、取消日志和班次表，过滤孤立记录、归一化时间、
连接三张表，再按 Charge / Agent Req / Shift Type 等维度统计取消情况。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", filepath.Join("config", "config.json"), "配置文件(.json/.yaml)，不存在时使用默认值")
	flags.StringVar(&opts.dataDir, "data-dir", "", "输入文件目录")
	flags.StringVarP(&opts.outDir, "out-dir", "o", "", "输出目录")
	flags.BoolVar(&opts.allDims, "all-dimensions", false, "同时导出 worker.csv 和 facility.csv")
	flags.BoolVar(&opts.intermediate, "intermediate", false, "导出 booking_first.csv 和 booking_cancel.csv")
	flags.StringVar(&opts.workbook, "workbook", "", "把导出的表写入一个xlsx文件")
	flags.StringVar(&opts.sqlite, "sqlite", "", "把导出的表写入一个SQLite库")
	flags.StringVar(&opts.dedup, "dedup", "", "重复取消记录策略: earliest|all")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "输出DEBUG日志")
	return cmd
}

// loadConfig 依次叠加: 默认值 < 配置文件 < 环境变量 < 命令行参数
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, *config.DataConfig, error) {
	if err := config.LoadEnv(".env"); err != nil {
		return nil, nil, err
	}

	folder, file := filepath.Split(opts.configPath)
	ext := filepath.Ext(file)
	dataFile := "dataconfig" + ext
	if ext == "" {
		dataFile = ""
	}

	flags := cmd.Flags()
	applyFlags := func(cfg *config.Config) {
		if flags.Changed("data-dir") {
			cfg.DataDir = opts.dataDir
		}
		if flags.Changed("out-dir") {
			cfg.OutDir = opts.outDir
		}
		if flags.Changed("all-dimensions") {
			cfg.Output.AllDimensions = opts.allDims
		}
		if flags.Changed("intermediate") {
			cfg.Output.Intermediate = opts.intermediate
		}
		if flags.Changed("workbook") {
			cfg.Output.Workbook = opts.workbook
		}
		if flags.Changed("sqlite") {
			cfg.Output.SQLite = opts.sqlite
		}
		if flags.Changed("dedup") {
			cfg.CancelDedup = opts.dedup
		}
		if flags.Changed("verbose") {
			cfg.Verbose = opts.verbose
		}
	}

	// 命令行参数叠加完之后才校验
	return config.LoadConfig(folder, file, dataFile, applyFlags)
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, dcfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	if rotated, err := storage.RotateIfLarge(cfg.LogName, cfg.LogMaxSize); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "日志归档失败:", err)
	} else if rotated {
		fmt.Fprintln(cmd.ErrOrStderr(), "日志文件已归档:", cfg.LogName)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName, cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := process(cfg, dcfg, logger); err != nil {
		logger.Fatal("运行失败", zap.Error(err))
		// 带上 run_id 方便在日志文件里定位
		return fmt.Errorf("run_id=%s: %w", logger.RunID(), err)
	}
	return nil
}

func process(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) error {
	logger.Info("开始处理",
		zap.String("data_dir", cfg.DataDir),
		zap.String("out_dir", cfg.OutDir),
		zap.String("cancel_dedup", cfg.CancelDedup))

	p := processor.NewDataProcessor(cfg, dcfg, logger)
	tables, err := p.Run()
	if err != nil {
		return err
	}

	exported, err := exportTables(cfg, tables, logger)
	if err != nil {
		return err
	}

	if cfg.Output.Intermediate {
		if err := exportIntermediate(cfg, p, logger); err != nil {
			return err
		}
	}

	if cfg.Output.Workbook != "" {
		path := outputPath(cfg, cfg.Output.Workbook)
		if err := datapush.SaveWorkbook(path, exported); err != nil {
			return err
		}
		logger.Info("汇总工作簿已保存", zap.String("path", path), zap.Int("sheets", len(exported)))
	}

	if cfg.Output.SQLite != "" {
		path := outputPath(cfg, cfg.Output.SQLite)
		if err := datapush.SaveSQLite(path, exported); err != nil {
			return err
		}
		logger.Info("汇总数据库已保存", zap.String("path", path), zap.Int("tables", len(exported)))
	}

	logger.Info(fmt.Sprintf("完成，共导出 %d 张统计表", len(exported)))
	return nil
}

// outputPath 相对路径放在输出目录下
func outputPath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.OutDir, name)
}

// exportTables 默认维度总是导出，worker/facility 需要 all_dimensions
func exportTables(cfg *config.Config, tables []processor.GroupTable, logger *storage.Logger) ([]processor.GroupTable, error) {
	defaults := make(map[string]bool)
	for _, dim := range processor.Dimensions() {
		defaults[dim.Field] = dim.Default
	}

	exported := make([]processor.GroupTable, 0, len(tables))
	for _, t := range tables {
		if !defaults[t.Field] && !cfg.Output.AllDimensions {
			continue
		}
		path, err := datapush.WriteGroupTable(cfg.OutDir, t)
		if err != nil {
			return nil, err
		}
		logger.Info("统计表已导出", zap.String("field", t.Field), zap.String("path", path), zap.Int("rows", len(t.Rows)))
		exported = append(exported, t)
	}
	return exported, nil
}

func exportIntermediate(cfg *config.Config, p *processor.DataProcessor, logger *storage.Logger) error {
	first, err := processor.ShiftFirstBookingFrame(p.First)
	if err != nil {
		return err
	}
	bc, err := processor.BookingCancelFrame(p.BookingCancel)
	if err != nil {
		return err
	}

	outputs := []struct {
		file string
		df   dataframe.DataFrame
	}{
		{"booking_first.csv", first},
		{"booking_cancel.csv", bc},
	}
	for _, o := range outputs {
		if err := datapush.WriteCSV(filepath.Join(cfg.OutDir, o.file), o.df); err != nil {
			return err
		}
		logger.Info("中间表已导出", zap.String("file", o.file), zap.Int("rows", o.df.Nrow()))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
