package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 重复取消记录的处理策略
const (
	DedupEarliest = "earliest" // 同一(班次,员工)只保留最早的取消记录
	DedupAll      = "all"      // 保留全部取消记录(原脚本行为，会产生行膨胀)
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	DataDir   string `json:"data_dir" yaml:"data_dir"`     // 输入文件所在目录
	OutDir    string `json:"out_dir" yaml:"out_dir"`       // 输出文件目录
	SheetName string `json:"sheet_name" yaml:"sheet_name"` // xlsx输入时读取的工作表，为空取第一个
	Encoding  string `json:"encoding" yaml:"encoding"`     // 输入文件编码: utf-8 / gbk

	Input struct {
		Booking string `json:"booking" yaml:"booking"`
		Cancel  string `json:"cancel" yaml:"cancel"`
		Shift   string `json:"shift" yaml:"shift"`
	} `json:"input" yaml:"input"`

	Output struct {
		AllDimensions bool   `json:"all_dimensions" yaml:"all_dimensions"` // 同时导出worker.csv和facility.csv
		Intermediate  bool   `json:"intermediate" yaml:"intermediate"`     // 导出booking_first.csv和booking_cancel.csv
		Workbook      string `json:"workbook" yaml:"workbook"`             // 汇总xlsx文件名，为空不生成
		SQLite        string `json:"sqlite" yaml:"sqlite"`                 // 汇总SQLite库文件名，为空不生成
	} `json:"output" yaml:"output"`

	CancelDedup string `json:"cancel_dedup" yaml:"cancel_dedup"`
	LogName     string `json:"log_name" yaml:"log_name"`
	LogMaxSize  string `json:"log_max_size" yaml:"log_max_size"` // 例如 "10 * 1024 * 1024"
	Verbose     bool   `json:"verbose" yaml:"verbose"`
}

// DataConfig 描述输入数据的列名别名、取消动作代码以及提前量阈值
type DataConfig struct {
	Headers    map[string]string  `json:"headers" yaml:"headers"`       // 源列名 -> 标准列名
	Actions    map[string]string  `json:"actions" yaml:"actions"`       // no_call / worker_cancel
	Thresholds map[string]float64 `json:"thresholds" yaml:"thresholds"` // call_off / standard (小时)
}

// DefaultConfig 返回与原始分析脚本一致的硬编码配置
func DefaultConfig() *Config {
	cfg := &Config{
		DataDir:     ".",
		OutDir:      ".",
		Encoding:    "utf-8",
		CancelDedup: DedupEarliest,
		LogName:     "shiftinsight.log",
		LogMaxSize:  "10 * 1024 * 1024",
	}
	cfg.Input.Booking = "booking_logs.csv"
	cfg.Input.Cancel = "cancel_logs.csv"
	cfg.Input.Shift = "cleveland_shifts.csv"
	return cfg
}

func DefaultDataConfig() *DataConfig {
	return &DataConfig{
		Headers: map[string]string{},
		Actions: map[string]string{
			"no_call":       "NO_CALL_NO_SHOW",
			"worker_cancel": "WORKER_CANCEL",
		},
		Thresholds: map[string]float64{
			"call_off": 4,
			"standard": 24,
		},
	}
}

// LoadConfig 读取配置文件，文件不存在时使用默认值
// 参数:
//
//	folder: 配置目录
//	file: 主配置文件(.json/.yaml/.yml)
//	dataFile: 数据配置文件，可为空
//	overrides: 在环境变量之后执行，例如命令行参数；全部叠加完才校验
func LoadConfig(folder, file, dataFile string, overrides ...func(*Config)) (*Config, *DataConfig, error) {
	cfg := DefaultConfig()
	dcfg := DefaultDataConfig()

	if file != "" {
		if err := decodeFile(filepath.Join(folder, file), cfg); err != nil {
			return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	if dataFile != "" {
		if err := decodeFile(filepath.Join(folder, dataFile), dcfg); err != nil {
			return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	for _, override := range overrides {
		override(cfg)
	}
	cfg.CancelDedup = normalizeDedup(cfg.CancelDedup)
	dcfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := dcfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, dcfg, nil
}

// LoadEnv 加载.env文件，文件不存在不算错误
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("加载环境变量文件 %s 失败: %w", path, err)
	}
	return nil
}

func decodeFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("无法读取文件 %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHIFTINSIGHT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SHIFTINSIGHT_OUT_DIR"); v != "" {
		c.OutDir = v
	}
	if v := os.Getenv("SHIFTINSIGHT_LOG_FILE"); v != "" {
		c.LogName = v
	}
	if v := os.Getenv("SHIFTINSIGHT_DEDUP"); v != "" {
		c.CancelDedup = normalizeDedup(v)
	}
}

func normalizeDedup(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	switch c.CancelDedup {
	case DedupEarliest, DedupAll:
	default:
		return fmt.Errorf("未知的取消去重策略: %q", c.CancelDedup)
	}
	if c.Input.Booking == "" || c.Input.Cancel == "" || c.Input.Shift == "" {
		return fmt.Errorf("输入文件名不能为空")
	}
	if c.OutDir == "" {
		return fmt.Errorf("输出目录不能为空")
	}
	return nil
}

// InputPath 返回输入文件的完整路径
func (c *Config) InputPath(name string) string {
	return filepath.Join(c.DataDir, name)
}

func (dc *DataConfig) fillDefaults() {
	def := DefaultDataConfig()
	if dc.Headers == nil {
		dc.Headers = map[string]string{}
	}
	if dc.Actions == nil {
		dc.Actions = map[string]string{}
	}
	if dc.Thresholds == nil {
		dc.Thresholds = map[string]float64{}
	}
	for k, v := range def.Actions {
		if _, ok := dc.Actions[k]; !ok {
			dc.Actions[k] = v
		}
	}
	for k, v := range def.Thresholds {
		if _, ok := dc.Thresholds[k]; !ok {
			dc.Thresholds[k] = v
		}
	}
}

func (dc *DataConfig) Validate() error {
	if dc.GetThreshold("call_off") >= dc.GetThreshold("standard") {
		return fmt.Errorf("call_off 阈值(%v)必须小于 standard 阈值(%v)",
			dc.GetThreshold("call_off"), dc.GetThreshold("standard"))
	}
	return nil
}

func (dc *DataConfig) GetAction(name string) string {
	return dc.Actions[name]
}

func (dc *DataConfig) GetThreshold(name string) float64 {
	return dc.Thresholds[name]
}

// GetHeader 返回源列名对应的标准列名，没有别名时原样返回
func (dc *DataConfig) GetHeader(colName string) string {
	if v, ok := dc.Headers[colName]; ok && v != "" {
		return v
	}
	return colName
}
