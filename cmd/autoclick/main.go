package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/zoeyai/autoclick/internal/logger"
	"github.com/zoeyai/autoclick/pkg/auto/input"
	"github.com/zoeyai/autoclick/pkg/auto/screen"
	"github.com/zoeyai/autoclick/pkg/config"
	"github.com/zoeyai/autoclick/pkg/grpc"
	"github.com/zoeyai/autoclick/pkg/metrics"
	"github.com/zoeyai/autoclick/pkg/permissions"
	"github.com/zoeyai/autoclick/pkg/process"
	"github.com/zoeyai/autoclick/pkg/vision/annotate"
	"github.com/zoeyai/autoclick/pkg/vision/cv"
	"github.com/zoeyai/autoclick/pkg/worker"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = grpc.Version
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	_ worker.CaptureProvider = (*screen.Provider)(nil)
	_ worker.ClickDispatcher = (*input.Dispatcher)(nil)
	_ worker.Snapshotter     = (*annotate.Annotator)(nil)
)

// cliFlags 命令行参数
type cliFlags struct {
	threshold   float64
	intervalMs  int
	cooldownMs  int
	monitor     int
	offsetX     int
	offsetY     int
	template    string
	logLevel    string
	logFile     string
	metricsAddr string
	statusAddr  string
	debugDir    string
	waitProcess string
	matcher     string
	envFile     string

	listDisplays     bool
	resetPermissions bool
	save             bool
	showVersion      bool
	showHelp         bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*cliFlags, map[string]bool, error) {
	f := &cliFlags{}
	d := config.DefaultSettings()

	fs.Float64Var(&f.threshold, "threshold", d.Threshold, "命中阈值 (0-1)")
	fs.IntVar(&f.intervalMs, "interval", d.IntervalMs, "检测间隔 (毫秒)")
	fs.IntVar(&f.cooldownMs, "cooldown", d.CooldownMs, "两次点击最短间隔 (毫秒)")
	fs.IntVar(&f.monitor, "monitor", d.Monitor, "显示器编号")
	fs.IntVar(&f.offsetX, "offset-x", 0, "点击偏移 X")
	fs.IntVar(&f.offsetY, "offset-y", 0, "点击偏移 Y")
	fs.StringVar(&f.template, "template", "", "模板图片路径")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "日志级别 (debug/info/warn/error)")
	fs.StringVar(&f.logFile, "log-file", "", "日志文件")
	fs.StringVar(&f.metricsAddr, "metrics", "", "Prometheus 指标监听地址 (例: :9100)")
	fs.StringVar(&f.statusAddr, "status", "", "gRPC 健康检查监听地址 (例: :50051)")
	fs.StringVar(&f.debugDir, "debug-dir", "", "保存点击快照的目录")
	fs.StringVar(&f.waitProcess, "wait-process", "", "等待该进程启动后再开始")
	fs.StringVar(&f.matcher, "matcher", d.Matcher, "匹配后端 (ncc/opencv)")
	fs.StringVar(&f.envFile, "env", ".env", "环境变量文件")
	fs.BoolVar(&f.listDisplays, "list-displays", false, "列出显示器后退出")
	fs.BoolVar(&f.resetPermissions, "reset-permissions", false, "重置系统权限记录后退出")
	fs.BoolVar(&f.save, "save", false, "保存配置到本地")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")
	fs.BoolVar(&f.showHelp, "help", false, "显示帮助信息")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// apply 仅用显式指定的参数覆盖设置
func (f *cliFlags) apply(s *config.Settings, set map[string]bool) {
	if set["threshold"] {
		s.Threshold = f.threshold
	}
	if set["interval"] {
		s.IntervalMs = f.intervalMs
	}
	if set["cooldown"] {
		s.CooldownMs = f.cooldownMs
	}
	if set["monitor"] {
		s.Monitor = f.monitor
	}
	if set["offset-x"] {
		s.ClickOffset.X = f.offsetX
	}
	if set["offset-y"] {
		s.ClickOffset.Y = f.offsetY
	}
	if set["template"] {
		s.TemplatePath = f.template
	}
	if set["log-level"] {
		s.LogLevel = f.logLevel
	}
	if set["log-file"] {
		s.LogFile = f.logFile
	}
	if set["metrics"] {
		s.MetricsAddr = f.metricsAddr
	}
	if set["status"] {
		s.StatusAddr = f.statusAddr
	}
	if set["debug-dir"] {
		s.DebugDir = f.debugDir
	}
	if set["wait-process"] {
		s.WaitProcess = f.waitProcess
	}
	if set["matcher"] {
		s.Matcher = f.matcher
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("autoclick", flag.ContinueOnError)
	fs.Usage = printHelp
	flags, set, err := parseFlags(fs, args)
	if err != nil {
		return 2
	}

	// 显示版本
	if flags.showVersion {
		printVersion()
		return 0
	}

	// 显示帮助
	if flags.showHelp {
		printHelp()
		return 0
	}

	if flags.resetPermissions {
		return resetPermissions()
	}

	// 优先级: 命令行 > 环境变量 > 配置文件 > 默认值
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		fmt.Printf("[WARN] 加载 %s 失败: %v\n", flags.envFile, err)
	}
	manager := config.NewManager()
	settings, err := manager.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败: %v\n", err)
	}
	if err := settings.ApplyEnv(); err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		return 1
	}
	flags.apply(settings, set)

	logger.Default().SetLevel(logger.ParseLevel(settings.LogLevel))
	if settings.LogFile != "" {
		if err := logger.Default().SetFile(true, settings.LogFile); err != nil {
			fmt.Printf("[WARN] %v\n", err)
		}
	}
	defer logger.Default().Close()

	if err := settings.Validate(); err != nil {
		logger.Error("%v", err)
		return 1
	}

	// 保存配置
	if flags.save {
		if err := manager.Save(settings); err != nil {
			logger.Warn("保存配置失败: %v", err)
		} else {
			logger.Info("配置已保存到 %s", manager.GetConfigFile())
		}
	}

	provider := screen.NewProvider()
	if flags.listDisplays {
		return listDisplays(provider)
	}

	// 打印启动信息
	fmt.Println("========================================")
	fmt.Printf("  AutoClick v%s\n", Version)
	fmt.Println("========================================")

	// macOS 权限检查
	if runtime.GOOS == "darwin" {
		checkMacOSPermissions()
	}

	templatePath, err := settings.ResolveTemplatePath()
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.WaitProcess != "" {
		if _, err := process.WaitFor(ctx, settings.WaitProcess, process.DefaultPollInterval); err != nil {
			logger.Info("已取消等待进程: %v", err)
			return 0
		}
	}

	deps := worker.Deps{
		Capture: provider,
		Clicker: input.NewDispatcher(),
		Matcher: selectMatcher(settings.Matcher),
	}
	if settings.DebugDir != "" {
		ann, err := annotate.New(settings.DebugDir)
		if err != nil {
			logger.Warn("快照目录不可用: %v", err)
		} else {
			deps.Snapshots = ann
		}
	}

	var observers []observer
	var collector *metrics.Collector
	if settings.MetricsAddr != "" {
		collector = metrics.NewCollector()
		if _, err := collector.Serve(settings.MetricsAddr); err != nil {
			logger.Warn("%v", err)
			collector = nil
		} else {
			observers = append(observers, collector)
			defer shutdownMetrics(collector)
		}
	}
	if settings.StatusAddr != "" {
		status := grpc.NewStatusServer()
		if _, err := status.Serve(settings.StatusAddr); err != nil {
			logger.Warn("%v", err)
		} else {
			observers = append(observers, status)
			defer status.Stop()
		}
	}

	h, err := worker.Start(ctx, settings.WorkerConfig(templatePath), deps)
	if err != nil {
		logger.Error("启动失败: %v", err)
		return 1
	}
	logger.Info("按 Ctrl+C 退出")

	c := newConsumer(worker.DefaultEventBuffer, observers...)
	c.run(h.Events())
	h.Wait()

	if n := h.Dropped(); n > 0 {
		logger.Warn("共丢弃 %d 个事件", n)
		if collector != nil {
			collector.AddDropped(n)
		}
	}

	if c.history.Count(worker.EventStarted) == 0 {
		// 模板加载失败，未进入检测循环
		return 1
	}
	logger.Info("已退出")
	return 0
}

// selectMatcher 选择匹配后端，OpenCV 不可用时回退到内置实现
func selectMatcher(name string) worker.Matcher {
	if name == config.MatcherOpenCV {
		m, err := cv.NewOpenCVMatcher()
		if err == nil {
			logger.Info("使用 OpenCV 匹配")
			return m
		}
		logger.Warn("%v, 使用内置匹配", err)
	}
	return cv.NewMatcher()
}

func shutdownMetrics(c *metrics.Collector) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.Shutdown(ctx)
}

// listDisplays 打印显示器列表
func listDisplays(p *screen.Provider) int {
	displays, err := p.ListDisplays()
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		return 1
	}
	for _, d := range displays {
		fmt.Println(d.Label())
	}
	return 0
}

// printVersion 打印版本信息
func printVersion() {
	info := grpc.GetSystemInfo()
	fmt.Printf("AutoClick v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Platform:   %s (%s)\n", info.Platform, info.OSVersion)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("AutoClick - 检测到按钮后自动点击")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  autoclick [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -threshold float     命中阈值 (默认 0.88)")
	fmt.Println("  -interval int        检测间隔毫秒 (默认 120)")
	fmt.Println("  -cooldown int        两次点击最短间隔毫秒 (默认 4000)")
	fmt.Println("  -monitor int         显示器编号 (默认 0)")
	fmt.Println("  -offset-x/-offset-y  点击偏移")
	fmt.Println("  -template string     模板图片路径")
	fmt.Println("  -matcher string      匹配后端 ncc / opencv")
	fmt.Println("  -log-level string    日志级别")
	fmt.Println("  -log-file string     日志文件")
	fmt.Println("  -metrics string      Prometheus 指标监听地址")
	fmt.Println("  -status string       gRPC 健康检查监听地址")
	fmt.Println("  -debug-dir string    保存点击快照的目录")
	fmt.Println("  -wait-process string 等待进程启动后再开始")
	fmt.Println("  -env string          环境变量文件 (默认 .env)")
	fmt.Println("  -list-displays       列出显示器")
	fmt.Println("  -reset-permissions   重置系统权限记录 (macOS)")
	fmt.Println("  -save                保存配置到本地")
	fmt.Println("  -version             显示版本信息")
	fmt.Println("  -help                显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 使用默认模板运行")
	fmt.Println("  autoclick")
	fmt.Println()
	fmt.Println("  # 第二块屏幕, 阈值 0.9, 并保存配置")
	fmt.Println("  autoclick -monitor 1 -threshold 0.9 -save")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.NewManager().GetConfigFile())
}

// checkMacOSPermissions 检查 macOS 权限，缺失时打开对应的系统设置
func checkMacOSPermissions() {
	logger.Info("正在检查 macOS 权限...")
	status, instructions := permissions.EnsurePermissions()

	logger.Info("辅助功能权限: %v", status.Accessibility)
	logger.Info("屏幕录制权限: %v", status.ScreenRecording)

	if status.AllGranted {
		logger.Info("所有权限已授予")
		return
	}
	logger.Warn("%s", instructions)
}

// resetPermissions 清除系统中的授权记录，便于重新授权
func resetPermissions() int {
	if err := permissions.ResetPermissions(); err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		return 1
	}
	fmt.Println("权限记录已重置, 下次启动时将重新请求授权")
	return 0
}
