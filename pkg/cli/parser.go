package cli

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Options 命令行选项
type Options struct {
	Mode        string // server | ingest | backfill | seed
	Listen      string
	Limit       int
	Since       string
	StartYear   int
	EndYear     int
	StoreDir    string
	ClassesFile string
	Timeout     int
	Verbose     bool
}

type Parser struct {
	Options Options
}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse() error {
	var help bool

	flag.StringVar(&p.Options.Mode, "mode", "server", "运行模式 (server, ingest, backfill, seed)")
	flag.StringVar(&p.Options.Listen, "listen", "", "HTTP监听地址 (默认 :8000)")
	flag.IntVar(&p.Options.Limit, "limit", 100, "摄取条数上限 (0 表示不限)")
	flag.StringVar(&p.Options.Since, "since", "", "只摄取该时间之后修改的记录 (ISO格式)")
	flag.IntVar(&p.Options.StartYear, "start-year", time.Now().Year(), "回填起始年份")
	flag.IntVar(&p.Options.EndYear, "end-year", time.Now().Year(), "回填结束年份")
	flag.StringVar(&p.Options.StoreDir, "store", "", "三元组存储目录 (默认 database/rdf)")
	flag.StringVar(&p.Options.ClassesFile, "classes", "", "软件分类配置 (默认 config/settings.yaml)")
	flag.IntVar(&p.Options.Timeout, "timeout", 0, "SPARQL查询超时(秒)")
	flag.BoolVar(&p.Options.Verbose, "verbose", false, "显示详细信息")
	flag.BoolVar(&help, "help", false, "显示帮助")

	flag.Parse()

	if help {
		p.printHelp()
		os.Exit(0)
	}

	switch p.Options.Mode {
	case "server", "ingest", "backfill", "seed":
	default:
		return fmt.Errorf("未知运行模式: %s", p.Options.Mode)
	}

	return nil
}

func (p *Parser) printHelp() {
	fmt.Println("天罗地网 - 漏洞知识图谱服务")
	fmt.Println("")
	fmt.Println("使用方法: TianLuoDiWang -mode <模式> [选项]")
	fmt.Println("")
	fmt.Println("模式:")
	fmt.Println("  server            启动HTTP服务 (摄取触发 + SPARQL查询)")
	fmt.Println("  ingest            执行一次有界NVD摄取后退出")
	fmt.Println("  backfill          按发布年份逐年回填NVD数据")
	fmt.Println("  seed              写入演示用样例数据")
	fmt.Println("")
	fmt.Println("选项:")
	fmt.Println("  -listen string    HTTP监听地址 (默认: :8000)")
	fmt.Println("  -limit int        摄取条数上限 (默认: 100, 0 表示不限)")
	fmt.Println("  -since string     只摄取该时间之后修改的记录")
	fmt.Println("  -start-year int   回填起始年份")
	fmt.Println("  -end-year int     回填结束年份")
	fmt.Println("  -store string     三元组存储目录 (默认: database/rdf)")
	fmt.Println("  -classes string   软件分类配置 (默认: config/settings.yaml)")
	fmt.Println("  -timeout int      SPARQL查询超时(秒) (默认: 10)")
	fmt.Println("  -verbose          显示详细信息")
	fmt.Println("  -help             显示帮助")
	fmt.Println("")
	fmt.Println("示例:")
	fmt.Println("  TianLuoDiWang -mode server -listen :8000")
	fmt.Println("  TianLuoDiWang -mode ingest -limit 500")
	fmt.Println("  TianLuoDiWang -mode backfill -start-year 2024 -end-year 2025")
}
