package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"TianLuoDiWang/internal/utils"
)

// CPE 2.3 格式: cpe:2.3:part:vendor:product:version:...
var cpePattern = regexp.MustCompile(`^cpe:2\.3:([ahow]):([^:]+):([^:]+):([^:]+)`)

// CPE 平台标识符的前5段
type CPE struct {
	Part    string // a=应用, h=硬件, o=操作系统, w=网站
	Vendor  string
	Product string
	Version string
}

// ParseCPE 解析CPE 2.3标识符，格式不符时返回false
func ParseCPE(uri string) (CPE, bool) {
	m := cpePattern.FindStringSubmatch(uri)
	if m == nil {
		return CPE{}, false
	}

	return CPE{
		Part:    m[1],
		Vendor:  m[2],
		Product: m[3],
		Version: m[4],
	}, true
}

// SoftwareClass 软件分类条目，在配置文件中的顺序即匹配优先级
type SoftwareClass struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type classesFile struct {
	SoftwareClasses []SoftwareClass `yaml:"software_classes"`
}

// Classifier 根据CPE产品名做关键词分类，构造后只读
type Classifier struct {
	classes []SoftwareClass
	logger  *utils.Logger
}

func NewClassifier(classes []SoftwareClass) *Classifier {
	return &Classifier{
		classes: classes,
		logger:  utils.NewLogger("classifier"),
	}
}

// LoadClassifier 从YAML配置加载分类关键词表（进程生命周期内加载一次）
func LoadClassifier(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置缺失时退化为空表，所有软件均不分类
			return NewClassifier(nil), nil
		}
		return nil, fmt.Errorf("读取分类配置失败: %w", err)
	}

	var cf classesFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("解析分类配置失败: %w", err)
	}

	return NewClassifier(cf.SoftwareClasses), nil
}

// Classify 将CPE标识符分类为软件类别（cms、framework等），无法分类时返回空串。
// 只对应用类（part=a）分类；按配置顺序取第一个命中的类别。
func (c *Classifier) Classify(cpeURI string) string {
	cpe, ok := ParseCPE(cpeURI)
	if !ok || cpe.Part != "a" {
		return ""
	}

	product := strings.ToLower(cpe.Product)
	for _, class := range c.classes {
		for _, keyword := range class.Keywords {
			if strings.Contains(product, keyword) {
				c.logger.Debug("产品 %s 分类为 %s", product, class.Name)
				return class.Name
			}
		}
	}

	return ""
}
