package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func testClasses() []SoftwareClass {
	return []SoftwareClass{
		{Name: "cms", Keywords: []string{"wordpress", "drupal", "joomla"}},
		{Name: "framework", Keywords: []string{"django", "rails", "struts"}},
		{Name: "module", Keywords: []string{"plugin", "module"}},
	}
}

func TestParseCPE(t *testing.T) {
	cpe, ok := ParseCPE("cpe:2.3:a:wordpress:wordpress:5.0:*:*:*:*:*:*:*")
	if !ok {
		t.Fatal("合法CPE解析失败")
	}
	if cpe.Part != "a" {
		t.Errorf("期望part为 a, 实际得到 %s", cpe.Part)
	}
	if cpe.Vendor != "wordpress" {
		t.Errorf("期望vendor为 wordpress, 实际得到 %s", cpe.Vendor)
	}
	if cpe.Product != "wordpress" {
		t.Errorf("期望product为 wordpress, 实际得到 %s", cpe.Product)
	}
	if cpe.Version != "5.0" {
		t.Errorf("期望version为 5.0, 实际得到 %s", cpe.Version)
	}
}

func TestParseCPEInvalid(t *testing.T) {
	invalid := []string{
		"",
		"not-a-cpe",
		"cpe:2.3:a:vendor",
		"cpe:2.3:x:vendor:product:1.0",
	}
	for _, uri := range invalid {
		if _, ok := ParseCPE(uri); ok {
			t.Errorf("非法CPE %q 不应解析成功", uri)
		}
	}
}

func TestClassifyApplication(t *testing.T) {
	c := NewClassifier(testClasses())

	got := c.Classify("cpe:2.3:a:wordpress:wordpress:5.0:*:*:*:*:*:*:*")
	if got != "cms" {
		t.Errorf("期望分类为 cms, 实际得到 %q", got)
	}

	got = c.Classify("cpe:2.3:a:apache:struts:2.3.1:*:*:*:*:*:*:*")
	if got != "framework" {
		t.Errorf("期望分类为 framework, 实际得到 %q", got)
	}
}

func TestClassifyOnlyApplications(t *testing.T) {
	c := NewClassifier(testClasses())

	// 操作系统与硬件类不分类
	if got := c.Classify("cpe:2.3:o:linux:wordpress_os:1.0:*:*:*:*:*:*:*"); got != "" {
		t.Errorf("非应用类CPE不应被分类, 实际得到 %q", got)
	}
	if got := c.Classify("cpe:2.3:h:vendor:drupal_device:1.0:*:*:*:*:*:*:*"); got != "" {
		t.Errorf("硬件类CPE不应被分类, 实际得到 %q", got)
	}
}

func TestClassifyUnknownProduct(t *testing.T) {
	c := NewClassifier(testClasses())

	if got := c.Classify("cpe:2.3:a:vendor:obscure_tool:1.0:*:*:*:*:*:*:*"); got != "" {
		t.Errorf("未命中关键词时应返回空串, 实际得到 %q", got)
	}
}

func TestClassifyFirstCategoryWins(t *testing.T) {
	// wordpress_plugin 同时命中 cms 和 module；配置顺序在前的获胜
	c := NewClassifier(testClasses())

	got := c.Classify("cpe:2.3:a:vendor:wordpress_plugin:1.0:*:*:*:*:*:*:*")
	if got != "cms" {
		t.Errorf("期望按配置顺序取首个命中类别 cms, 实际得到 %q", got)
	}

	// 相反顺序则 module 获胜，说明优先级完全由配置顺序决定
	reversed := NewClassifier([]SoftwareClass{
		{Name: "module", Keywords: []string{"plugin", "module"}},
		{Name: "cms", Keywords: []string{"wordpress", "drupal"}},
	})
	got = reversed.Classify("cpe:2.3:a:vendor:wordpress_plugin:1.0:*:*:*:*:*:*:*")
	if got != "module" {
		t.Errorf("期望反转顺序后取 module, 实际得到 %q", got)
	}
}

func TestLoadClassifierFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := `software_classes:
  - name: cms
    keywords: [wordpress, drupal]
  - name: framework
    keywords: [django]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入测试配置失败: %v", err)
	}

	c, err := LoadClassifier(path)
	if err != nil {
		t.Fatalf("LoadClassifier 失败: %v", err)
	}

	if got := c.Classify("cpe:2.3:a:django:django:3.0:*:*:*:*:*:*:*"); got != "framework" {
		t.Errorf("期望分类为 framework, 实际得到 %q", got)
	}

	// YAML序列保持文件顺序，分类结果可复现
	if len(c.classes) != 2 || c.classes[0].Name != "cms" || c.classes[1].Name != "framework" {
		t.Errorf("分类表应保持配置文件顺序: %+v", c.classes)
	}
}

func TestLoadClassifierMissingFile(t *testing.T) {
	c, err := LoadClassifier(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("配置缺失时应退化为空表, 实际报错: %v", err)
	}
	if got := c.Classify("cpe:2.3:a:wordpress:wordpress:5.0:*:*:*:*:*:*:*"); got != "" {
		t.Errorf("空表不应产出任何分类, 实际得到 %q", got)
	}
}
