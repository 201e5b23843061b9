package sparql

import (
	"fmt"
	"strings"
	"testing"

	"TianLuoDiWang/internal/model"
	"TianLuoDiWang/internal/rdf"
)

const engineTestBase = "http://tianluodiwang.example.org"

func newSeededEngine(t *testing.T) (*Engine, *rdf.Store) {
	t.Helper()
	store, err := rdf.OpenStore(t.TempDir(), engineTestBase)
	if err != nil {
		t.Fatalf("打开测试存储失败: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	vulns := []model.Vulnerability{
		{
			ID:          "CVE-2025-0001",
			Description: "wordpress漏洞",
			Affected:    []model.SoftwareRef{{Name: "wordpress", Category: "cms"}},
		},
		{
			ID:          "CVE-2025-0002",
			Description: "django漏洞",
			Affected:    []model.SoftwareRef{{Name: "django", Category: "framework"}},
		},
		{
			ID: "CVE-2025-0003",
		},
	}
	for _, v := range vulns {
		if res := store.StoreVulnerability(v); res.Status != rdf.StatusInserted {
			t.Fatalf("预置数据入库失败: %s => %v", v.ID, res.Status)
		}
	}
	return NewEngine(store), store
}

func TestExecuteSelectLiteralFilter(t *testing.T) {
	engine, _ := newSeededEngine(t)

	query := fmt.Sprintf(`SELECT ?v WHERE { ?v <%s> "CVE-2025-0001" }`, rdf.PredCVEID)
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("期望1行结果, 实际得到 %d", len(result.Rows))
	}
	binding := result.Rows[0]["v"]
	if !binding.IsURI || !strings.HasSuffix(binding.Value, "/vuln/CVE-2025-0001") {
		t.Errorf("期望绑定到漏洞节点URI, 实际得到 %+v", binding)
	}
}

func TestExecuteSelectJoin(t *testing.T) {
	engine, _ := newSeededEngine(t)

	// 两跳连接：漏洞 -> 受影响软件 -> 类别
	query := fmt.Sprintf(
		`SELECT ?id ?cat WHERE { ?v <%s> ?id . ?v <%s> ?sw . ?sw <%s> ?cat }`,
		rdf.PredCVEID, rdf.PredAffectsSoftware, rdf.PredApplicationCategory)
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("连接查询失败: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("期望2行结果, 实际得到 %d", len(result.Rows))
	}

	got := make(map[string]string)
	for _, row := range result.Rows {
		got[row["id"].Value] = row["cat"].Value
	}
	if got["CVE-2025-0001"] != "cms" || got["CVE-2025-0002"] != "framework" {
		t.Errorf("连接结果不匹配: %v", got)
	}
}

func TestExecuteSelectStarAndLimit(t *testing.T) {
	engine, _ := newSeededEngine(t)

	query := fmt.Sprintf(`SELECT * WHERE { ?v <%s> ?id } LIMIT 2`, rdf.PredCVEID)
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(result.Vars) != 2 {
		t.Errorf("SELECT * 应收集全部变量, 实际得到 %v", result.Vars)
	}
	if len(result.Rows) != 2 {
		t.Errorf("LIMIT 2 应只返回2行, 实际得到 %d", len(result.Rows))
	}
}

func TestExecuteSelectDistinct(t *testing.T) {
	engine, _ := newSeededEngine(t)

	// 三个漏洞各有一条类型三元组，type取值全部相同
	query := fmt.Sprintf(`SELECT DISTINCT ?type WHERE { ?v <%s> ?type }`, rdf.PredType)
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Errorf("期望去重后只剩1个类型, 实际得到 %d", len(result.Rows))
	}
}

func TestExecuteTurtleTypeShorthand(t *testing.T) {
	engine, _ := newSeededEngine(t)

	query := fmt.Sprintf(`SELECT ?v WHERE { ?v a <%s> }`, rdf.ClassVulnerability)
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(result.Rows) != 3 {
		t.Errorf("期望3个漏洞节点, 实际得到 %d", len(result.Rows))
	}
}

func TestExecuteAsk(t *testing.T) {
	engine, _ := newSeededEngine(t)

	query := fmt.Sprintf(`ASK { ?v <%s> "CVE-2025-0002" }`, rdf.PredCVEID)
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("ASK 查询失败: %v", err)
	}
	if result.Bool == nil || !*result.Bool {
		t.Error("存在匹配时 ASK 应返回 true")
	}

	query = fmt.Sprintf(`ASK { ?v <%s> "CVE-1999-9999" }`, rdf.PredCVEID)
	result, err = engine.Execute(query)
	if err != nil {
		t.Fatalf("ASK 查询失败: %v", err)
	}
	if result.Bool == nil || *result.Bool {
		t.Error("无匹配时 ASK 应返回 false")
	}
}

func TestExecuteDescribe(t *testing.T) {
	engine, store := newSeededEngine(t)

	subj := store.Projector().VulnURI("CVE-2025-0001")
	result, err := engine.Execute(fmt.Sprintf("DESCRIBE <%s>", subj))
	if err != nil {
		t.Fatalf("DESCRIBE 查询失败: %v", err)
	}
	if len(result.Vars) != 3 {
		t.Errorf("DESCRIBE 应产出 subject/predicate/object 三列, 实际得到 %v", result.Vars)
	}
	if len(result.Rows) < 3 {
		t.Errorf("该节点至少应有类型/标识符/描述三条三元组, 实际得到 %d", len(result.Rows))
	}
	for _, row := range result.Rows {
		if row["subject"].Value != subj {
			t.Errorf("所有行的主语应为被描述节点: %+v", row)
		}
	}
}

func TestExecuteLiteralObjectNotConfusedWithURI(t *testing.T) {
	engine, store := newSeededEngine(t)

	// 制造同文本冲突：一个软件节点URI与另一条漏洞的描述字面量相同
	store.StoreVulnerability(model.Vulnerability{
		ID:       "CVE-2025-0010",
		Affected: []model.SoftwareRef{{Name: "redis"}},
	})
	node := store.Projector().SoftwareURI("redis")
	store.StoreVulnerability(model.Vulnerability{ID: "CVE-2025-0011", Description: node})

	result, err := engine.Execute(fmt.Sprintf(`SELECT ?v WHERE { ?v ?p "%s" }`, node))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(result.Rows) != 1 || !strings.HasSuffix(result.Rows[0]["v"].Value, "/vuln/CVE-2025-0011") {
		t.Errorf("引号字面量只应命中描述三元组, 实际得到 %+v", result.Rows)
	}

	result, err = engine.Execute(fmt.Sprintf(`SELECT ?v WHERE { ?v ?p <%s> }`, node))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(result.Rows) != 1 || !strings.HasSuffix(result.Rows[0]["v"].Value, "/vuln/CVE-2025-0010") {
		t.Errorf("URI形式只应命中软件关联三元组, 实际得到 %+v", result.Rows)
	}
}

func TestExecuteConstructUnsupported(t *testing.T) {
	engine, _ := newSeededEngine(t)

	_, err := engine.Execute("CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }")
	if err == nil {
		t.Fatal("CONSTRUCT 应报告引擎不支持")
	}
}

func TestExecuteMalformedQuery(t *testing.T) {
	engine, _ := newSeededEngine(t)

	malformed := []string{
		"SELECT ?s WHERE { ?s ?p }",
		"SELECT ?s { ?s <http://example.org/p ?o }",
		"SELECT WHERE { ?s ?p ?o }",
		"SELECT ?s WHERE { ?s ?p ?o } LIMIT abc",
	}
	for _, q := range malformed {
		if _, err := engine.Execute(q); err == nil {
			t.Errorf("畸形查询 %q 应返回错误", q)
		}
	}
}

func TestSerializeJSONShapes(t *testing.T) {
	engine, _ := newSeededEngine(t)

	query := fmt.Sprintf(`SELECT ?id WHERE { ?v <%s> "CVE-2025-0001" . ?v <%s> ?id }`,
		rdf.PredCVEID, rdf.PredCVEID)
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}

	data, err := result.SerializeJSON()
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, `"vars":["id"]`) {
		t.Errorf("JSON头部应包含变量列表: %s", body)
	}
	if !strings.Contains(body, `"value":"CVE-2025-0001"`) || !strings.Contains(body, `"type":"literal"`) {
		t.Errorf("JSON绑定应标注字面量取值: %s", body)
	}
}
