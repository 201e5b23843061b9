package sparql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"TianLuoDiWang/internal/rdf"
	"TianLuoDiWang/internal/utils"
)

// Binding 查询结果中单个变量的取值
type Binding struct {
	Value string
	IsURI bool
}

// Result 查询结果集。SELECT/DESCRIBE 填充 Vars+Rows，ASK 填充 Bool。
type Result struct {
	Vars []string
	Rows []map[string]Binding
	Bool *bool
}

// SerializeJSON 序列化为 SPARQL Results JSON 格式
func (r *Result) SerializeJSON() ([]byte, error) {
	if r.Bool != nil {
		return json.Marshal(map[string]interface{}{
			"head":    map[string]interface{}{},
			"boolean": *r.Bool,
		})
	}

	bindings := make([]map[string]map[string]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		b := make(map[string]map[string]string, len(row))
		for v, val := range row {
			typ := "literal"
			if val.IsURI {
				typ = "uri"
			}
			b[v] = map[string]string{"type": typ, "value": val.Value}
		}
		bindings = append(bindings, b)
	}

	vars := r.Vars
	if vars == nil {
		vars = []string{}
	}

	return json.Marshal(map[string]interface{}{
		"head":    map[string]interface{}{"vars": vars},
		"results": map[string]interface{}{"bindings": bindings},
	})
}

// term 查询模式中的词项：变量、URI节点或字面量
type term struct {
	isVar   bool
	literal bool
	value   string
}

type triplePattern struct {
	s, p, o term
}

// Engine 在三元组存储之上执行SPARQL子集：
// 基本图模式的 SELECT（支持 DISTINCT / LIMIT）、ASK 和 DESCRIBE <uri>。
// CONSTRUCT 虽可通过校验，但引擎不支持，按执行失败上报。
type Engine struct {
	store  *rdf.Store
	logger *utils.Logger
}

func NewEngine(store *rdf.Store) *Engine {
	return &Engine{
		store:  store,
		logger: utils.NewLogger("sparql-engine"),
	}
}

// Execute 执行只读查询（调用方须已通过 ValidateQuery）
func (e *Engine) Execute(query string) (*Result, error) {
	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("空查询")
	}

	switch strings.ToUpper(tokens[0]) {
	case "SELECT":
		return e.execSelect(tokens[1:])
	case "ASK":
		return e.execAsk(tokens[1:])
	case "DESCRIBE":
		return e.execDescribe(tokens[1:])
	case "CONSTRUCT":
		return nil, fmt.Errorf("引擎不支持 CONSTRUCT 查询")
	default:
		return nil, fmt.Errorf("未知查询类型: %s", tokens[0])
	}
}

// tokenize 切分查询串。<uri> 与 "literal" 各为一个词元，
// 花括号和句点单独成词元，其余按空白切分。
func tokenize(s string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{' || c == '}' || c == '.':
			tokens = append(tokens, string(c))
			i++
		case c == '<':
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return nil, fmt.Errorf("URI未闭合")
			}
			tokens = append(tokens, s[i:i+end+1])
			i += end + 1
		case c == '"':
			j := i + 1
			for j < len(s) {
				if s[j] == '\\' {
					j += 2
					continue
				}
				if s[j] == '"' {
					break
				}
				j++
			}
			if j >= len(s) {
				return nil, fmt.Errorf("字面量未闭合")
			}
			tokens = append(tokens, s[i:j+1])
			i = j + 1
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\n\r{}.<\"", rune(s[j])) {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		}
	}
	return tokens, nil
}

func parseTerm(tok string) (term, error) {
	switch {
	case strings.HasPrefix(tok, "?"):
		if len(tok) == 1 {
			return term{}, fmt.Errorf("变量名为空")
		}
		return term{isVar: true, value: tok[1:]}, nil
	case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">"):
		return term{value: tok[1 : len(tok)-1]}, nil
	case strings.HasPrefix(tok, "\"") && strings.HasSuffix(tok, "\"") && len(tok) >= 2:
		unquoted := strings.ReplaceAll(tok[1:len(tok)-1], `\"`, `"`)
		return term{literal: true, value: unquoted}, nil
	case tok == "a":
		// Turtle简写: a = rdf:type
		return term{value: rdf.PredType}, nil
	default:
		return term{}, fmt.Errorf("无法解析的词项: %s", tok)
	}
}

// parsePatterns 解析 { ... } 内的基本图模式
func parsePatterns(tokens []string, pos int) ([]triplePattern, int, error) {
	if pos >= len(tokens) || tokens[pos] != "{" {
		return nil, pos, fmt.Errorf("期望 '{'")
	}
	pos++

	var patterns []triplePattern
	for pos < len(tokens) && tokens[pos] != "}" {
		if tokens[pos] == "." {
			pos++
			continue
		}
		if pos+2 >= len(tokens) {
			return nil, pos, fmt.Errorf("三元组模式不完整")
		}

		var pat triplePattern
		var err error
		if pat.s, err = parseTerm(tokens[pos]); err != nil {
			return nil, pos, err
		}
		if pat.p, err = parseTerm(tokens[pos+1]); err != nil {
			return nil, pos, err
		}
		if pat.o, err = parseTerm(tokens[pos+2]); err != nil {
			return nil, pos, err
		}
		patterns = append(patterns, pat)
		pos += 3
	}

	if pos >= len(tokens) {
		return nil, pos, fmt.Errorf("期望 '}'")
	}
	return patterns, pos + 1, nil
}

func (e *Engine) execSelect(tokens []string) (*Result, error) {
	pos := 0
	distinct := false
	if pos < len(tokens) && strings.EqualFold(tokens[pos], "DISTINCT") {
		distinct = true
		pos++
	}

	var selectVars []string
	star := false
	for pos < len(tokens) && !strings.EqualFold(tokens[pos], "WHERE") && tokens[pos] != "{" {
		tok := tokens[pos]
		if tok == "*" {
			star = true
		} else if strings.HasPrefix(tok, "?") && len(tok) > 1 {
			selectVars = append(selectVars, tok[1:])
		} else {
			return nil, fmt.Errorf("SELECT 变量列表中出现意外词元: %s", tok)
		}
		pos++
	}
	if pos < len(tokens) && strings.EqualFold(tokens[pos], "WHERE") {
		pos++
	}

	patterns, pos, err := parsePatterns(tokens, pos)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("图模式为空")
	}

	limit := 0
	if pos < len(tokens) && strings.EqualFold(tokens[pos], "LIMIT") {
		if pos+1 >= len(tokens) {
			return nil, fmt.Errorf("LIMIT 缺少数值")
		}
		limit, err = strconv.Atoi(tokens[pos+1])
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("LIMIT 数值无效: %s", tokens[pos+1])
		}
		pos += 2
	}
	if pos < len(tokens) {
		return nil, fmt.Errorf("查询尾部出现意外词元: %s", tokens[pos])
	}

	if star {
		selectVars = collectVars(patterns)
	}
	if len(selectVars) == 0 {
		return nil, fmt.Errorf("SELECT 变量列表为空")
	}

	bindings, err := e.evalPatterns(patterns)
	if err != nil {
		return nil, err
	}

	result := &Result{Vars: selectVars}
	seen := make(map[string]bool)
	for _, b := range bindings {
		row := make(map[string]Binding, len(selectVars))
		for _, v := range selectVars {
			if val, ok := b[v]; ok {
				row[v] = val
			}
		}
		if distinct {
			key := rowKey(selectVars, row)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		result.Rows = append(result.Rows, row)
		if limit > 0 && len(result.Rows) >= limit {
			break
		}
	}

	return result, nil
}

func (e *Engine) execAsk(tokens []string) (*Result, error) {
	pos := 0
	if pos < len(tokens) && strings.EqualFold(tokens[pos], "WHERE") {
		pos++
	}

	patterns, pos, err := parsePatterns(tokens, pos)
	if err != nil {
		return nil, err
	}
	if pos < len(tokens) {
		return nil, fmt.Errorf("查询尾部出现意外词元: %s", tokens[pos])
	}

	bindings, err := e.evalPatterns(patterns)
	if err != nil {
		return nil, err
	}

	answer := len(bindings) > 0
	return &Result{Bool: &answer}, nil
}

func (e *Engine) execDescribe(tokens []string) (*Result, error) {
	if len(tokens) != 1 {
		return nil, fmt.Errorf("DESCRIBE 只支持单个URI")
	}
	t, err := parseTerm(tokens[0])
	if err != nil || t.isVar || t.literal {
		return nil, fmt.Errorf("DESCRIBE 需要 <uri> 形式的参数")
	}

	triples, err := e.store.MatchPattern(&t.value, nil, nil, nil)
	if err != nil {
		return nil, err
	}

	result := &Result{Vars: []string{"subject", "predicate", "object"}}
	for _, tr := range triples {
		result.Rows = append(result.Rows, map[string]Binding{
			"subject":   {Value: tr.Subject, IsURI: true},
			"predicate": {Value: tr.Predicate, IsURI: true},
			"object":    {Value: tr.Object, IsURI: !tr.Literal},
		})
	}
	return result, nil
}

// evalPatterns 逐个模式做嵌套循环连接
func (e *Engine) evalPatterns(patterns []triplePattern) ([]map[string]Binding, error) {
	bindings := []map[string]Binding{{}}

	for _, pat := range patterns {
		var next []map[string]Binding
		for _, b := range bindings {
			s := resolveTerm(pat.s, b)
			p := resolveTerm(pat.p, b)
			o := resolveTerm(pat.o, b)
			oLit := resolveObjectLiteral(pat.o, b)

			matches, err := e.store.MatchPattern(s, p, o, oLit)
			if err != nil {
				return nil, err
			}

			for _, t := range matches {
				nb := extendBinding(b, pat, t)
				if nb != nil {
					next = append(next, nb)
				}
			}
		}
		bindings = next
		if len(bindings) == 0 {
			break
		}
	}

	return bindings, nil
}

// resolveTerm 词项为常量或已绑定变量时返回具体值，否则返回nil（不限）
func resolveTerm(t term, b map[string]Binding) *string {
	if !t.isVar {
		v := t.value
		return &v
	}
	if bound, ok := b[t.value]; ok {
		v := bound.Value
		return &v
	}
	return nil
}

// resolveObjectLiteral 宾语为常量或已绑定变量时返回其字面量性质，
// 否则返回nil（不限）
func resolveObjectLiteral(t term, b map[string]Binding) *bool {
	if !t.isVar {
		lit := t.literal
		return &lit
	}
	if bound, ok := b[t.value]; ok {
		lit := !bound.IsURI
		return &lit
	}
	return nil
}

func extendBinding(b map[string]Binding, pat triplePattern, t rdf.Triple) map[string]Binding {
	nb := make(map[string]Binding, len(b)+3)
	for k, v := range b {
		nb[k] = v
	}

	bind := func(tm term, value string, isURI bool) bool {
		if !tm.isVar {
			return true
		}
		if existing, ok := nb[tm.value]; ok {
			return existing.Value == value
		}
		nb[tm.value] = Binding{Value: value, IsURI: isURI}
		return true
	}

	if !bind(pat.s, t.Subject, true) {
		return nil
	}
	if !bind(pat.p, t.Predicate, true) {
		return nil
	}
	if !bind(pat.o, t.Object, !t.Literal) {
		return nil
	}
	return nb
}

func collectVars(patterns []triplePattern) []string {
	var vars []string
	seen := make(map[string]bool)
	add := func(t term) {
		if t.isVar && !seen[t.value] {
			seen[t.value] = true
			vars = append(vars, t.value)
		}
	}
	for _, p := range patterns {
		add(p.s)
		add(p.p)
		add(p.o)
	}
	return vars
}

func rowKey(vars []string, row map[string]Binding) string {
	var sb strings.Builder
	for _, v := range vars {
		sb.WriteString(row[v].Value)
		sb.WriteByte(0)
	}
	return sb.String()
}
