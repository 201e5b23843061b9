package sparql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidQuery 查询未通过校验（只读形式之外的查询一律拒绝）
var ErrInvalidQuery = errors.New("查询未通过校验")

var allowedQueryTypes = map[string]bool{
	"SELECT":    true,
	"ASK":       true,
	"CONSTRUCT": true,
	"DESCRIBE":  true,
}

var leadingWordPattern = regexp.MustCompile(`^([A-Za-z]+)`)

// ValidateQuery 校验查询是否为只读形式，通过时返回查询类型（大写）。
// 在执行前拦截一切写操作（DROP、INSERT等）。
func ValidateQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("%w: 查询为空", ErrInvalidQuery)
	}

	// 去掉前导括号和空白后取首个关键词
	q = strings.TrimLeft(q, "( \t\r\n")
	m := leadingWordPattern.FindStringSubmatch(q)
	if m == nil {
		return "", fmt.Errorf("%w: 无法识别查询类型", ErrInvalidQuery)
	}

	qtype := strings.ToUpper(m[1])
	if !allowedQueryTypes[qtype] {
		return "", fmt.Errorf("%w: 不允许的查询类型 '%s'", ErrInvalidQuery, qtype)
	}

	return qtype, nil
}
