package sparql

import (
	"errors"
	"testing"
)

func TestValidateQueryReadOnly(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"SELECT ?s WHERE { ?s ?p ?o }", "SELECT"},
		{"select ?s where { ?s ?p ?o }", "SELECT"},
		{"  \n\tASK { ?s ?p ?o }", "ASK"},
		{"DESCRIBE <http://example.org/x>", "DESCRIBE"},
		{"CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }", "CONSTRUCT"},
		{"(SELECT ?s WHERE { ?s ?p ?o })", "SELECT"},
		{"( ( select ?s where { ?s ?p ?o } ) )", "SELECT"},
	}

	for _, c := range cases {
		got, err := ValidateQuery(c.query)
		if err != nil {
			t.Errorf("查询 %q 应通过校验, 实际报错: %v", c.query, err)
			continue
		}
		if got != c.want {
			t.Errorf("查询 %q 期望类型 %s, 实际得到 %s", c.query, c.want, got)
		}
	}
}

func TestValidateQueryRejectsWrites(t *testing.T) {
	rejected := []string{
		"DROP GRAPH <http://example.org/g>",
		"INSERT DATA { <s> <p> <o> }",
		"DELETE WHERE { ?s ?p ?o }",
		"CLEAR ALL",
		"LOAD <http://example.org/data>",
	}

	for _, q := range rejected {
		if _, err := ValidateQuery(q); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("写操作 %q 应被拒绝, 实际错误: %v", q, err)
		}
	}
}

func TestValidateQueryRejectsEmptyAndGarbage(t *testing.T) {
	for _, q := range []string{"", "   \n\t  ", "((((", "123 SELECT"} {
		if _, err := ValidateQuery(q); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("查询 %q 应被拒绝, 实际错误: %v", q, err)
		}
	}
}
