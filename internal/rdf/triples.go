package rdf

import (
	"net/url"
	"strconv"
	"strings"

	"TianLuoDiWang/internal/model"
)

// Triple 图三元组；Literal 标记宾语是字面量还是节点URI
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Literal   bool   `json:"literal"`
}

// escape 对标识符做百分号转义（保留字符之外全部转义）
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Projector 将漏洞模型投影为固定顺序的三元组集合
type Projector struct {
	base string
}

func NewProjector(base string) *Projector {
	return &Projector{base: strings.TrimRight(base, "/")}
}

func (p *Projector) VulnURI(id string) string {
	return p.base + "/vuln/" + escape(id)
}

func (p *Projector) SoftwareURI(name string) string {
	return p.base + "/software/" + escape(name)
}

func (p *Projector) AdvisoryURI(id string) string {
	return p.base + "/advisory/" + escape(id)
}

// VulnerabilityToTriples 投影漏洞为三元组。纯函数：同一输入永远产出
// 同一组三元组；缺失字段不产出对应三元组，而不是产出空字面量。
func (p *Projector) VulnerabilityToTriples(v model.Vulnerability) []Triple {
	subj := p.VulnURI(v.ID)
	triples := []Triple{
		{Subject: subj, Predicate: PredType, Object: ClassVulnerability},
		{Subject: subj, Predicate: PredCVEID, Object: v.ID, Literal: true},
	}

	if v.Description != "" {
		triples = append(triples, Triple{Subject: subj, Predicate: PredDescription, Object: v.Description, Literal: true})
	}
	if v.CVSSScore != nil {
		score := strconv.FormatFloat(*v.CVSSScore, 'f', -1, 64)
		triples = append(triples, Triple{Subject: subj, Predicate: PredCVSSScore, Object: score, Literal: true})
	}
	if v.CVSSVector != "" {
		triples = append(triples, Triple{Subject: subj, Predicate: PredCVSSVector, Object: v.CVSSVector, Literal: true})
	}
	if v.Published != nil {
		triples = append(triples, Triple{Subject: subj, Predicate: PredPublishedDate, Object: v.Published.UTC().Format("2006-01-02T15:04:05Z"), Literal: true})
	}
	if v.Modified != nil {
		triples = append(triples, Triple{Subject: subj, Predicate: PredModifiedDate, Object: v.Modified.UTC().Format("2006-01-02T15:04:05Z"), Literal: true})
	}

	// 受影响软件投影为独立可寻址的节点，节点标识由名称决定
	for _, s := range v.Affected {
		if s.Name == "" {
			continue
		}
		node := p.SoftwareURI(s.Name)
		triples = append(triples,
			Triple{Subject: subj, Predicate: PredAffectsSoftware, Object: node},
			Triple{Subject: node, Predicate: PredName, Object: s.Name, Literal: true},
		)
		if s.Category != "" {
			triples = append(triples, Triple{Subject: node, Predicate: PredApplicationCategory, Object: s.Category, Literal: true})
		}
		if s.Version != "" {
			triples = append(triples, Triple{Subject: node, Predicate: PredSoftwareVersion, Object: s.Version, Literal: true})
		}
	}

	for _, ref := range v.References {
		if ref == "" {
			continue
		}
		triples = append(triples, Triple{Subject: subj, Predicate: PredURL, Object: ref, Literal: true})
	}

	for _, a := range v.Advisories {
		advID := a.ID
		if advID == "" {
			advID = v.ID
		}
		node := p.AdvisoryURI(advID)
		triples = append(triples,
			Triple{Subject: subj, Predicate: PredHasAdvisory, Object: node},
			Triple{Subject: node, Predicate: PredType, Object: ClassAdvisory},
		)
		if a.Title != "" {
			triples = append(triples, Triple{Subject: node, Predicate: PredTitle, Object: a.Title, Literal: true})
		}
		if a.URL != "" {
			triples = append(triples, Triple{Subject: node, Predicate: PredIdentifier, Object: a.URL, Literal: true})
		}
		if a.Publisher != "" {
			triples = append(triples, Triple{Subject: node, Predicate: PredPublisher, Object: a.Publisher, Literal: true})
		}
	}

	return triples
}
