package rdf

// RDF 命名空间与谓词定义
const (
	NSVuln    = "http://tianluodiwang.example.org/vuln#"
	NSSchema  = "https://schema.org/"
	NSDCTerms = "http://purl.org/dc/terms/"
	NSRDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// 类型节点
const (
	ClassVulnerability = NSVuln + "Vulnerability"
	ClassAdvisory      = NSVuln + "Advisory"
)

// 漏洞命名空间谓词
const (
	PredType            = NSRDF + "type"
	PredCVEID           = NSVuln + "cveId"
	PredCVSSScore       = NSVuln + "cvssScore"
	PredCVSSVector      = NSVuln + "cvssVector"
	PredPublishedDate   = NSVuln + "publishedDate"
	PredModifiedDate    = NSVuln + "modifiedDate"
	PredAffectsSoftware = NSVuln + "affectsSoftware"
	PredHasAdvisory     = NSVuln + "hasAdvisory"
)

// schema.org 谓词
const (
	PredName                = NSSchema + "name"
	PredApplicationCategory = NSSchema + "applicationCategory"
	PredSoftwareVersion     = NSSchema + "softwareVersion"
	PredURL                 = NSSchema + "url"
)

// Dublin Core 谓词
const (
	PredDescription = NSDCTerms + "description"
	PredTitle       = NSDCTerms + "title"
	PredIdentifier  = NSDCTerms + "identifier"
	PredPublisher   = NSDCTerms + "publisher"
)
