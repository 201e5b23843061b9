package server

import (
	"encoding/json"
	"net/http"

	"TianLuoDiWang/internal/ingest"
	"TianLuoDiWang/internal/rdf"
	"TianLuoDiWang/internal/sparql"
	"TianLuoDiWang/internal/utils"
	"TianLuoDiWang/internal/vulnsrc"
)

// Server HTTP接入层：摄取触发 + 只读SPARQL查询
type Server struct {
	pipeline *ingest.Pipeline
	executor *sparql.Executor
	store    *rdf.Store
	logger   *utils.Logger
}

func NewServer(pipeline *ingest.Pipeline, executor *sparql.Executor, store *rdf.Store) *Server {
	return &Server{
		pipeline: pipeline,
		executor: executor,
		store:    store,
		logger:   utils.NewLogger("http-server"),
	}
}

// Routes 注册路由
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ingest/nvd", s.handleIngest)
	mux.HandleFunc("POST /api/sparql", s.handleSPARQL)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("HTTP服务启动: %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

type ingestRequest struct {
	Limit int `json:"limit"`
}

type ingestResponse struct {
	Ingested int    `json:"ingested"`
	Error    string `json:"error,omitempty"`
}

// handleIngest 触发一次有界NVD摄取，返回新插入的漏洞数
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	req := ingestRequest{Limit: 100}
	if r.Body != nil {
		// 请求体为空时沿用默认上限
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	count, err := s.pipeline.Run(r.Context(), vulnsrc.FetchOptions{Limit: req.Limit})
	if err != nil {
		s.logger.Error("摄取失败: %v", err)
		writeJSON(w, http.StatusInternalServerError, ingestResponse{Ingested: count, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Ingested: count})
}

type sparqlRequest struct {
	Query string `json:"query"`
}

// handleSPARQL 执行只读SPARQL查询，按Accept头协商响应格式
func (s *Server) handleSPARQL(w http.ResponseWriter, r *http.Request) {
	var req sparqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不是合法JSON")
		return
	}

	qtype, err := sparql.ValidateQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("执行 %s 查询", qtype)

	result, err := s.executor.Execute(r.Context(), req.Query)
	if err != nil {
		// 执行失败（含超时）一律按服务端错误上报，带上底层原因
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	mediaType := sparql.NegotiateMediaType(r.Header.Get("Accept"))
	data, contentType, err := sparql.SerializeResult(result, mediaType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type healthResponse struct {
	Status  string `json:"status"`
	Triples int    `json:"triples"`
}

// handleHealth 存储健康状态与三元组总数
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.TripleCount()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Triples: count})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
