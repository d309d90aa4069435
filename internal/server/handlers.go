package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alvera-ai/interoperability-template-generator/internal/llm"
	"github.com/alvera-ai/interoperability-template-generator/internal/prompt"
	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
	"github.com/alvera-ai/interoperability-template-generator/internal/store"
)

type loadSpecRequest struct {
	Name    string `json:"name"`
	Format  string `json:"format"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

func (s *Server) handleLoadSpec(c *gin.Context) {
	var req loadSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch {
	case req.Content == "" && req.URL == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide the specification as content or url"})
		return
	case req.Content != "" && req.URL != "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide either content or url, not both"})
		return
	case req.URL != "":
		raw, err := fetchSpec(c.Request.Context(), req.URL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		req.Content = string(raw)
	}

	sp, err := spec.Load([]byte(req.Content), spec.Format(req.Format))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sp.ResolveRefs(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := req.Name
	if name == "" {
		name = "spec_" + time.Now().Format("20060102_150405")
	}
	if s.opt.Store != nil {
		if _, err := s.opt.Store.SaveSpec(name, req.Content); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	s.replaceSpec(sp, name)

	c.JSON(http.StatusOK, gin.H{
		"name":       name,
		"title":      sp.Title,
		"version":    sp.Version,
		"servers":    sp.Servers(),
		"operations": len(sp.Operations("GET")),
	})
}

var specFetchClient = &http.Client{Timeout: 30 * time.Second}

// fetchSpec downloads a specification document for load-by-URL.
func fetchSpec(ctx context.Context, specURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, specURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid specification url: %w", err)
	}
	resp, err := specFetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch specification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch specification: server returned status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read specification: %w", err)
	}
	return raw, nil
}

func (s *Server) handleSpecInfo(c *gin.Context) {
	sp, name, ok := s.currentSpec()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no specification loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        name,
		"title":       sp.Title,
		"version":     sp.Version,
		"description": sp.Description,
		"servers":     sp.Servers(),
	})
}

type operationView struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	OperationID string `json:"operation_id,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

func (s *Server) handleListOperations(c *gin.Context) {
	sp, _, ok := s.currentSpec()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no specification loaded"})
		return
	}
	var out []operationView
	for _, op := range sp.Operations("GET") {
		out = append(out, operationView{
			Path:        op.Path,
			Method:      op.Method,
			OperationID: op.OperationID,
			Summary:     op.Summary,
		})
	}
	c.JSON(http.StatusOK, gin.H{"operations": out})
}

type parameterView struct {
	Name        string   `json:"name"`
	In          string   `json:"in"`
	Required    bool     `json:"required"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	MinLength   *int64   `json:"min_length,omitempty"`
	MaxLength   *int64   `json:"max_length,omitempty"`
}

func (s *Server) handleOperationParameters(c *gin.Context) {
	sp, _, ok := s.currentSpec()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no specification loaded"})
		return
	}
	path := c.Query("path")
	op, found := sp.Lookup(path, "GET")
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no GET operation at %q", path)})
		return
	}
	var out []parameterView
	for _, p := range op.Parameters() {
		out = append(out, parameterView{
			Name:        p.Name,
			In:          p.In,
			Required:    p.Required,
			Type:        p.Type,
			Description: p.Description,
			Minimum:     p.Minimum,
			Maximum:     p.Maximum,
			MinLength:   p.MinLength,
			MaxLength:   p.MaxLength,
		})
	}
	c.JSON(http.StatusOK, gin.H{"path": op.Path, "parameters": out})
}

type callRequest struct {
	Path    string            `json:"path" binding:"required"`
	Prompt  string            `json:"prompt"`
	Params  map[string]string `json:"params"`
	Headers map[string]string `json:"headers"`
	Server  string            `json:"server"`
}

func (s *Server) handleCall(c *gin.Context) {
	sp, specName, ok := s.currentSpec()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no specification loaded"})
		return
	}

	var req callRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, found := sp.Lookup(req.Path, "GET")
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no GET operation at %q", req.Path)})
		return
	}

	baseURL := req.Server
	if baseURL == "" {
		baseURL = sp.BaseURL()
	}
	if baseURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "specification declares no servers and no server override was given"})
		return
	}

	// Prompt-extracted values fill gaps; explicit values win. Both go
	// through identical validation in BuildURL.
	values := prompt.Extract(req.Prompt, op.Parameters())
	for k, v := range req.Params {
		if v != "" {
			values[k] = v
		}
	}

	result, err := s.exec.Call(c.Request.Context(), op, baseURL, values, req.Headers)
	if err != nil {
		var paramErr *spec.ParameterError
		if errors.As(err, &paramErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      paramErr.Message,
				"parameter":  paramErr.Name,
				"constraint": paramErr.Constraint,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	var resultID uint
	if s.opt.Store != nil {
		resultID, err = s.opt.Store.SaveResult(&store.CallResult{
			UserPrompt:      req.Prompt,
			Endpoint:        op.Path,
			Method:          op.Method,
			URL:             result.URL,
			RequestParams:   store.MarshalJSONField(values),
			StatusCode:      result.StatusCode,
			ResponseHeaders: store.MarshalJSONField(result.Headers),
			ResponseBody:    string(result.Body),
			DurationMS:      result.Duration.Milliseconds(),
			SchemaUsed:      specName,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	body := result.BodyJSON
	if body == nil {
		body = string(result.Body)
	}
	c.JSON(http.StatusOK, gin.H{
		"result_id":   resultID,
		"url":         result.URL,
		"status_code": result.StatusCode,
		"headers":     result.Headers,
		"body":        body,
		"duration_ms": result.Duration.Milliseconds(),
	})
}

func (s *Server) handleListResults(c *gin.Context) {
	if s.opt.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	results, err := s.opt.Store.RecentResults(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) handleGetResult(c *gin.Context) {
	if s.opt.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return
	}
	result, err := s.opt.Store.Result(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type createTableRequest struct {
	SQL string `json:"sql" binding:"required"`
}

func (s *Server) handleCreateTable(c *gin.Context) {
	if s.opt.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	table, err := s.opt.Store.CreateTableFromSQL(req.SQL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"table": table})
}

type templateRequest struct {
	Path   string `json:"path" binding:"required"`
	Status string `json:"status"`
	Table  string `json:"table" binding:"required"`
}

func (s *Server) handleGenerateTemplate(c *gin.Context) {
	if s.opt.LLM == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "template generation not available, configure an anthropic API key"})
		return
	}
	if s.opt.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	sp, specName, ok := s.currentSpec()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no specification loaded"})
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, found := sp.Lookup(req.Path, "GET")
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no GET operation at %q", req.Path)})
		return
	}
	schema, ok := op.ResponseSchema(req.Status)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "operation declares no JSON response schema"})
		return
	}
	ddl, err := s.opt.Store.TableDDL(req.Table)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	mapping, err := s.opt.LLM.GenerateTemplate(c.Request.Context(), specName, schema, ddl, req.Table)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": mapping})
}

type applyTemplateRequest struct {
	ResultID uint         `json:"result_id" binding:"required"`
	Mapping  *llm.Mapping `json:"mapping" binding:"required"`
}

func (s *Server) handleApplyTemplate(c *gin.Context) {
	if s.opt.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	var req applyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Mapping.Table == "" || len(req.Mapping.Columns) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mapping needs a table and at least one column"})
		return
	}

	result, err := s.opt.Store.Result(req.ResultID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var decoded any
	if err := json.Unmarshal([]byte(result.ResponseBody), &decoded); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stored response body is not JSON"})
		return
	}

	// Arrays map row per element, a single object maps one row.
	var objects []map[string]any
	switch v := decoded.(type) {
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				objects = append(objects, obj)
			}
		}
	case map[string]any:
		objects = append(objects, v)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "stored response body is neither object nor array"})
		return
	}

	inserted := 0
	for _, obj := range objects {
		row := req.Mapping.Apply(obj)
		if len(row) == 0 {
			continue
		}
		if err := s.opt.Store.InsertRow(req.Mapping.Table, row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "inserted": inserted})
			return
		}
		inserted++
	}
	c.JSON(http.StatusOK, gin.H{"table": req.Mapping.Table, "inserted": inserted})
}
