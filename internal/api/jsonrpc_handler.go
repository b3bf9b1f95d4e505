package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leafsii/kvkeywords/internal/keywords"
	"github.com/leafsii/kvkeywords/internal/session"
	"github.com/leafsii/kvkeywords/pkg/facade"
	"github.com/spf13/cast"
)

// Implementation-defined server error, used when connect fails
const JSONRPCServerError = -32000

// HandleJSONRPC handles JSON-RPC 2.0 requests
func (h *Handler) HandleJSONRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Parse JSON-RPC request
	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONRPCError(w, nil, JSONRPCParseError, "Parse error", err.Error())
		return
	}

	// Validate JSON-RPC version
	if req.JSONRPC != "2.0" {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidRequest, "Invalid Request", "jsonrpc must be '2.0'")
		return
	}

	// Handle method
	switch req.Method {
	case "get_keyword_names":
		h.sendJSONRPCResult(w, req.ID, h.library.Names())
	case "get_keyword_documentation":
		h.handleKeywordInfo(w, &req, func(kw *keywords.Keyword) interface{} { return kw.Doc })
	case "get_keyword_arguments":
		h.handleKeywordInfo(w, &req, func(kw *keywords.Keyword) interface{} { return toKeywordDTO(kw).Args })
	case "connect":
		h.handleConnect(w, r, &req)
	case "run_keyword":
		h.handleRunKeyword(w, r, &req)
	case "disconnect":
		h.handleDisconnect(w, r, &req)
	default:
		h.sendJSONRPCError(w, req.ID, JSONRPCMethodNotFound, "Method not found", fmt.Sprintf("Method '%s' not found", req.Method))
	}
}

// decodeParams re-decodes the generic params into a typed struct
func decodeParams(req *JSONRPCRequest, params interface{}) error {
	if req.Params == nil {
		return errors.New("params are required")
	}
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return fmt.Errorf("failed to parse parameters: %w", err)
	}
	return json.Unmarshal(paramsBytes, params)
}

// toStrings converts JSON scalars to keyword arguments. null becomes "".
func toStrings(values []interface{}) ([]string, error) {
	args := make([]string, len(values))
	for i, v := range values {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = s
	}
	return args, nil
}

func (h *Handler) handleKeywordInfo(w http.ResponseWriter, req *JSONRPCRequest, info func(*keywords.Keyword) interface{}) {
	var params KeywordNameParams
	if err := decodeParams(req, &params); err != nil {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", err.Error())
		return
	}

	kw, ok := h.library.Keyword(params.Name)
	if !ok {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Unknown keyword", fmt.Sprintf("No keyword named '%s'", params.Name))
		return
	}
	h.sendJSONRPCResult(w, req.ID, info(kw))
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request, req *JSONRPCRequest) {
	var params ConnectParams
	if err := decodeParams(req, &params); err != nil {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", err.Error())
		return
	}
	args, err := toStrings(params.Args)
	if err != nil {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", err.Error())
		return
	}

	s, err := h.openSession(r.Context(), args)
	if err != nil {
		code := JSONRPCServerError
		if keywords.ErrorType(err) == "ArgumentError" {
			code = JSONRPCInvalidParams
		}
		h.sendJSONRPCError(w, req.ID, code, "Connect failed", map[string]string{
			"error":      err.Error(),
			"error_type": errorType(err),
		})
		return
	}

	h.sendJSONRPCResult(w, req.ID, ConnectResult{Session: s.ID, Conn: s.Conn.String()})
}

func (h *Handler) handleRunKeyword(w http.ResponseWriter, r *http.Request, req *JSONRPCRequest) {
	var params RunKeywordParams
	if err := decodeParams(req, &params); err != nil {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", err.Error())
		return
	}
	if params.Name == "" {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", "name is required")
		return
	}
	args, err := toStrings(params.Args)
	if err != nil {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", err.Error())
		return
	}

	ctx := r.Context()
	var result interface{}

	if keywords.IsConnect(params.Name) {
		var s *session.Session
		s, err = h.openSession(ctx, args)
		if err == nil {
			result = s.ID
		}
	} else {
		var s *session.Session
		s, err = h.sessions.Get(params.Session)
		if err == nil {
			result, err = h.library.Run(ctx, s.Conn, params.Name, args)
		}
	}

	if err != nil {
		h.logger.Infow("Keyword failed",
			"keyword", params.Name,
			"session", params.Session,
			"error", err,
		)
		h.sendJSONRPCResult(w, req.ID, RunKeywordResult{
			Status:    StatusFail,
			Error:     err.Error(),
			ErrorType: errorType(err),
		})
		return
	}

	h.logger.Debugw("Keyword passed", "keyword", params.Name, "session", params.Session)
	h.sendJSONRPCResult(w, req.ID, RunKeywordResult{Status: StatusPass, Return: result})
}

func (h *Handler) handleDisconnect(w http.ResponseWriter, r *http.Request, req *JSONRPCRequest) {
	var params DisconnectParams
	if err := decodeParams(req, &params); err != nil {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Invalid params", err.Error())
		return
	}

	if err := h.sessions.Close(r.Context(), params.Session); err != nil {
		h.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "Unknown session", err.Error())
		return
	}
	h.sendJSONRPCResult(w, req.ID, true)
}

func (h *Handler) openSession(ctx context.Context, args []string) (*session.Session, error) {
	return h.sessions.Open(ctx, func(ctx context.Context) (*facade.Connection, error) {
		return h.library.Connect(ctx, args)
	})
}

// errorType extends keywords.ErrorType with session failures
func errorType(err error) string {
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrTooManySessions) {
		return "UsageError"
	}
	return keywords.ErrorType(err)
}

func (h *Handler) sendJSONRPCResult(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	errorResp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	w.WriteHeader(http.StatusOK) // JSON-RPC errors are sent with HTTP 200
	json.NewEncoder(w).Encode(errorResp)
}
