package api

// JSON-RPC 2.0 request structure
type JSONRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// JSON-RPC 2.0 response structure
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSON-RPC 2.0 error structure
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// get_keyword_documentation and get_keyword_arguments parameters
type KeywordNameParams struct {
	Name string `json:"name"`
}

// connect parameters, positional like the keyword's own arguments
type ConnectParams struct {
	Args []interface{} `json:"args"`
}

// connect result
type ConnectResult struct {
	Session string `json:"session"`
	Conn    string `json:"conn"`
}

// run_keyword parameters. Session is required for every keyword except
// the connect keyword.
type RunKeywordParams struct {
	Session string        `json:"session"`
	Name    string        `json:"name"`
	Args    []interface{} `json:"args"`
}

// Keyword outcome statuses
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// run_keyword result. Keyword failures are reported here rather than as
// JSON-RPC errors so the harness can fail just the one step.
type RunKeywordResult struct {
	Status    string      `json:"status"`
	Return    interface{} `json:"return"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
}

// disconnect parameters
type DisconnectParams struct {
	Session string `json:"session"`
}

// JSON-RPC error codes (following standard)
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)
