package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

const protocolVersion = "2025-03-26"

// Client is a streamable-HTTP MCP client. Requests are JSON-RPC 2.0 over
// POST; the server may answer with a plain JSON body or a text/event-stream,
// both are handled. A session id issued during initialization is echoed on
// every subsequent request.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        log.Logger

	sessionID atomic.Value // string
	nextID    atomic.Int64
}

var _ Session = &Client{}

// NewClient creates a client for the given base URL. The MCP endpoint path
// is appended unless the URL already ends with it.
func NewClient(baseURL string, logger log.Logger) *Client {
	if logger == nil {
		logger = log.Root()
	}
	endpoint := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(endpoint, "/mcp") {
		endpoint += "/mcp"
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		log:        logger,
	}
}

// Endpoint returns the resolved MCP endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// Initialize performs the MCP initialization handshake and returns the
// server's advertised identity.
func (c *Client) Initialize(ctx context.Context) (*ServerInfo, error) {
	params := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "mcp-acceptor",
			"version": "dev",
		},
	}
	var result struct {
		ProtocolVersion string     `json:"protocolVersion"`
		ServerInfo      ServerInfo `json:"serverInfo"`
	}
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return nil, errors.Wrap(err, "initialize failed")
	}
	if err := c.notify(ctx, "notifications/initialized", nil); err != nil {
		return nil, errors.Wrap(err, "initialized notification failed")
	}
	c.log.Debug("MCP session initialized",
		"server", result.ServerInfo.Name,
		"version", result.ServerInfo.Version,
		"protocol", result.ProtocolVersion)
	return &result.ServerInfo, nil
}

// CallTool implements the Session interface.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolResult, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	var result ToolResult
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return nil, errors.Wrapf(err, "tools/call %s", name)
	}
	return &result, nil
}

// ListResources implements the Session interface.
func (c *Client) ListResources(ctx context.Context) (*ResourceList, error) {
	var result ResourceList
	if err := c.call(ctx, "resources/list", map[string]interface{}{}, &result); err != nil {
		return nil, errors.Wrap(err, "resources/list")
	}
	return &result, nil
}

// ReadResource implements the Session interface.
func (c *Client) ReadResource(ctx context.Context, uri string) (*ResourceContents, error) {
	var result ResourceContents
	if err := c.call(ctx, "resources/read", map[string]interface{}{"uri": uri}, &result); err != nil {
		return nil, errors.Wrapf(err, "resources/read %s", uri)
	}
	return &result, nil
}

// ListPrompts implements the Session interface.
func (c *Client) ListPrompts(ctx context.Context) (*PromptList, error) {
	var result PromptList
	if err := c.call(ctx, "prompts/list", map[string]interface{}{}, &result); err != nil {
		return nil, errors.Wrap(err, "prompts/list")
	}
	return &result, nil
}

func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	id := c.nextID.Add(1)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get("Mcp-Session-Id"); sid != "" {
		c.sessionID.Store(sid)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	rpcResp, err := decodeResponse(resp, id)
	if err != nil {
		return err
	}
	if rpcResp.Error != nil {
		return errors.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return errors.Wrap(err, "unmarshaling result")
	}
	return nil
}

func (c *Client) notify(ctx context.Context, method string, params interface{}) error {
	body, err := json.Marshal(rpcNotification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, "marshaling notification")
	}
	resp, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sid, ok := c.sessionID.Load().(string); ok && sid != "" {
		req.Header.Set("Mcp-Session-Id", sid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "posting request")
	}
	return resp, nil
}

// decodeResponse reads a JSON-RPC response either from a plain JSON body or
// from a text/event-stream, returning the response matching the request id.
func decodeResponse(resp *http.Response, id int64) (*rpcResponse, error) {
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/event-stream") {
		var rpcResp rpcResponse
		if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
			return nil, errors.Wrap(err, "decoding response")
		}
		return &rpcResp, nil
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		var rpcResp rpcResponse
		if err := json.Unmarshal([]byte(data), &rpcResp); err != nil {
			// Not a response frame; keep scanning.
			continue
		}
		if rpcResp.ID == id && (rpcResp.Result != nil || rpcResp.Error != nil) {
			return &rpcResp, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading event stream")
	}
	return nil, fmt.Errorf("no response received for request %d", id)
}
