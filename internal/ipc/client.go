package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func call[Resp any](c *Client, method string, req any) (*Resp, error) {
	var resp Resp
	if err := c.client.Call(ServiceName+"."+method, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start requests the daemon runtime to start.
func (c *Client) Start() (*StartResponse, error) {
	return call[StartResponse](c, "Start", StartRequest{})
}

// Stop requests the daemon runtime to stop.
func (c *Client) Stop() (*StopResponse, error) {
	return call[StopResponse](c, "Stop", StopRequest{})
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	return call[StatusResponse](c, "Status", StatusRequest{})
}

// Attach attaches a video session.
func (c *Client) Attach(req AttachRequest) (*SessionResponse, error) {
	return call[SessionResponse](c, "Attach", req)
}

// Detach detaches the current session.
func (c *Client) Detach() (*DetachResponse, error) {
	return call[DetachResponse](c, "Detach", DetachRequest{})
}

// Play resumes playback.
func (c *Client) Play() (*SessionResponse, error) {
	return call[SessionResponse](c, "Play", SessionRequest{})
}

// Pause pauses playback.
func (c *Client) Pause() (*SessionResponse, error) {
	return call[SessionResponse](c, "Pause", SessionRequest{})
}

// Seek moves the playhead to position seconds.
func (c *Client) Seek(position float64) (*SessionResponse, error) {
	return call[SessionResponse](c, "Seek", SeekRequest{Position: position})
}

// PushCaption queues caption lines for the next cycle.
func (c *Client) PushCaption(lines []string) (*CaptionResponse, error) {
	return call[CaptionResponse](c, "PushCaption", CaptionRequest{Lines: lines})
}

// Enabled reads the enabled flag.
func (c *Client) Enabled() (*EnabledResponse, error) {
	return call[EnabledResponse](c, "SetEnabled", EnabledRequest{})
}

// SetEnabled persists the enabled flag.
func (c *Client) SetEnabled(enabled bool) (*EnabledResponse, error) {
	return call[EnabledResponse](c, "SetEnabled", EnabledRequest{Enabled: &enabled})
}

// Toggle flips the enabled flag.
func (c *Client) Toggle() (*EnabledResponse, error) {
	return call[EnabledResponse](c, "Toggle", ToggleRequest{})
}

// History lists results. Zero bounds return everything.
func (c *Client) History(start, end float64) (*HistoryResponse, error) {
	return call[HistoryResponse](c, "History", HistoryRequest{Start: start, End: end})
}

// Disputed lists the most frequent disputed claims.
func (c *Client) Disputed(count int) (*DisputedResponse, error) {
	return call[DisputedResponse](c, "Disputed", DisputedRequest{Count: count})
}

// ClearHistory clears history and the overlay panel.
func (c *Client) ClearHistory() (*ClearResponse, error) {
	return call[ClearResponse](c, "ClearHistory", ClearRequest{})
}

// Check runs an on-demand check through the daemon.
func (c *Client) Check(req CheckRequest) (*CheckResponse, error) {
	return call[CheckResponse](c, "Check", req)
}

// Overlay returns the overlay panel entries.
func (c *Client) Overlay() (*OverlayResponse, error) {
	return call[OverlayResponse](c, "Overlay", OverlayRequest{})
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	return call[LogTailResponse](c, "LogTail", req)
}
