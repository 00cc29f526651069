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

// StartEncode launches a transcode job.
func (c *Client) StartEncode(spec EncodeSpec) (*StartJobResponse, error) {
	var resp StartJobResponse
	if err := c.client.Call("Toolbox.StartEncode", StartEncodeRequest{Spec: spec}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartExtractAudio launches an audio extraction job.
func (c *Client) StartExtractAudio(spec ExtractAudioSpec) (*StartJobResponse, error) {
	var resp StartJobResponse
	if err := c.client.Call("Toolbox.StartExtractAudio", StartExtractAudioRequest{Spec: spec}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartTrim launches a lossless trim job.
func (c *Client) StartTrim(spec TrimSpec) (*StartJobResponse, error) {
	var resp StartJobResponse
	if err := c.client.Call("Toolbox.StartTrim", StartTrimRequest{Spec: spec}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartGif launches a GIF conversion job.
func (c *Client) StartGif(spec GifSpec) (*StartJobResponse, error) {
	var resp StartJobResponse
	if err := c.client.Call("Toolbox.StartGif", StartGifRequest{Spec: spec}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartDownload launches a download job.
func (c *Client) StartDownload(spec DownloadSpec) (*StartJobResponse, error) {
	var resp StartJobResponse
	if err := c.client.Call("Toolbox.StartDownload", StartDownloadRequest{Spec: spec}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel requests termination of the active job.
func (c *Client) Cancel() (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.client.Call("Toolbox.Cancel", CancelRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Toolbox.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History retrieves recent job outcomes.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("Toolbox.History", HistoryRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryClear removes all recorded outcomes.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	var resp HistoryClearResponse
	if err := c.client.Call("Toolbox.HistoryClear", HistoryClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Inspect probes a media file via the daemon.
func (c *Client) Inspect(path string) (*InspectResponse, error) {
	var resp InspectResponse
	if err := c.client.Call("Toolbox.Inspect", InspectRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Encoders reports hardware encoder availability.
func (c *Client) Encoders() (*EncodersResponse, error) {
	var resp EncodersResponse
	if err := c.client.Call("Toolbox.Encoders", EncodersRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Toolbox.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
