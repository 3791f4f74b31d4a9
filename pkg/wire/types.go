package wire

import "fmt"

// Query parameter names of the /register endpoint.
const (
	ParamClientID = "client_id"
	ParamChannel  = "channel"
)

// WriteRequest is the body of POST /write.
type WriteRequest struct {
	Channel string `json:"channel"`
	Msg     Bytes  `json:"msg"`
}

// Validate reports a missing channel or msg. An empty msg array is valid.
func (r WriteRequest) Validate() error {
	if r.Channel == "" {
		return fmt.Errorf("%w: channel", ErrMissingField)
	}
	if r.Msg == nil {
		return fmt.Errorf("%w: msg", ErrMissingField)
	}
	return nil
}

// PollResponse is the body of a long-poll answer.
type PollResponse struct {
	HasMsg bool  `json:"has_msg"`
	Msg    Bytes `json:"msg"`
}

// ChannelSummary lists the handler identities registered on one channel.
type ChannelSummary struct {
	Channel  string   `json:"channel"`
	Handlers []string `json:"handlers"`
}

// Info is the body of GET /info.
type Info struct {
	Channels []ChannelSummary `json:"channels"`
}
