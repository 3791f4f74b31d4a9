package wire_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scsp/pkg/wire"
)

func TestBytes_Marshal(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(wire.PollResponse{HasMsg: true, Msg: wire.Bytes{1, 2, 255}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"has_msg":true,"msg":[1,2,255]}`, string(out))

	out, err = json.Marshal(wire.PollResponse{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"has_msg":false,"msg":[]}`, string(out))
}

func TestBytes_Unmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    wire.Bytes
		wantErr bool
	}{
		{name: "array", input: `[1, 2, 3]`, want: wire.Bytes{1, 2, 3}},
		{name: "empty_array", input: `[]`, want: wire.Bytes{}},
		{name: "base64", input: `"AQID"`, want: wire.Bytes{1, 2, 3}},
		{name: "null", input: `null`, want: nil},
		{name: "out_of_range", input: `[256]`, wantErr: true},
		{name: "negative", input: `[-1]`, wantErr: true},
		{name: "not_a_number", input: `["a"]`, wantErr: true},
		{name: "bad_base64", input: `"%%%"`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got wire.Bytes
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, wire.ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteRequest_Validate(t *testing.T) {
	t.Parallel()

	var req wire.WriteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"channel":"development","msg":[1,2,3]}`), &req))
	assert.NoError(t, req.Validate())
	assert.Equal(t, wire.Bytes{1, 2, 3}, req.Msg)

	empty := wire.WriteRequest{Channel: "c", Msg: wire.Bytes{}}
	assert.NoError(t, empty.Validate())

	assert.ErrorIs(t, wire.WriteRequest{Msg: wire.Bytes{1}}.Validate(), wire.ErrMissingField)
	assert.ErrorIs(t, wire.WriteRequest{Channel: "c"}.Validate(), wire.ErrMissingField)
}

func TestInfo_JSON(t *testing.T) {
	t.Parallel()

	info := wire.Info{Channels: []wire.ChannelSummary{
		{Channel: "development", Handlers: []string{"client-1"}},
	}}
	out, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{"channels":[{"channel":"development","handlers":["client-1"]}]}`, string(out))
}
