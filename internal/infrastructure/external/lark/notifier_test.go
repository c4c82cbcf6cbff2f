package lark

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMessageCreator struct {
	lastReq    *larkIm.CreateMessageReq
	createFunc func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error)
}

func (m *mockMessageCreator) Create(ctx context.Context, req *larkIm.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkIm.CreateMessageResp, error) {
	m.lastReq = req
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	id := "om_123"
	return &larkIm.CreateMessageResp{Data: &larkIm.CreateMessageRespData{MessageId: &id}}, nil
}

const sampleBody = `<!DOCTYPE html><html><head><style>body { color: red; }</style></head>
<body><div class="container">
  <div class="header"><h1>Approval Confirmed</h1></div>
  <p>Hello   Bob,</p>
  <a href="https://app.example.com/review/evt-1" class="button">Review &amp; Approve</a>
</div></body></html>`

func TestNotifier_Send(t *testing.T) {
	creator := &mockMessageCreator{}
	var body *larkIm.CreateMessageReqBody
	var built *larkIm.CreateMessageReq
	notifier := &Notifier{
		messages: creator,
		buildRequest: func(b *larkIm.CreateMessageReqBody) *larkIm.CreateMessageReq {
			body = b
			built = newCreateMessageReq(b)
			return built
		},
		logger: zap.NewNop(),
	}

	err := notifier.Send(context.Background(), "bob@b.example.com", "Approval Confirmed: Launch", sampleBody)
	require.NoError(t, err)
	require.NotNil(t, creator.lastReq)
	assert.Same(t, built, creator.lastReq)

	require.NotNil(t, body)
	assert.Equal(t, "bob@b.example.com", *body.ReceiveId)
	assert.Equal(t, "post", *body.MsgType)

	var post map[string]postBody
	require.NoError(t, json.Unmarshal([]byte(*body.Content), &post))
	msg := post["en_us"]
	assert.Equal(t, "Approval Confirmed: Launch", msg.Title)
	require.Len(t, msg.Content, 3)
	assert.Equal(t, "Approval Confirmed", msg.Content[0][0].Text)
	assert.Equal(t, "Hello Bob,", msg.Content[1][0].Text)
	assert.Equal(t, postElement{Tag: "a", Text: "Review & Approve", Href: "https://app.example.com/review/evt-1"}, msg.Content[2][0])
}

func TestNotifier_SendErrors(t *testing.T) {
	notifier := &Notifier{messages: &mockMessageCreator{}, logger: zap.NewNop()}
	assert.Error(t, notifier.Send(context.Background(), " ", "s", "<p>x</p>"))

	failing := &mockMessageCreator{
		createFunc: func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
			return nil, errors.New("dial tcp: timeout")
		},
	}
	notifier = &Notifier{messages: failing, logger: zap.NewNop()}
	assert.Error(t, notifier.Send(context.Background(), "bob@b.example.com", "s", "<p>x</p>"))

	rejected := &mockMessageCreator{
		createFunc: func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
			return &larkIm.CreateMessageResp{CodeError: larkcore.CodeError{Code: 230013, Msg: "user not found"}}, nil
		},
	}
	notifier = &Notifier{messages: rejected, logger: zap.NewNop()}
	err := notifier.Send(context.Background(), "bob@b.example.com", "s", "<p>x</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "230013")
}
