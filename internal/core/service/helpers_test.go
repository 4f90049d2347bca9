package service

import (
	"github.com/stretchr/testify/mock"

	"github.com/olusolaa/miq-converge/internal/core/ports/mocks"
)

// fill decodes body into the out argument at index idx of a mocked call.
func fill(idx int, body string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		out := args.Get(idx)
		if out == nil {
			return
		}
		if err := json.Unmarshal([]byte(body), out); err != nil {
			panic(err)
		}
	}
}

// expectGet registers one Get of path answered with body.
func expectGet(client *mocks.APIClient, path, body string) *mock.Call {
	return client.On("Get", mock.Anything, path, mock.Anything, mock.Anything).
		Run(fill(3, body)).Return(nil).Once()
}

// expectList registers one listing of collection answered with the
// resources of body.
func expectList(client *mocks.APIClient, collection, body string) *mock.Call {
	var resp collectionResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		panic(err)
	}
	return client.On("List", mock.Anything, collection, mock.Anything).
		Return(resp.Resources, nil).Once()
}

// expectPost registers one Post of action on path answered with body.
func expectPost(client *mocks.APIClient, path, action, body string) *mock.Call {
	return client.On("Post", mock.Anything, path, action, mock.Anything, mock.Anything).
		Run(fill(4, body)).Return(nil).Once()
}

// payloadOf returns the payload of the first recorded Post of action.
func payloadOf(client *mocks.APIClient, action string) map[string]any {
	for _, c := range client.Calls {
		if c.Method == "Post" && c.Arguments.String(2) == action {
			return c.Arguments.Get(3).(map[string]any)
		}
	}
	return nil
}

func assertNoPost(client *mocks.APIClient) bool {
	for _, c := range client.Calls {
		if c.Method == "Post" {
			return false
		}
	}
	return true
}
