// Copyright 2026 The Paperbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/pkg/errors"
)

func TestListResources(t *testing.T) {
	fc := &fakeConn{
		resources: []*mcp.Resource{
			{URI: "arxiv://articles", Name: "Downloaded Articles", MIMEType: "application/json"},
			{URI: "file:///downloads/1706.03762.pdf", Name: "Attention Is All You Need", MIMEType: "application/pdf"},
		},
	}
	s := newTestSession(fc)

	got, err := s.ListResources(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "arxiv://articles", got[0].URI)
	assert.Equal(t, "application/pdf", got[1].MIMEType)
}

func TestListResourcesNotCached(t *testing.T) {
	fc := &fakeConn{}
	s := newTestSession(fc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.ListResources(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fc.listResourcesCalls, "every listing must go to the wire")
}

func TestListResourcesUnsupportedServer(t *testing.T) {
	fc := &fakeConn{listResourcesErr: errors.New("method not found")}
	s := newTestSession(fc)

	_, err := s.ListResources(context.Background())
	require.Error(t, err)
	assert.False(t, errors.IsSessionFatal(err), "an unsupported method is not a channel fault")
}

func TestListResourcesTransportFault(t *testing.T) {
	fc := &fakeConn{listResourcesErr: io.EOF}
	s := newTestSession(fc)

	_, err := s.ListResources(context.Background())
	var terr *errors.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "resources/list", terr.Op)
}

func TestReadResourceText(t *testing.T) {
	fc := &fakeConn{
		readResult: &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: "arxiv://articles", MIMEType: "application/json", Text: `["1706.03762"]`},
			},
		},
	}
	s := newTestSession(fc)

	got, err := s.ReadResource(context.Background(), "arxiv://articles")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `["1706.03762"]`, got[0].Text)
	assert.Empty(t, got[0].Blob)

	require.Len(t, fc.readResourceCalls, 1)
	assert.Equal(t, "arxiv://articles", fc.readResourceCalls[0].URI)
}

func TestReadResourceBlob(t *testing.T) {
	fc := &fakeConn{
		readResult: &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: "file:///downloads/paper.pdf", MIMEType: "application/pdf", Blob: []byte{0x25, 0x50, 0x44, 0x46}},
			},
		},
	}
	s := newTestSession(fc)

	got, err := s.ReadResource(context.Background(), "file:///downloads/paper.pdf")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0x25, 0x50, 0x44, 0x46}, got[0].Blob)
}

func TestReadResourceDropsEmptyEntries(t *testing.T) {
	fc := &fakeConn{
		readResult: &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: "arxiv://articles"},
				{URI: "arxiv://articles", Text: "kept"},
				nil,
			},
		},
	}
	s := newTestSession(fc)

	got, err := s.ReadResource(context.Background(), "arxiv://articles")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Text)
}

func TestReadResourceRequiresURI(t *testing.T) {
	fc := &fakeConn{}
	s := newTestSession(fc)

	_, err := s.ReadResource(context.Background(), "")
	require.Error(t, err)
	assert.Empty(t, fc.readResourceCalls, "an empty uri must not touch the wire")
}

func TestResourcesAfterClose(t *testing.T) {
	fc := &fakeConn{}
	s := newTestSession(fc)
	require.NoError(t, s.Close())

	_, err := s.ListResources(context.Background())
	var terr *errors.TransportError
	require.ErrorAs(t, err, &terr)

	_, err = s.ReadResource(context.Background(), "arxiv://articles")
	require.ErrorAs(t, err, &terr)
}
