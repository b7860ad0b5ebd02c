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

// Package arxiv wraps the arXiv MCP server's tools behind typed calls. The
// server's responses are loosely shaped (maps keyed by title, lists, JSON
// embedded in text, bare error strings), so every wrapper normalizes before
// returning.
package arxiv

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/paperbridge/paperbridge/internal/session"
	"github.com/paperbridge/paperbridge/pkg/errors"
)

// Tool names exposed by the arXiv server.
const (
	ToolSearch        = "search_arxiv"
	ToolDetails       = "get_details"
	ToolArticleURL    = "get_article_url"
	ToolDownload      = "download_article"
	ToolLoadToContext = "load_article_to_context"
)

// Entry is one normalized article record. Keys follow the server's own field
// names (title, authors, abstract and so on); an "error" key marks a record
// the server could not produce.
type Entry map[string]any

// Err returns the record's error text, if any.
func (e Entry) Err() string {
	if v, ok := e["error"].(string); ok {
		return v
	}
	return ""
}

// Title returns the record's title, if any.
func (e Entry) Title() string {
	if v, ok := e["title"].(string); ok {
		return v
	}
	return ""
}

// caller is the session surface the wrappers need.
type caller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*session.ToolResult, error)
}

// Client provides typed access to the arXiv server's tools over a session.
type Client struct {
	session caller
}

// NewClient wraps the given session.
func NewClient(s caller) *Client {
	return &Client{session: s}
}

// SearchParams narrows a catalog search. Zero-valued fields are omitted from
// the request.
type SearchParams struct {
	AllFields string
	Title     string
	Author    string
	Abstract  string
	Start     int
}

func (p SearchParams) args() map[string]any {
	args := map[string]any{}
	if p.AllFields != "" {
		args["all_fields"] = p.AllFields
	}
	if p.Title != "" {
		args["title"] = p.Title
	}
	if p.Author != "" {
		args["author"] = p.Author
	}
	if p.Abstract != "" {
		args["abstract"] = p.Abstract
	}
	if p.Start > 0 {
		args["start"] = p.Start
	}
	return args
}

// Search queries the arXiv catalog and returns normalized entries. A search
// the server could not fulfil comes back as a single error entry, not a Go
// error; only transport and dispatch faults are returned as errors.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Entry, error) {
	res, err := c.session.CallTool(ctx, ToolSearch, params.args())
	if err != nil {
		return nil, err
	}
	return normalizeSearch(res), nil
}

// Details fetches full metadata for a previously searched title.
func (c *Client) Details(ctx context.Context, title string) (Entry, error) {
	return c.callByTitle(ctx, ToolDetails, title)
}

// ArticleURL resolves the PDF link for a previously searched title.
func (c *Client) ArticleURL(ctx context.Context, title string) (Entry, error) {
	return c.callByTitle(ctx, ToolArticleURL, title)
}

// Download saves the article PDF into the server's download directory.
func (c *Client) Download(ctx context.Context, title string) (Entry, error) {
	return c.callByTitle(ctx, ToolDownload, title)
}

// LoadToContext converts a downloaded article to text on the server side.
func (c *Client) LoadToContext(ctx context.Context, title string) (Entry, error) {
	return c.callByTitle(ctx, ToolLoadToContext, title)
}

func (c *Client) callByTitle(ctx context.Context, tool, title string) (Entry, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.Newf("%s: title must not be empty", tool)
	}
	res, err := c.session.CallTool(ctx, tool, map[string]any{"title": title})
	if err != nil {
		return nil, err
	}
	return normalizeEntry(res), nil
}

// normalizeSearch flattens whatever shape the server returned into a list of
// entries. Observed shapes: a map keyed by article title, a plain list, JSON
// serialized into the text payload, and bare error strings.
func normalizeSearch(res *session.ToolResult) []Entry {
	if res.Err != "" {
		return []Entry{{"error": res.Err}}
	}

	switch v := res.Data.(type) {
	case map[string]any:
		return entriesFromMap(v)
	case []any:
		return entriesFromList(v)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return nil
	}
	if looksLikeFailureText(text) {
		return []Entry{{"error": text}}
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return []Entry{{"error": text}}
	}
	switch v := parsed.(type) {
	case map[string]any:
		return entriesFromMap(v)
	case []any:
		return entriesFromList(v)
	}
	return []Entry{{"error": text}}
}

// entriesFromMap handles the title-keyed shape: when every value is itself an
// object the keys are titles and get folded into their records. Any other map
// is a single record.
func entriesFromMap(m map[string]any) []Entry {
	if len(m) == 0 {
		return nil
	}
	if _, ok := m["error"]; ok {
		return []Entry{Entry(m)}
	}

	titleKeyed := true
	for _, v := range m {
		if _, ok := v.(map[string]any); !ok {
			titleKeyed = false
			break
		}
	}
	if !titleKeyed {
		return []Entry{Entry(m)}
	}

	out := make([]Entry, 0, len(m))
	for title, v := range m {
		details := v.(map[string]any)
		e := make(Entry, len(details)+1)
		for k, dv := range details {
			e[k] = dv
		}
		e["title"] = title
		out = append(out, e)
	}
	return out
}

func entriesFromList(l []any) []Entry {
	out := make([]Entry, 0, len(l))
	for _, v := range l {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Entry(m))
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			out = append(out, Entry{"title": s})
		}
	}
	return out
}

// normalizeEntry shapes a single-record response.
func normalizeEntry(res *session.ToolResult) Entry {
	if res.Err != "" {
		return Entry{"error": res.Err}
	}
	if m, ok := res.Data.(map[string]any); ok {
		return Entry(m)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return Entry{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err == nil {
		return Entry(m)
	}
	if looksLikeFailureText(text) {
		return Entry{"error": text}
	}
	return Entry{"message": text}
}

// looksLikeFailureText spots the server's habit of reporting failures as
// plain prose instead of error results.
func looksLikeFailureText(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "Unable to retrieve") ||
		strings.Contains(lower, "error")
}
