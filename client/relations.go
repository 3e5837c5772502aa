package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ErrStop may be returned by a Stream visitor to end the stream early
// without error.
var ErrStop = errors.New("stop stream")

// maxStreamLine bounds one NDJSON line of a streamed node.
const maxStreamLine = 1 << 20

// RelationService handles relationship collection operations.
type RelationService struct {
	c *Client
}

func (r Relation) path(suffix string) string {
	return fmt.Sprintf("/api/v1/nodes/%s/relations/%s%s", url.PathEscape(r.Origin), url.PathEscape(r.Type), suffix)
}

func (r Relation) params() url.Values {
	params := url.Values{}
	if r.Direction != "" {
		params.Set("direction", r.Direction)
	}
	if r.NodeType != "" {
		params.Set("node_type", r.NodeType)
	}
	return params
}

// Page returns one page of related nodes.
func (s *RelationService) Page(ctx context.Context, r Relation, opts *PageOptions) (*RelationPage, error) {
	params := r.params()
	if opts != nil {
		if opts.Page > 0 {
			params.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PerPage > 0 {
			params.Set("per_page", strconv.Itoa(opts.PerPage))
		}
		if opts.WithTotal {
			params.Set("total", "true")
		}
	}

	var page RelationPage
	if err := s.c.get(ctx, r.path(""), params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Size returns the number of related nodes.
func (s *RelationService) Size(ctx context.Context, r Relation) (int, error) {
	var resp struct {
		Size int `json:"size"`
	}
	if err := s.c.get(ctx, r.path("/size"), r.params(), &resp); err != nil {
		return 0, err
	}
	return resp.Size, nil
}

// IsEmpty reports whether the collection has no related nodes.
func (s *RelationService) IsEmpty(ctx context.Context, r Relation) (bool, error) {
	var resp struct {
		Empty bool `json:"empty"`
	}
	if err := s.c.get(ctx, r.path("/empty"), r.params(), &resp); err != nil {
		return false, err
	}
	return resp.Empty, nil
}

// At returns the related node at index. ok is false when the collection is
// shorter than index+1; a missing origin is still an error.
func (s *RelationService) At(ctx context.Context, r Relation, index int) (*Node, bool, error) {
	var node Node

	err := s.c.get(ctx, r.path("/at/"+strconv.Itoa(index)), r.params(), &node)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == "no_element" {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &node, true, nil
}

// Append creates one relationship per target, in order, and returns them.
func (s *RelationService) Append(ctx context.Context, r Relation, targets ...string) ([]Edge, error) {
	path := r.path("")
	if r.Direction != "" {
		path += "?" + url.Values{"direction": {r.Direction}}.Encode()
	}

	var resp struct {
		Relationships []Edge `json:"relationships"`
	}
	if err := s.c.post(ctx, path, map[string][]string{"targets": targets}, &resp); err != nil {
		return nil, err
	}
	return resp.Relationships, nil
}

// Stream calls visit for every related node as the server streams them.
// Returning ErrStop from visit closes the stream and returns nil.
func (s *RelationService) Stream(ctx context.Context, r Relation, visit func(Node) error) error {
	path := r.path("/stream")
	if params := r.params(); len(params) > 0 {
		path += "?" + params.Encode()
	}

	resp, err := s.c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for sc.Scan() {
		if failure := streamFailure(sc.Bytes()); failure != nil {
			return failure
		}

		var n Node
		if err := json.Unmarshal(sc.Bytes(), &n); err != nil {
			return fmt.Errorf("decode streamed node: %w", err)
		}

		if err := visit(n); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

// streamFailure decodes the error record a server writes when a stream
// breaks part-way. It returns nil for node lines.
func streamFailure(line []byte) *StreamError {
	var rec struct {
		Error *struct {
			Status    int    `json:"status"`
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
			Visited   int    `json:"visited"`
		} `json:"error"`
	}
	if err := json.Unmarshal(line, &rec); err != nil || rec.Error == nil {
		return nil
	}

	f := rec.Error
	return &StreamError{
		APIError: &APIError{StatusCode: f.Status, Code: f.Code, Message: f.Message, RequestID: f.RequestID},
		Visited:  f.Visited,
	}
}
