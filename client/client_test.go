package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithUserAgent("test-agent"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	var gotUA string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.1.0", Backend: "memory"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" || resp.Backend != "memory" {
		t.Errorf("got %+v", resp)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", gotUA)
	}
}

func TestNodes(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/nodes": func(w http.ResponseWriter, r *http.Request) {
			var req CreateNodeRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 201, Node{ID: req.ID, Type: req.Type, Label: req.Label})
		},
		"GET /api/v1/nodes/n1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Node{ID: "n1", Label: "Test"})
		},
	})

	ctx := context.Background()

	created, err := c.Nodes.Create(ctx, &CreateNodeRequest{ID: "n2", Type: "person", Label: "Bo"})
	if err != nil || created.ID != "n2" {
		t.Fatalf("Create: %v, %v", created, err)
	}

	node, err := c.Nodes.Get(ctx, "n1")
	if err != nil || node.Label != "Test" {
		t.Fatalf("Get: %v, %v", node, err)
	}
}

func TestRelationPage(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes/o/relations/friends": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			total := 5
			jsonResponse(w, 200, RelationPage{
				Origin: "o", Relation: "friends", Direction: "incoming",
				Items: []Node{{ID: "c"}, {ID: "d"}}, Page: 2, PerPage: 2, TotalCount: &total,
			})
		},
	})

	r := Relation{Origin: "o", Type: "friends", Direction: Incoming, NodeType: "person"}

	page, err := c.Relations.Page(context.Background(), r, &PageOptions{Page: 2, PerPage: 2, WithTotal: true})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(page.Items) != 2 || page.TotalCount == nil || *page.TotalCount != 5 {
		t.Errorf("page = %+v", page)
	}

	for _, want := range []string{"direction=incoming", "node_type=person", "page=2", "per_page=2", "total=true"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestRelationSizeEmptyAt(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes/o/relations/friends/size": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]int{"size": 3})
		},
		"GET /api/v1/nodes/o/relations/friends/empty": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]bool{"empty": false})
		},
		"GET /api/v1/nodes/o/relations/friends/at/{index}": func(w http.ResponseWriter, r *http.Request) {
			if r.PathValue("index") == "1" {
				jsonResponse(w, 200, Node{ID: "b"})
				return
			}
			jsonResponse(w, 404, map[string]string{"code": "no_element", "message": "no related node at index"})
		},
		"GET /api/v1/nodes/ghost/relations/friends/at/{index}": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "node not found"})
		},
	})

	ctx := context.Background()
	r := Relation{Origin: "o", Type: "friends"}

	if n, err := c.Relations.Size(ctx, r); err != nil || n != 3 {
		t.Errorf("Size = %d, %v", n, err)
	}

	if empty, err := c.Relations.IsEmpty(ctx, r); err != nil || empty {
		t.Errorf("IsEmpty = %v, %v", empty, err)
	}

	if node, ok, err := c.Relations.At(ctx, r, 1); err != nil || !ok || node.ID != "b" {
		t.Errorf("At(1) = %v, %v, %v", node, ok, err)
	}

	if node, ok, err := c.Relations.At(ctx, r, 9); err != nil || ok || node != nil {
		t.Errorf("At(9) = %v, %v, %v; want absent", node, ok, err)
	}

	_, _, err := c.Relations.At(ctx, Relation{Origin: "ghost", Type: "friends"}, 0)
	if !IsNotFound(err) {
		t.Errorf("At on missing origin: err = %v, want not found", err)
	}
}

func TestRelationAppend(t *testing.T) {
	var got struct {
		Targets []string `json:"targets"`
	}
	var gotDirection string

	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/nodes/o/relations/friends": func(w http.ResponseWriter, r *http.Request) {
			gotDirection = r.URL.Query().Get("direction")
			json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
			edges := make([]Edge, len(got.Targets))
			for i, tg := range got.Targets {
				edges[i] = Edge{Source: tg, Target: "o", Relation: "friends"}
			}
			jsonResponse(w, 201, map[string]any{"relationships": edges})
		},
	})

	edges, err := c.Relations.Append(context.Background(), Relation{Origin: "o", Type: "friends", Direction: Incoming}, "a", "b")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(edges) != 2 || edges[1].Source != "b" {
		t.Errorf("edges = %+v", edges)
	}
	if gotDirection != Incoming || len(got.Targets) != 2 {
		t.Errorf("direction = %q, targets = %v", gotDirection, got.Targets)
	}
}

func TestRelationStream(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes/o/relations/friends/stream": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/x-ndjson")
			enc := json.NewEncoder(w)
			for _, id := range []string{"a", "b", "c"} {
				enc.Encode(Node{ID: id}) //nolint:errcheck
			}
		},
	})

	ctx := context.Background()
	r := Relation{Origin: "o", Type: "friends"}

	var all []string
	if err := c.Relations.Stream(ctx, r, func(n Node) error {
		all = append(all, n.ID)
		return nil
	}); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if strings.Join(all, ",") != "a,b,c" {
		t.Errorf("streamed %v", all)
	}

	var first []string
	if err := c.Relations.Stream(ctx, r, func(n Node) error {
		first = append(first, n.ID)
		return ErrStop
	}); err != nil {
		t.Fatalf("Stream with stop: %v", err)
	}
	if len(first) != 1 {
		t.Errorf("stopped stream visited %v", first)
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "node not found", "request_id": "r1"})
		},
		"POST /api/v1/nodes": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 409, map[string]string{"code": "conflict", "message": "duplicate"})
		},
		"GET /api/v1/nodes/o/relations/friends/size": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(503)
			w.Write([]byte("upstream down")) //nolint:errcheck
		},
	})

	ctx := context.Background()

	_, err := c.Nodes.Get(ctx, "missing")
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}
	if !strings.Contains(err.Error(), "request_id=r1") {
		t.Errorf("error %q lacks request id", err)
	}

	_, err = c.Nodes.Create(ctx, &CreateNodeRequest{ID: "dup", Type: "t", Label: "l"})
	if !IsConflict(err) {
		t.Errorf("expected conflict, got: %v", err)
	}

	_, err = c.Relations.Size(ctx, Relation{Origin: "o", Type: "friends"})
	if !IsUnavailable(err) {
		t.Errorf("expected unavailable, got: %v", err)
	}
	if apiErr, ok := err.(*APIError); !ok || apiErr.Code != "unknown" || apiErr.Message != "upstream down" {
		t.Errorf("raw error body not preserved: %v", err)
	}
}

func TestRelationStream_ServerFailure(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes/o/relations/friends/stream": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/x-ndjson")
			enc := json.NewEncoder(w)
			enc.Encode(Node{ID: "a"}) //nolint:errcheck
			enc.Encode(map[string]any{ //nolint:errcheck
				"error": map[string]any{
					"status": 503, "code": "store_unavailable", "message": "store unavailable",
					"request_id": "r9", "visited": 1,
				},
			})
		},
	})

	var visited []string
	err := c.Relations.Stream(context.Background(), Relation{Origin: "o", Type: "friends"}, func(n Node) error {
		visited = append(visited, n.ID)
		return nil
	})

	if strings.Join(visited, ",") != "a" {
		t.Errorf("visited %v, want [a]", visited)
	}
	if !IsUnavailable(err) {
		t.Fatalf("expected unavailable, got: %v", err)
	}

	streamErr, ok := err.(*StreamError)
	if !ok {
		t.Fatalf("expected *StreamError, got %T", err)
	}
	if streamErr.Visited != 1 || streamErr.Code != "store_unavailable" || streamErr.RequestID != "r9" {
		t.Errorf("stream error = %+v", streamErr)
	}
}
