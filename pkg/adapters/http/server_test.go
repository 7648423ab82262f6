package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	espalierhttp "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	manager := workspace.NewManager(memory.NewStore())
	ts := httptest.NewServer(espalierhttp.NewHandler(manager))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServer_NodeLifecycle(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/documents/doc-1"

	// Create with a generated id
	resp := doJSON(t, http.MethodPost, base+"/nodes", domain.Node{Type: "action", Title: "Send Email"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Node](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "action", created.Type)

	// Patch the title
	newTitle := "Send Webhook"
	resp = doJSON(t, http.MethodPatch, base+"/nodes/"+created.ID, domain.NodePatch{Title: &newTitle})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[domain.Node](t, resp)
	assert.Equal(t, "Send Webhook", updated.Title)

	// Full document read
	resp = doJSON(t, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[domain.Snapshot](t, resp)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "Send Webhook", snap.Nodes[0].Title)

	// Remove
	resp = doJSON(t, http.MethodDelete, base+"/nodes/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base+"/", nil)
	snap = decode[domain.Snapshot](t, resp)
	assert.Empty(t, snap.Nodes)
}

func TestServer_ConnectionsAndErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/documents/doc-1"

	n1 := decode[domain.Node](t, doJSON(t, http.MethodPost, base+"/nodes", domain.Node{ID: "n1", Type: "trigger"}))
	n2 := decode[domain.Node](t, doJSON(t, http.MethodPost, base+"/nodes", domain.Node{ID: "n2", Type: "action"}))

	// Duplicate id is a conflict
	resp := doJSON(t, http.MethodPost, base+"/nodes", domain.Node{ID: "n1", Type: "action"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, base+"/connections", map[string]string{
		"sourceNodeId": n1.ID, "sourcePortId": "out",
		"targetNodeId": n2.ID, "targetPortId": "in",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	conn := decode[domain.Connection](t, resp)
	assert.NotEmpty(t, conn.ID)

	// Unknown endpoint is a 404
	resp = doJSON(t, http.MethodPost, base+"/connections", map[string]string{
		"sourceNodeId": "ghost", "sourcePortId": "out",
		"targetNodeId": n2.ID, "targetPortId": "in",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, base+"/connections/"+conn.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, base+"/connections/"+conn.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_UndoRedo(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/documents/doc-1"

	node := decode[domain.Node](t, doJSON(t, http.MethodPost, base+"/nodes", domain.Node{Type: "action"}))

	resp := doJSON(t, http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decode[map[string]bool](t, resp)
	assert.False(t, hist["canUndo"])
	assert.True(t, hist["canRedo"])

	snap := decode[domain.Snapshot](t, doJSON(t, http.MethodGet, base+"/", nil))
	assert.Empty(t, snap.Nodes)

	resp = doJSON(t, http.MethodPost, base+"/redo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	snap = decode[domain.Snapshot](t, doJSON(t, http.MethodGet, base+"/", nil))
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, node.ID, snap.Nodes[0].ID)
}

func TestServer_LoadRejectsInvalidSnapshot(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/documents/doc-1"

	// Connection referencing a node that does not exist
	bad := domain.Snapshot{
		Nodes: []domain.Node{{ID: "n1", Type: "action"}},
		Connections: []domain.Connection{
			{ID: "c1", SourceNodeID: "n1", SourcePortID: "out", TargetNodeID: "ghost", TargetPortID: "in"},
		},
		Viewport: domain.DefaultViewport(),
	}

	resp := doJSON(t, http.MethodPut, base+"/", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_ViewportClamping(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/documents/doc-1"

	resp := doJSON(t, http.MethodPut, base+"/viewport", domain.Viewport{PanX: 120, PanY: -40, Zoom: 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	vp := decode[domain.Viewport](t, resp)
	assert.Equal(t, 120.0, vp.PanX)
	assert.Equal(t, -40.0, vp.PanY)
	assert.Equal(t, 4.0, vp.Zoom, "zoom should be clamped to the default max")

	resp = doJSON(t, http.MethodPost, base+"/viewport/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	vp = decode[domain.Viewport](t, resp)
	assert.Equal(t, domain.DefaultViewport(), vp)
}

func TestServer_SSEBroadcastsDiffs(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + "/documents/doc-1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)

	// First frame is the connection ping.
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	// Drain the rest of the ping frame.
	for line != "\n" {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
	}

	resp2 := doJSON(t, http.MethodPost, base+"/nodes", domain.Node{ID: "n1", Type: "action"})
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
	resp2.Body.Close()

	// The mutation must arrive as a diff frame.
	var data string
	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			break
		}
	}

	var diff domain.SnapshotDiff
	require.NoError(t, json.Unmarshal([]byte(data), &diff))
	require.Len(t, diff.NodesAdded, 1)
	assert.Equal(t, "n1", diff.NodesAdded[0].ID)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", health["status"])

	// Counters only show up after at least one operation.
	resp = doJSON(t, http.MethodPost, ts.URL+"/documents/doc-1/nodes", domain.Node{Type: "action"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `espalier_operations_total{op="add_node"} 1`)
}
