package devtools_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/devtools"
	"github.com/go-drift/renderkit/pkg/headless"
	rktest "github.com/go-drift/renderkit/pkg/testing"
)

var clicker = core.Define("Clicker", func() core.Instance { return &clickerState{} })

type clickerState struct {
	core.StateBase
}

func (c *clickerState) Render() core.Result {
	n, _ := c.State()["n"].(int)
	return core.Ready(core.H(headless.TagContainer, core.Props{
		"onClick": func() { c.SetState(core.State{"n": n + 1}) },
	}, core.H(headless.TagText, core.Props{"text": strconv.Itoa(n)})))
}

func mounted(t *testing.T) (*rktest.Tester, *devtools.Server, *httptest.Server) {
	t.Helper()
	tester := rktest.NewTesterWithT(t)
	if err := tester.Mount(core.H(clicker, nil)); err != nil {
		t.Fatal(err)
	}
	srv := devtools.New(tester.Root())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return tester, srv, ts
}

func TestServer_Health(t *testing.T) {
	_, _, ts := mounted(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" {
		t.Errorf("status = %q, want ok", health["status"])
	}

	post, err := http.Post(ts.URL+"/health", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /health = %d, want 405", post.StatusCode)
	}
}

func TestServer_Tree(t *testing.T) {
	tester, _, ts := mounted(t)

	type result struct {
		node core.Node
		code int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.Get(ts.URL + "/tree")
		if err != nil {
			done <- result{err: err}
			return
		}
		defer resp.Body.Close()
		var n core.Node
		err = json.NewDecoder(resp.Body).Decode(&n)
		done <- result{node: n, code: resp.StatusCode, err: err}
	}()

	// The request is answered from the owner goroutine, so keep pumping.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var got result
	for got.code == 0 && got.err == nil {
		select {
		case got = <-done:
		case <-tester.Root().Meta().Scheduler.Wake():
			tester.Pump()
		case <-ctx.Done():
			t.Fatal("no response from /tree")
		}
	}
	if got.err != nil {
		t.Fatal(got.err)
	}
	if got.node.Type != "Clicker" || got.node.Kind != "custom" {
		t.Errorf("tree root = %s/%s, want Clicker/custom", got.node.Type, got.node.Kind)
	}
	if len(got.node.Children) != 1 || got.node.Children[0].Type != "container" {
		t.Errorf("children = %+v", got.node.Children)
	}
}

func TestServer_TreeUnavailableWithoutPump(t *testing.T) {
	_, _, ts := mounted(t)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(ts.URL + "/tree")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("GET /tree = %d, want 503", resp.StatusCode)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) devtools.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg devtools.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestServer_StreamsCommits(t *testing.T) {
	tester, srv, ts := mounted(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if msg := readMessage(t, conn); msg.Type != "hello" {
		t.Fatalf("first message = %q, want hello", msg.Type)
	}
	if srv.Clients() != 1 {
		t.Errorf("Clients() = %d, want 1", srv.Clients())
	}

	if err := tester.Tap(rktest.ByTag(headless.TagContainer)); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "tree" || msg.Tree == nil {
		t.Fatalf("message = %+v, want a tree", msg)
	}
	if len(msg.Tree.State) != 1 || msg.Tree.State[0] != "n" {
		t.Errorf("state keys = %v, want [n]", msg.Tree.State)
	}
	first := msg.Seq

	if err := tester.Tap(rktest.ByTag(headless.TagContainer)); err != nil {
		t.Fatal(err)
	}
	if next := readMessage(t, conn); next.Seq <= first {
		t.Errorf("seq %d after %d", next.Seq, first)
	}
}

func TestServer_LateClientGetsLastTree(t *testing.T) {
	tester, _, ts := mounted(t)
	if err := tester.Tap(rktest.ByTag(headless.TagContainer)); err != nil {
		t.Fatal(err)
	}

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	readMessage(t, conn)
	if msg := readMessage(t, conn); msg.Type != "tree" {
		t.Errorf("second message = %q, want tree", msg.Type)
	}
}

func TestServer_StartClose(t *testing.T) {
	tester := rktest.NewTesterWithT(t)
	if err := tester.Mount(core.H(clicker, nil)); err != nil {
		t.Fatal(err)
	}
	srv := devtools.New(tester.Root(), devtools.WithMaxClients(1))

	port, err := srv.Start(0)
	if err != nil {
		t.Fatal(err)
	}
	again, err := srv.Start(0)
	if err != nil || again != port {
		t.Errorf("second Start = %d, %v; want %d", again, err, port)
	}

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if err := srv.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health"); err == nil {
		t.Error("server still answering after Close")
	}
}
