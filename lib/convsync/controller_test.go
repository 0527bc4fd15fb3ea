// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

package convsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nassif-clinic/triage/lib/channel"
	"github.com/nassif-clinic/triage/lib/clock"
	"github.com/nassif-clinic/triage/lib/dashboard"
)

// pushServer is a minimal websocket endpoint that hands the test each
// accepted connection so it can push event payloads.
type pushServer struct {
	server *httptest.Server

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	push := &pushServer{}
	upgrader := websocket.Upgrader{}
	push.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		push.mu.Lock()
		push.conns = append(push.conns, conn)
		push.mu.Unlock()
		// Drain client frames so close handshakes complete.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(push.server.Close)
	return push
}

func (push *pushServer) endpoint() (string, error) {
	return "ws" + strings.TrimPrefix(push.server.URL, "http"), nil
}

func (push *pushServer) waitForConn(t *testing.T) *websocket.Conn {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		push.mu.Lock()
		if len(push.conns) > 0 {
			conn := push.conns[len(push.conns)-1]
			push.mu.Unlock()
			return conn
		}
		push.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out waiting for a websocket connection")
	return nil
}

func (push *pushServer) send(t *testing.T, payload string) {
	t.Helper()
	conn := push.waitForConn(t)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("pushing event: %v", err)
	}
}

func startedController(t *testing.T, api *fakeAPI, push *pushServer) (*Controller, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(time.Unix(1700000000, 0))
	manager, err := channel.NewManager(channel.Config{
		Endpoint: push.endpoint,
		Clock:    fake,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	controller := NewController(api, manager, nil)
	if err := controller.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(controller.Stop)

	// Skip the connection warm-up delay.
	fake.WaitForWaiters(1)
	fake.Advance(channel.DefaultWarmupDelay)
	push.waitForConn(t)
	return controller, fake
}

func TestStartIssuesInitialFetch(t *testing.T) {
	api := &fakeAPI{}
	controller, _ := startedController(t, api, newPushServer(t))

	waitForCalls(t, "initial fetch", &api.listCalls, 1)
	waitForState(t, controller.List, "initial commit", func(state ListState) bool {
		return !state.Loading && len(state.Items) == 1
	})
	if !controller.Connected() {
		t.Error("Connected() = false with a live channel")
	}
}

func TestChannelEventTriggersOneRefetchWithCurrentFilter(t *testing.T) {
	api := &fakeAPI{}
	push := newPushServer(t)
	controller, _ := startedController(t, api, push)
	waitForCalls(t, "initial fetch", &api.listCalls, 1)

	// Narrow the filter, then push an event: the refetch must use the
	// criteria current at delivery time.
	status := "pending"
	controller.List.SetFilter(context.Background(), dashboard.FilterCriteria{Status: &status})
	waitForCalls(t, "filter fetch", &api.listCalls, 2)

	push.send(t, `{"type":"conversation_updated","conversation_id":"c1","status":"completed"}`)
	waitForCalls(t, "event refetch", &api.listCalls, 3)

	api.mu.Lock()
	criteria := api.lastCriteria
	api.mu.Unlock()
	if criteria.Status == nil || *criteria.Status != "pending" {
		t.Errorf("event refetch criteria = %+v, want the active status filter", criteria)
	}

	// One event, one refetch.
	time.Sleep(50 * time.Millisecond)
	if calls := api.listCalls.Load(); calls != 3 {
		t.Errorf("list fetched %d times after one event, want 3", calls)
	}
}

func TestStopSilencesChannelEvents(t *testing.T) {
	api := &fakeAPI{}
	push := newPushServer(t)
	controller, _ := startedController(t, api, push)
	waitForCalls(t, "initial fetch", &api.listCalls, 1)
	conn := push.waitForConn(t)

	controller.Stop()
	if controller.Connected() {
		t.Error("Connected() = true after Stop")
	}

	// An event arriving after teardown must not trigger a refetch.
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"new_conversation","conversation_id":"c2"}`))
	time.Sleep(50 * time.Millisecond)
	if calls := api.listCalls.Load(); calls != 1 {
		t.Errorf("list fetched %d times after Stop, want 1", calls)
	}
}

func TestControllerWithoutChannel(t *testing.T) {
	api := &fakeAPI{}
	controller := NewController(api, nil, nil)
	if err := controller.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(controller.Stop)

	waitForCalls(t, "initial fetch", &api.listCalls, 1)
	if controller.Connected() {
		t.Error("Connected() = true without a channel manager")
	}

	// Manual refresh still works with no realtime channel.
	controller.List.Refetch(context.Background())
	waitForCalls(t, "manual refetch", &api.listCalls, 2)
}
