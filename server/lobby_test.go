package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestRoomsChangedFeedsLobby(t *testing.T) {
	e, _ := newTestEngine(DefaultTuning(), &fakeRand{intn: 2, f64: 1})
	lobby := NewLobby("server-1", "host")
	e.OnRoomsChanged(lobby.Update)

	e.HandleJoin("c1", "alice", "r2")
	e.HandleJoin("c2", "bob", "r1")
	e.HandleJoin("c3", "carol", "r1")
	e.HandleStartGame("c2")

	sum := lobby.Summary()
	if sum.ServerID != "server-1" || sum.HostUsername != "host" {
		t.Fatalf("unexpected server identity: %+v", sum)
	}
	if len(sum.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(sum.Rooms))
	}
	// 摘要按 roomId 排序，输出稳定
	if sum.Rooms[0].RoomID != "r1" || sum.Rooms[1].RoomID != "r2" {
		t.Fatalf("rooms must be sorted by id: %+v", sum.Rooms)
	}
	if sum.Rooms[0].NumPlayers != 2 || !sum.Rooms[0].IsStarted {
		t.Fatalf("r1 summary wrong: %+v", sum.Rooms[0])
	}
	if sum.Rooms[1].NumPlayers != 1 || sum.Rooms[1].IsStarted {
		t.Fatalf("r2 summary wrong: %+v", sum.Rooms[1])
	}

	e.HandleLeave("c3")
	if lobby.Summary().Rooms[0].NumPlayers != 1 {
		t.Fatalf("leave must be reflected in the lobby summary")
	}
}

func TestHandleRoomsServesJSON(t *testing.T) {
	lobby := NewLobby("server-1", "host")
	lobby.Update([]RoomSummary{{RoomID: "r1", NumPlayers: 3, IsStarted: true}})

	rec := httptest.NewRecorder()
	lobby.HandleRooms(rec, httptest.NewRequest("GET", "/rooms", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got ServerSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ServerID != "server-1" || len(got.Rooms) != 1 || got.Rooms[0].NumPlayers != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSummaryReturnsCopy(t *testing.T) {
	lobby := NewLobby("server-1", "host")
	lobby.Update([]RoomSummary{{RoomID: "r1", NumPlayers: 1}})

	sum := lobby.Summary()
	sum.Rooms[0].NumPlayers = 99

	if lobby.Summary().Rooms[0].NumPlayers != 1 {
		t.Fatalf("Summary must hand out a copy, not the backing slice")
	}
}
