package server

import (
	"testing"
)

func TestDispatchMapsEventsToEngine(t *testing.T) {
	e, host := newTestEngine(DefaultTuning(), &fakeRand{intn: 2, f64: 0.1})
	gw := NewGateway(e)

	gw.Dispatch(UserJoined{ClientID: "c1", Username: "alice", RoomID: "r1"})
	if _, ok := host.lastMapFor("c1"); !ok {
		t.Fatalf("join event must produce a map report")
	}

	gw.Dispatch(UserStartedGame{ClientID: "c1"})
	if room := roomByID(e, "r1"); room == nil || !room.IsStarted {
		t.Fatalf("start event must start the room")
	}

	e.advance() // 刷出一只僵尸供射击
	snap, _ := host.lastMapFor("c1")
	z := snap.Zombies[0]
	gw.Dispatch(UserShot{ClientID: "c1", X: z.X, Y: z.Y})
	if host.hitCount() != 1 {
		t.Fatalf("shot event must reach hit resolution")
	}

	gw.Dispatch(UserLeft{ClientID: "c1"})
	if room := roomByID(e, "r1"); room == nil || !room.IsFrozen {
		t.Fatalf("leave event must freeze the emptied room")
	}
}

func TestDispatchDropsUnknownEvent(t *testing.T) {
	e, _ := newTestEngine(DefaultTuning(), &fakeRand{intn: 2, f64: 1})
	gw := NewGateway(e)

	gw.Dispatch(struct{ Foo int }{Foo: 1}) // 不得 panic
	if e.RoomCount() != 0 {
		t.Fatalf("unknown event must not mutate the registry")
	}
}

// 入站流可能合法地引用过期身份（如重复 leave），全部按 no-op 处理
func TestDispatchStaleIdentitiesAreNoops(t *testing.T) {
	e, host := newTestEngine(DefaultTuning(), &fakeRand{intn: 2, f64: 1})
	gw := NewGateway(e)

	gw.Dispatch(UserLeft{ClientID: "ghost"})
	gw.Dispatch(UserStartedGame{ClientID: "ghost"})
	gw.Dispatch(UserShot{ClientID: "ghost", X: 1, Y: 1})

	if e.RoomCount() != 0 || host.hitCount() != 0 {
		t.Fatalf("stale identities must not create state or reports")
	}

	gw.Dispatch(UserJoined{ClientID: "c1", Username: "alice", RoomID: "r1"})
	gw.Dispatch(UserLeft{ClientID: "c1"})
	gw.Dispatch(UserLeft{ClientID: "c1"}) // 重复 leave
	if room := roomByID(e, "r1"); room == nil || !room.IsFrozen {
		t.Fatalf("duplicate leave must leave the frozen room intact")
	}
}
