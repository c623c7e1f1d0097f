package websocket

import (
	"testing"

	socketio "github.com/zishang520/socket.io/v2/socket"
)

func TestTokenAuthorizerAllowsAllWhenUnset(t *testing.T) {
	authorize := TokenAuthorizer("")
	if !authorize(nil) {
		t.Error("empty token must allow every connection")
	}
}

// Every connection sits in the connect-time public room; an application
// room a client names "public" must broadcast to its members only, never to
// that server-wide room.
func TestApplicationRoomsDoNotAliasPublicRoom(t *testing.T) {
	if socketRoom("public") == socketio.Room(publicRoom) {
		t.Error("application room \"public\" must not map onto the connect-time public room")
	}
	if socketRoom(publicRoom) == socketio.Room(publicRoom) {
		t.Error("no application room id may alias the connect-time public room")
	}
}

func TestSocketRoomsAreDistinctPerRoomID(t *testing.T) {
	if socketRoom("alpha") == socketRoom("beta") {
		t.Error("distinct room ids must map to distinct socket.io rooms")
	}
	if socketRoom("alpha") != socketRoom("alpha") {
		t.Error("a room id must map to a stable socket.io room")
	}
}
