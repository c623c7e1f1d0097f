package websocket

import (
	"context"
	"regexp"
	"sync"

	"sharehub/broker"
	"sharehub/core"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// Inbound events handled by the dispatcher.
const (
	EventPublicUpload     = "public:upload"
	EventPublicDeleteLast = "public:deleteLast"
	EventRoomCreate       = "room:create"
	EventRoomJoin         = "room:join"
	EventRoomHistory      = "room:history"
	EventRoomUpload       = "room:upload"
)

// Outbound events.
const (
	EventPublicHistory = "public:history"
	EventUnauthorized  = "unauthorized"
)

// publicRoom is the socket.io room every connection joins on connect, used
// to fan out public-channel snapshots. Application rooms live under their
// own prefix so no room id a client picks can alias it.
const publicRoom = "public"

// socketRoom maps an application room id onto its socket.io room. The
// prefix keeps client-chosen ids out of the namespace the server reserves
// for itself (publicRoom in particular).
func socketRoom(roomID string) socketio.Room {
	return socketio.Room("room:" + roomID)
}

// AuthorizeFunc decides whether a new connection is allowed. Returning
// false disconnects the socket before any handler is registered.
type AuthorizeFunc func(socket *socketio.Socket) bool

// TokenAuthorizer allows every connection when token is empty, otherwise
// requires a matching "token" field in the handshake auth payload.
func TokenAuthorizer(token string) AuthorizeFunc {
	return func(socket *socketio.Socket) bool {
		if token == "" {
			return true
		}
		handshake := socket.Handshake()
		if handshake == nil {
			return false
		}
		auth, ok := handshake.Auth.(map[string]any)
		if !ok {
			return false
		}
		presented, _ := auth["token"].(string)
		return presented == token
	}
}

// NewServer builds the socket.io server with CORS restricted to the given
// origins. Origins may be literal strings or, for the localhost dev
// defaults, regular expressions.
func NewServer(allowedOrigins []string) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)

	origins := make([]any, 0, len(allowedOrigins)+1)
	for _, origin := range allowedOrigins {
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = append(origins, regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`))
	}
	opts.SetCors(&types.Cors{
		Origin:      origins,
		Credentials: true,
	})

	return socketio.NewServer(nil, opts)
}

// Broadcaster fans events out through the socket.io server. Exclusion of a
// single connection rides on socket.io's sender-excluding broadcast, so the
// excluded socket is looked up by its connection id.
type Broadcaster struct {
	srv     *socketio.Server
	mu      sync.RWMutex
	sockets map[string]*socketio.Socket
}

func NewBroadcaster(srv *socketio.Server) *Broadcaster {
	return &Broadcaster{
		srv:     srv,
		sockets: make(map[string]*socketio.Socket),
	}
}

func (b *Broadcaster) track(socket *socketio.Socket) {
	b.mu.Lock()
	b.sockets[string(socket.Id())] = socket
	b.mu.Unlock()
}

func (b *Broadcaster) untrack(connID string) {
	b.mu.Lock()
	delete(b.sockets, connID)
	b.mu.Unlock()
}

func (b *Broadcaster) lookup(connID string) *socketio.Socket {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sockets[connID]
}

// ToRoom emits an event to every socket in an application room. When
// excludeConn names a tracked socket, the emit goes out as that socket's
// broadcast so it skips the sender; a vanished socket cannot receive anyway,
// so the plain room emit is equivalent.
func (b *Broadcaster) ToRoom(roomID, excludeConn, event string, payload any) {
	room := socketRoom(roomID)
	if excludeConn != "" {
		if sender := b.lookup(excludeConn); sender != nil {
			//nolint:errcheck // Socket.IO emits do not return useful errors
			sender.Broadcast().To(room).Emit(event, payload)
			return
		}
	}
	//nolint:errcheck // Socket.IO emits do not return useful errors
	b.srv.In(room).Emit(event, payload)
}

// ToPublic emits an event to every connected socket via the room they all
// join on connect.
func (b *Broadcaster) ToPublic(event string, payload any) {
	//nolint:errcheck // Socket.IO emits do not return useful errors
	b.srv.In(socketio.Room(publicRoom)).Emit(event, payload)
}

// Register wires the broker onto the socket.io server: one connection
// handler installing the public-channel and room event handlers per socket.
func Register(
	srv *socketio.Server,
	bcast *Broadcaster,
	channel *broker.PublicChannel,
	registry *broker.RoomRegistry,
	processor *broker.UploadProcessor,
	ledger *broker.DeletionLedger,
	authorize AuthorizeFunc,
) {
	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		me := string(socket.Id())
		log := logrus.WithField("conn_id", me)

		if authorize != nil && !authorize(socket) {
			log.Warn("Connection rejected by authorization hook")
			_ = socket.Emit(EventUnauthorized, map[string]any{"message": "connection not authorized"})
			socket.Disconnect(true)
			return
		}

		bcast.track(socket)
		socket.Join(socketio.Room(publicRoom))
		_ = socket.Emit(EventPublicHistory, core.EncodeItems(channel.Snapshot()))
		log.Info("Connection established")

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On(EventPublicUpload, func(datas ...any) {
			ack, args := extractAck(datas)
			if len(args) == 0 {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}
			raw, err := decodeRawItem(args[0])
			if err != nil {
				respond(socket, ack, failure(err))
				return
			}

			item, err := processor.Process(context.Background(), raw)
			if err != nil {
				log.WithError(err).Warn("Public upload failed")
				respond(socket, ack, failure(err))
				return
			}
			if evicted := channel.Append(item); evicted != nil {
				ledger.MarkItem(evicted)
			}
			bcast.ToPublic(EventPublicHistory, core.EncodeItems(channel.Snapshot()))
			respond(socket, ack, success(nil))
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On(EventPublicDeleteLast, func(datas ...any) {
			ack, _ := extractAck(datas)
			popped := channel.PopLast()
			if popped != nil {
				ledger.MarkItem(popped)
				bcast.ToPublic(EventPublicHistory, core.EncodeItems(channel.Snapshot()))
			}
			respond(socket, ack, success(nil))
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On(EventRoomCreate, func(datas ...any) {
			ack, args := extractAck(datas)
			if len(args) < 3 {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}
			roomID, _ := args[0].(string)
			capacity, capOK := toInt(args[1])
			modeName, _ := args[2].(string)
			if roomID == "" || !capOK {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}
			mode, err := core.ParseMode(modeName)
			if err != nil {
				respond(socket, ack, failure(err))
				return
			}
			if err := registry.Create(roomID, capacity, mode); err != nil {
				respond(socket, ack, failure(err))
				return
			}
			respond(socket, ack, success(map[string]any{"roomId": roomID}))
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On(EventRoomJoin, func(datas ...any) {
			ack, args := extractAck(datas)
			if len(args) == 0 {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}
			roomID, _ := args[0].(string)
			if roomID == "" {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}

			data, err := registry.Join(roomID, me)
			if err != nil {
				respond(socket, ack, failure(err))
				return
			}
			socket.Join(socketRoom(roomID))
			log.WithField("room_id", roomID).Info("Socket joined room")

			extra := map[string]any{}
			if data != nil {
				extra["data"] = core.EncodeItems(data)
			}
			respond(socket, ack, success(extra))
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On(EventRoomHistory, func(datas ...any) {
			ack, args := extractAck(datas)
			if len(args) == 0 {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}
			roomID, _ := args[0].(string)

			history, err := registry.History(roomID, me)
			if err != nil {
				respond(socket, ack, failure(err))
				return
			}
			respond(socket, ack, success(map[string]any{"data": core.EncodeItems(history)}))
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On(EventRoomUpload, func(datas ...any) {
			ack, args := extractAck(datas)
			if len(args) == 0 {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}
			envelope, ok := args[0].(map[string]any)
			if !ok {
				respond(socket, ack, failure(core.ErrInvalidItem))
				return
			}
			roomID, _ := envelope["roomId"].(string)
			raw, err := decodeRawItem(envelope["data"])
			if err != nil {
				respond(socket, ack, failure(err))
				return
			}

			if err := registry.Upload(context.Background(), roomID, me, raw); err != nil {
				log.WithField("room_id", roomID).WithError(err).Warn("Room upload failed")
				respond(socket, ack, failure(err))
				return
			}
			respond(socket, ack, success(nil))
		})

		socket.On("disconnecting", func(datas ...any) {
			log.Info("Connection disconnecting")
			registry.Leave(me)
		})

		socket.On("disconnect", func(datas ...any) {
			bcast.untrack(me)
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})
}
