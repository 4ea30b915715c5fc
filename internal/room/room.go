package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apirepository "ctchen222/tictactoe-solo/internal/api/repository"
	"ctchen222/tictactoe-solo/internal/engine"
	"ctchen222/tictactoe-solo/internal/events"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/hub/types"
	"ctchen222/tictactoe-solo/internal/player"
	"ctchen222/tictactoe-solo/internal/repository"

	"go.opentelemetry.io/otel"
)

const (
	defaultHeartbeatInterval = 10 * time.Second
	defaultGracePeriod       = 60 * time.Second
	defaultThinkingDelay     = 600 * time.Millisecond
)

// Reasons a session is closed.
const (
	ReasonGracePeriodExpired = "grace_period_expired"
	ReasonContractViolation  = "internal_error"
	ReasonSessionMoved       = "session_moved"
)

var tracer = otel.Tracer("room")

// Options configures a Room. A negative ThinkingDelay falls back to the
// default and zero means the computer replies at once. A zero GracePeriod or
// HeartbeatInterval falls back to its default. Nil repositories and
// publisher are skipped.
type Options struct {
	Difficulty        game.Difficulty
	ThinkingDelay     time.Duration
	GracePeriod       time.Duration
	HeartbeatInterval time.Duration
	Publisher         events.Publisher
	Sessions          repository.SessionRepository
	History           apirepository.HistoryRepository
}

// Room runs one single-player session: it owns the engine, the human's
// websocket and the timer for the computer's move. Everything touching the
// engine or writing to the websocket happens on the Run goroutine.
type Room struct {
	ID     string
	engine *engine.Engine
	player *player.Player

	sessions repository.SessionRepository
	history  apirepository.HistoryRepository

	thinkingDelay     time.Duration
	gracePeriod       time.Duration
	heartbeatInterval time.Duration

	computerTimer *time.Timer
	graceTimer    *time.Timer

	incoming chan *types.PlayerMessage
	attach   chan *player.Player
	detach   chan *player.Player
	stop     chan string
	done     chan struct{}

	closeOnce   sync.Once
	closeReason string
	finalScores game.ScoreBoard
}

// NewRoom creates the room of a session. The room starts with an empty
// board; nothing happens until Run is called.
func NewRoom(id string, policy engine.MovePolicy, opts Options) *Room {
	r := &Room{
		ID:                id,
		sessions:          opts.Sessions,
		history:           opts.History,
		thinkingDelay:     opts.ThinkingDelay,
		gracePeriod:       opts.GracePeriod,
		heartbeatInterval: opts.HeartbeatInterval,
		incoming:          make(chan *types.PlayerMessage, 10),
		attach:            make(chan *player.Player),
		detach:            make(chan *player.Player, 1),
		stop:              make(chan string, 1),
		done:              make(chan struct{}),
	}
	if r.thinkingDelay < 0 {
		r.thinkingDelay = defaultThinkingDelay
	}
	if r.gracePeriod <= 0 {
		r.gracePeriod = defaultGracePeriod
	}
	if r.heartbeatInterval <= 0 {
		r.heartbeatInterval = defaultHeartbeatInterval
	}

	r.engine = engine.New(id, policy,
		engine.WithDifficulty(opts.Difficulty),
		engine.WithPublisher(events.NewMultiPublisher(r, opts.Publisher)),
	)
	return r
}

// Attach hands a new connection for this session to the room. It reports
// false if the room has already finished.
func (r *Room) Attach(p *player.Player) bool {
	select {
	case r.attach <- p:
		return true
	case <-r.done:
		return false
	}
}

// Stop asks the room to close the session with reason.
func (r *Room) Stop(reason string) {
	select {
	case r.stop <- reason:
	default:
	}
}

// Done is closed once the session is over.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// CloseReason is why the session ended. Valid after Done is closed.
func (r *Room) CloseReason() string {
	return r.closeReason
}

// FinalScores is the score board at the end of the session. Valid after
// Done is closed.
func (r *Room) FinalScores() game.ScoreBoard {
	return r.finalScores
}

// Run is the main loop of the room. When the session ends on its own, the
// room is sent on closed. Cancelling ctx stops the loop without reporting.
func (r *Room) Run(ctx context.Context, closed chan<- *Room) {
	pingTicker := time.NewTicker(r.heartbeatInterval)
	defer func() {
		pingTicker.Stop()
		r.cancelComputerTurn()
		r.stopGraceTimer()
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Room run goroutine stopping.", "session.id", r.ID)
			r.finish(context.Background(), "server_shutdown")
			return

		case p := <-r.attach:
			r.handleAttach(ctx, p)

		case p := <-r.detach:
			r.handleDetach(ctx, p)

		case msg := <-r.incoming:
			if msg.Player != r.player {
				continue
			}
			r.HandleMessage(ctx, msg.Message)

		case <-timerC(r.computerTimer):
			r.computerTimer = nil
			r.playComputerTurn(ctx)

		case <-timerC(r.graceTimer):
			r.graceTimer = nil
			slog.InfoContext(ctx, "Player exceeded reconnection grace period. Closing session.", "session.id", r.ID)
			r.Stop(ReasonGracePeriodExpired)

		case reason := <-r.stop:
			r.finish(ctx, reason)
			select {
			case closed <- r:
			case <-ctx.Done():
			}
			return

		case <-pingTicker.C:
			r.ping(ctx)
		}
	}
}

// timerC returns the channel of t, or nil so that a select case on a
// missing timer never fires.
func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (r *Room) scheduleComputerTurn() {
	r.cancelComputerTurn()
	r.computerTimer = time.NewTimer(r.thinkingDelay)
}

func (r *Room) cancelComputerTurn() {
	if r.computerTimer != nil {
		r.computerTimer.Stop()
		r.computerTimer = nil
	}
}

func (r *Room) stopGraceTimer() {
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
	}
}

// finish ends the session: the client is told why and the connection is
// closed. It runs once.
func (r *Room) finish(ctx context.Context, reason string) {
	r.closeOnce.Do(func() {
		r.closeReason = reason
		r.finalScores = r.engine.Scores()
		if r.player != nil && r.player.Status == player.StatusConnected {
			r.send(ctx, newClosedFrame(reason))
		}
		if r.player != nil && r.player.Conn != nil {
			r.player.Conn.Close()
		}
		slog.InfoContext(ctx, "Session closed", "session.id", r.ID, "reason", reason)
		close(r.done)
	})
}
