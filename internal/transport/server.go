package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lobengine/internal/config"
	"lobengine/internal/core"
	"lobengine/internal/core/engine"
)

var ErrInvalidTask = errors.New("transport: worker received a non-connection task")

// clientMessage links one already-framed inbound message to the connection
// it arrived on, handed from a pool worker to the single session handler.
type clientMessage struct {
	conn    net.Conn
	msgType MessageType
	body    []byte
}

// Server is a TCP front end driving a core/engine.Engine. It mints a
// wire-facing UUID per accepted order (fenrir's external-id convention)
// and maps it back to the engine's internal monotonic id for cancellation
// and trade reporting. All engine calls happen on a single goroutine
// (sessionHandler), since the engine itself is not safe for concurrent use.
type Server struct {
	cfg    config.Config
	engine *engine.Engine
	pool   *WorkerPool
	cancel context.CancelFunc
	inbox  chan clientMessage

	mu        sync.Mutex
	orderConn map[uint64]net.Conn
	orderUUID map[uint64]string
	uuidOrder map[string]uint64
}

// New creates a Server bound to cfg and driving eng. It registers itself as
// eng's trade Reporter so fills are pushed to both parties' connections.
func New(cfg config.Config, eng *engine.Engine) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    eng,
		pool:      NewWorkerPool(cfg.WorkerPoolSize),
		inbox:     make(chan clientMessage, taskChanSize),
		orderConn: make(map[uint64]net.Conn),
		orderUUID: make(map[uint64]string),
		uuidOrder: make(map[string]uint64),
	}
	eng.SetReporter(s)
	return s
}

// Run listens on cfg.Address:cfg.Port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return err
	}
	defer func() {
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()
	// Close the listener once ctx is done so a blocked Accept returns.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return t.Wait()
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return t.Wait()
				default:
					log.Error().Err(err).Msg("error accepting client")
					continue
				}
			}
			log.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
			s.pool.AddTask(conn)
		}
	}
}

// Shutdown cancels the server's context, signalling every supervised
// goroutine to wind down.
func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// handleConnection reads exactly one framed message off conn, forwards it
// to the session handler, and re-enqueues conn so another worker can read
// its next message — the same long-lived-session shape as fenrir's
// internal/net/server.go.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrInvalidTask
	}

	if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ConnTimeout)); err != nil {
		log.Error().Err(err).Msg("failed setting read deadline")
		conn.Close()
		return nil
	}

	buf := make([]byte, s.cfg.MaxMessageSize)
	select {
	case <-t.Dying():
		return nil
	default:
	}

	n, err := conn.Read(buf)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			var netErr net.Error
			if !(errors.As(err, &netErr) && netErr.Timeout()) {
				log.Debug().Err(err).Msg("connection read ended")
			}
		}
		conn.Close()
		return nil
	}

	msgType, body, err := ParseMessageType(buf[:n])
	if err != nil {
		log.Error().Err(err).Msg("failed to parse message header")
		conn.Close()
		return nil
	}

	select {
	case s.inbox <- clientMessage{conn: conn, msgType: msgType, body: body}:
	case <-t.Dying():
		return nil
	}
	s.pool.AddTask(conn)
	return nil
}

// sessionHandler is the sole goroutine calling into the engine.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case msg := <-s.inbox:
			s.handleMessage(msg)
		}
	}
}

func (s *Server) handleMessage(msg clientMessage) {
	switch msg.msgType {
	case NewOrder:
		s.handleNewOrder(msg)
	case CancelOrder:
		s.handleCancelOrder(msg)
	case SnapshotQuery:
		s.handleSnapshotQuery(msg)
	case TradesQuery:
		s.handleTradesQuery(msg)
	default:
		log.Error().Int("messageType", int(msg.msgType)).Msg("invalid message type")
		s.writeError(msg.conn, ErrUnknownMessageType)
	}
}

func (s *Server) handleNewOrder(msg clientMessage) {
	req, err := ParseNewOrder(msg.body)
	if err != nil {
		s.writeError(msg.conn, err)
		return
	}

	var id uint64
	if req.OrderType == core.MarketOrder {
		id, err = s.engine.SubmitMarket(req.Side, req.Quantity, req.Timestamp, req.Symbol)
	} else {
		id, err = s.engine.SubmitLimit(req.Side, req.Price, req.Quantity, req.Timestamp, req.Symbol)
	}
	if err != nil {
		log.Error().Err(err).Msg("error placing order")
		s.writeError(msg.conn, err)
		return
	}

	orderUUID := s.registerOrder(id, msg.conn)
	if _, err := msg.conn.Write(EncodeOrderAccepted(orderUUID)); err != nil {
		log.Error().Err(err).Msg("failed to write order acceptance")
	}
}

func (s *Server) handleCancelOrder(msg clientMessage) {
	orderUUID, err := ParseCancelOrder(msg.body)
	if err != nil {
		s.writeError(msg.conn, err)
		return
	}

	s.mu.Lock()
	id, known := s.uuidOrder[orderUUID]
	s.mu.Unlock()

	ok := known && s.engine.Cancel(id)
	if _, err := msg.conn.Write(EncodeCancelResult(ok)); err != nil {
		log.Error().Err(err).Msg("failed to write cancel result")
	}
}

func (s *Server) handleSnapshotQuery(msg clientMessage) {
	bids, asks := s.engine.Snapshot()
	if _, err := msg.conn.Write(EncodeSnapshotResult(toDepthEntries(bids), toDepthEntries(asks))); err != nil {
		log.Error().Err(err).Msg("failed to write snapshot")
	}
}

func (s *Server) handleTradesQuery(msg clientMessage) {
	limit, err := ParseTradesQuery(msg.body)
	if err != nil {
		s.writeError(msg.conn, err)
		return
	}
	var trades []core.Trade
	if limit > 0 {
		trades = s.engine.Trades(limit)
	} else {
		trades = s.engine.Trades()
	}
	for _, trade := range trades {
		buyUUID := s.lookupUUID(trade.BuyOrderID)
		sellUUID := s.lookupUUID(trade.SellOrderID)
		if _, err := msg.conn.Write(EncodeTradeExecuted(buyUUID, sellUUID, trade.Price, trade.Quantity, trade.Timestamp)); err != nil {
			log.Error().Err(err).Msg("failed to write trade report")
			return
		}
	}
}

// ReportTrade implements engine.Reporter: push an execution report to both
// counterparties' connections, if still open.
func (s *Server) ReportTrade(trade core.Trade) {
	buyConn := s.lookupConn(trade.BuyOrderID)
	sellConn := s.lookupConn(trade.SellOrderID)
	buyUUID := s.lookupUUID(trade.BuyOrderID)
	sellUUID := s.lookupUUID(trade.SellOrderID)

	report := EncodeTradeExecuted(buyUUID, sellUUID, trade.Price, trade.Quantity, trade.Timestamp)
	if buyConn != nil {
		if _, err := buyConn.Write(report); err != nil {
			log.Error().Err(err).Msg("failed to report trade to buy side")
		}
	}
	if sellConn != nil && sellConn != buyConn {
		if _, err := sellConn.Write(report); err != nil {
			log.Error().Err(err).Msg("failed to report trade to sell side")
		}
	}
}

func (s *Server) writeError(conn net.Conn, err error) {
	if _, writeErr := conn.Write(EncodeErrorReport(err.Error())); writeErr != nil {
		log.Error().Err(writeErr).Msg("failed to write error report")
	}
}

func (s *Server) registerOrder(id uint64, conn net.Conn) string {
	orderUUID := newOrderUUID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderConn[id] = conn
	s.orderUUID[id] = orderUUID
	s.uuidOrder[orderUUID] = id
	return orderUUID
}

func (s *Server) lookupConn(orderID uint64) net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderConn[orderID]
}

func (s *Server) lookupUUID(orderID uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderUUID[orderID]
}

func toDepthEntries(levels []engine.DepthLevel) []DepthEntry {
	entries := make([]DepthEntry, len(levels))
	for i, l := range levels {
		entries[i] = DepthEntry{Price: l.Price, Quantity: l.Quantity}
	}
	return entries
}
