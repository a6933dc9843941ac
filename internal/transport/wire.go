// Package transport is the external collaborator spec.md scopes the core
// out to: a binary wire protocol and TCP server that drive a core/engine
// Engine from client connections. None of this affects matching semantics;
// it is the "client binding/wrapper" spec.md §1 explicitly excludes from
// the core's responsibility.
package transport

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"

	"lobengine/internal/core"
)

var (
	ErrMessageTooShort    = errors.New("transport: message too short for its declared header")
	ErrUnknownMessageType = errors.New("transport: unknown message type")
)

// MessageType tags an inbound client request.
type MessageType uint16

const (
	NewOrder MessageType = iota
	CancelOrder
	SnapshotQuery
	TradesQuery
)

// ReportType tags an outbound server message.
type ReportType byte

const (
	OrderAccepted ReportType = iota
	TradeExecuted
	ErrorReport
	SnapshotResult
	CancelResult
)

const (
	baseHeaderLen = 2 // MessageType

	// OrderType(2) + Side(1) + Price(8) + Quantity(8) + Timestamp(8) + SymbolLen(1)
	newOrderFixedLen = 2 + 1 + 8 + 8 + 8 + 1
	// UUID is always rendered as its 36-byte canonical string form on the wire.
	uuidWireLen         = 36
	cancelOrderFixedLen = uuidWireLen
	tradesQueryLen      = 4 // int32 limit, 0 meaning "all"
)

// NewOrderRequest is a parsed NewOrder message.
type NewOrderRequest struct {
	OrderType core.OrderType
	Side      core.Side
	Price     float64
	Quantity  uint64
	Timestamp uint64
	Symbol    *string
}

// ParseNewOrder decodes a NewOrder message body (header already stripped).
func ParseNewOrder(body []byte) (NewOrderRequest, error) {
	if len(body) < newOrderFixedLen {
		return NewOrderRequest{}, ErrMessageTooShort
	}
	req := NewOrderRequest{
		OrderType: core.OrderType(binary.BigEndian.Uint16(body[0:2])),
		Side:      core.Side(body[2]),
		Price:     math.Float64frombits(binary.BigEndian.Uint64(body[3:11])),
		Quantity:  binary.BigEndian.Uint64(body[11:19]),
		Timestamp: binary.BigEndian.Uint64(body[19:27]),
	}
	symbolLen := int(body[27])
	if len(body) < newOrderFixedLen+symbolLen {
		return NewOrderRequest{}, ErrMessageTooShort
	}
	if symbolLen > 0 {
		symbol := string(body[newOrderFixedLen : newOrderFixedLen+symbolLen])
		req.Symbol = &symbol
	}
	return req, nil
}

// EncodeNewOrder serializes a NewOrder request, used by the CLI client.
func EncodeNewOrder(req NewOrderRequest) []byte {
	symbol := ""
	if req.Symbol != nil {
		symbol = *req.Symbol
	}
	buf := make([]byte, baseHeaderLen+newOrderFixedLen+len(symbol))
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	binary.BigEndian.PutUint16(buf[2:4], uint16(req.OrderType))
	buf[4] = byte(req.Side)
	binary.BigEndian.PutUint64(buf[5:13], math.Float64bits(req.Price))
	binary.BigEndian.PutUint64(buf[13:21], req.Quantity)
	binary.BigEndian.PutUint64(buf[21:29], req.Timestamp)
	buf[29] = byte(len(symbol))
	copy(buf[30:], symbol)
	return buf
}

// ParseCancelOrder decodes a CancelOrder message body: the 36-byte string
// form of the wire-facing order UUID.
func ParseCancelOrder(body []byte) (string, error) {
	if len(body) < cancelOrderFixedLen {
		return "", ErrMessageTooShort
	}
	return string(body[:cancelOrderFixedLen]), nil
}

// EncodeCancelOrder serializes a CancelOrder request for orderUUID.
func EncodeCancelOrder(orderUUID string) []byte {
	buf := make([]byte, baseHeaderLen+cancelOrderFixedLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	copy(buf[baseHeaderLen:], orderUUID)
	return buf
}

// ParseTradesQuery decodes a TradesQuery body: an int32 limit, 0 meaning "all".
func ParseTradesQuery(body []byte) (int, error) {
	if len(body) < tradesQueryLen {
		return 0, ErrMessageTooShort
	}
	return int(int32(binary.BigEndian.Uint32(body[:tradesQueryLen]))), nil
}

// EncodeTradesQuery serializes a TradesQuery request.
func EncodeTradesQuery(limit int) []byte {
	buf := make([]byte, baseHeaderLen+tradesQueryLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(TradesQuery))
	binary.BigEndian.PutUint32(buf[baseHeaderLen:], uint32(int32(limit)))
	return buf
}

// EncodeSnapshotQuery serializes a SnapshotQuery request (no body).
func EncodeSnapshotQuery() []byte {
	buf := make([]byte, baseHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(SnapshotQuery))
	return buf
}

// ParseMessageType reads the leading message type and returns the
// remaining body.
func ParseMessageType(msg []byte) (MessageType, []byte, error) {
	if len(msg) < baseHeaderLen {
		return 0, nil, ErrMessageTooShort
	}
	return MessageType(binary.BigEndian.Uint16(msg[0:2])), msg[baseHeaderLen:], nil
}

// newOrderUUID mints a fresh wire-facing order handle.
func newOrderUUID() string {
	return uuid.New().String()
}

// --- Outbound reports --------------------------------------------------

// EncodeOrderAccepted serializes an order-accepted acknowledgement carrying
// the wire-facing handle the client should use to cancel it later.
func EncodeOrderAccepted(orderUUID string) []byte {
	buf := make([]byte, 1+uuidWireLen)
	buf[0] = byte(OrderAccepted)
	copy(buf[1:], orderUUID)
	return buf
}

// EncodeTradeExecuted serializes a single trade execution report.
func EncodeTradeExecuted(buyUUID, sellUUID string, price float64, quantity, timestamp uint64) []byte {
	buf := make([]byte, 1+uuidWireLen+uuidWireLen+8+8+8)
	buf[0] = byte(TradeExecuted)
	off := 1
	copy(buf[off:], buyUUID)
	off += uuidWireLen
	copy(buf[off:], sellUUID)
	off += uuidWireLen
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(price))
	off += 8
	binary.BigEndian.PutUint64(buf[off:], quantity)
	off += 8
	binary.BigEndian.PutUint64(buf[off:], timestamp)
	return buf
}

// EncodeErrorReport serializes an error message.
func EncodeErrorReport(msg string) []byte {
	buf := make([]byte, 1+4+len(msg))
	buf[0] = byte(ErrorReport)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(msg)))
	copy(buf[5:], msg)
	return buf
}

// EncodeCancelResult serializes the boolean result of a cancel request.
func EncodeCancelResult(ok bool) []byte {
	buf := make([]byte, 2)
	buf[0] = byte(CancelResult)
	if ok {
		buf[1] = 1
	}
	return buf
}

// EncodeSnapshotResult serializes a depth snapshot.
func EncodeSnapshotResult(bids, asks []DepthEntry) []byte {
	size := 1 + 4 + 4 + len(bids)*16 + len(asks)*16
	buf := make([]byte, size)
	buf[0] = byte(SnapshotResult)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(bids)))
	binary.BigEndian.PutUint32(buf[5:9], uint32(len(asks)))
	off := 9
	for _, e := range append(append([]DepthEntry{}, bids...), asks...) {
		binary.BigEndian.PutUint64(buf[off:], math.Float64bits(e.Price))
		binary.BigEndian.PutUint64(buf[off+8:], e.Quantity)
		off += 16
	}
	return buf
}

// DepthEntry is one (price, quantity) row of a snapshot report.
type DepthEntry struct {
	Price    float64
	Quantity uint64
}
