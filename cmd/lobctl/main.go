// Command lobctl is a CLI client for lobd: it places and cancels orders and
// prints execution reports as they arrive.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lobengine/internal/core"
	"lobengine/internal/transport"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the exchange server")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'snapshot', 'trades']")

	symbol := flag.String("symbol", "", "Symbol tag to attach to a placed order (optional)")
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	typeStr := flag.String("type", "limit", "Order type: 'limit' or 'market'")
	priceStr := flag.String("price", "100.00", "Limit price (ignored for market orders)")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")
	tsFlag := flag.Uint64("ts", 0, "Timestamp to attach to the order (caller-supplied)")

	uuid := flag.String("uuid", "", "Order UUID to cancel")
	limit := flag.Int("limit", 0, "Trade log limit for 'trades' (0 means all)")

	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readReports(conn)

	side := core.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = core.Sell
	}
	orderType := core.LimitOrder
	if strings.ToLower(*typeStr) == "market" {
		orderType = core.MarketOrder
	}

	switch strings.ToLower(*action) {
	case "place":
		price, err := decimal.NewFromString(*priceStr)
		if err != nil {
			log.Fatalf("invalid -price %q: %v", *priceStr, err)
		}
		priceFloat, _ := price.Float64()

		for _, qty := range parseQuantities(*qtyStr) {
			req := transport.NewOrderRequest{
				OrderType: orderType,
				Side:      side,
				Price:     priceFloat,
				Quantity:  qty,
				Timestamp: *tsFlag,
			}
			if *symbol != "" {
				req.Symbol = symbol
			}
			if _, err := conn.Write(transport.EncodeNewOrder(req)); err != nil {
				log.Printf("failed to place order (qty %d): %v", qty, err)
				continue
			}
			fmt.Printf("-> sent %s %s order qty=%d price=%s\n", strings.ToUpper(*sideStr), strings.ToUpper(*typeStr), qty, price.String())
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *uuid == "" {
			log.Fatal("-uuid is required for cancel")
		}
		if _, err := conn.Write(transport.EncodeCancelOrder(*uuid)); err != nil {
			log.Printf("failed to send cancel: %v", err)
		} else {
			fmt.Printf("-> sent cancel for %s\n", *uuid)
		}

	case "snapshot":
		if _, err := conn.Write(transport.EncodeSnapshotQuery()); err != nil {
			log.Printf("failed to send snapshot query: %v", err)
		} else {
			fmt.Println("-> sent snapshot query")
		}

	case "trades":
		if _, err := conn.Write(transport.EncodeTradesQuery(*limit)); err != nil {
			log.Printf("failed to send trades query: %v", err)
		} else {
			fmt.Println("-> sent trades query")
		}

	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("listening for reports... (press Ctrl+C to exit)")
	select {}
}

// parseQuantities splits a comma-separated string into a slice of uint64.
func parseQuantities(input string) []uint64 {
	var result []uint64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		val, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			log.Printf("warning: invalid quantity %q, skipping", p)
			continue
		}
		result = append(result, val)
	}
	return result
}

// readReports continuously reads and prints report messages from the
// server. Each call to Read is assumed to deliver one complete message, the
// same assumption the teacher's own client made for this message shape.
func readReports(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}
		printReport(buf[:n])
	}
}

func printReport(msg []byte) {
	if len(msg) == 0 {
		return
	}
	switch transport.ReportType(msg[0]) {
	case transport.OrderAccepted:
		if len(msg) < 37 {
			return
		}
		fmt.Printf("\n[ACCEPTED] order=%s\n", string(msg[1:37]))

	case transport.TradeExecuted:
		if len(msg) < 97 {
			return
		}
		off := 1
		buyUUID := string(msg[off : off+36])
		off += 36
		sellUUID := string(msg[off : off+36])
		off += 36
		price := math.Float64frombits(binary.BigEndian.Uint64(msg[off:]))
		off += 8
		qty := binary.BigEndian.Uint64(msg[off:])
		off += 8
		ts := binary.BigEndian.Uint64(msg[off:])
		fmt.Printf("\n[TRADE] buy=%s sell=%s qty=%d price=%.2f ts=%d\n", buyUUID, sellUUID, qty, price, ts)

	case transport.ErrorReport:
		if len(msg) < 5 {
			return
		}
		n := binary.BigEndian.Uint32(msg[1:5])
		if uint32(len(msg)) < 5+n {
			return
		}
		fmt.Printf("\n[ERROR] %s\n", string(msg[5:5+n]))

	case transport.CancelResult:
		if len(msg) < 2 {
			return
		}
		fmt.Printf("\n[CANCEL] ok=%t\n", msg[1] == 1)

	case transport.SnapshotResult:
		if len(msg) < 9 {
			return
		}
		nBids := binary.BigEndian.Uint32(msg[1:5])
		nAsks := binary.BigEndian.Uint32(msg[5:9])
		off := 9
		fmt.Println("\n[SNAPSHOT]")
		fmt.Println("  bids:")
		for i := uint32(0); i < nBids && off+16 <= len(msg); i++ {
			price := math.Float64frombits(binary.BigEndian.Uint64(msg[off:]))
			qty := binary.BigEndian.Uint64(msg[off+8:])
			fmt.Printf("    %.2f x %d\n", price, qty)
			off += 16
		}
		fmt.Println("  asks:")
		for i := uint32(0); i < nAsks && off+16 <= len(msg); i++ {
			price := math.Float64frombits(binary.BigEndian.Uint64(msg[off:]))
			qty := binary.BigEndian.Uint64(msg[off+8:])
			fmt.Printf("    %.2f x %d\n", price, qty)
			off += 16
		}

	default:
		fmt.Printf("\n[UNKNOWN REPORT] type=%d\n", msg[0])
	}
}
