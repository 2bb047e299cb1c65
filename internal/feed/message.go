// Package feed decodes the venue's multiplexed websocket feed and routes it into the stores.
package feed

import "github.com/vadiminshakov/tobmaker/internal/domain"

// Channel feed channel name.
type Channel string

const (
	ChannelAuth     Channel = "auth"
	ChannelSymbols  Channel = "symbols"
	ChannelBalances Channel = "balances"
	ChannelPrices   Channel = "prices"
	ChannelL2       Channel = "l2"
	ChannelTrading  Channel = "trading"
)

// Event feed event name.
type Event string

const (
	EventSubscribed   Event = "subscribed"
	EventUnsubscribed Event = "unsubscribed"
	EventRejected     Event = "rejected"
	EventSnapshot     Event = "snapshot"
	EventUpdated      Event = "updated"
)

// Message one decoded inbound message. Every (channel, event) pair has its own type.
type Message interface {
	Channel() Channel
	Event() Event
	Seqnum() int64
}

type header struct {
	seqnum int64
}

func (h header) Seqnum() int64 { return h.seqnum }

// Subscribed subscription ack on any channel.
type Subscribed struct {
	header
	channel Channel
}

func (m Subscribed) Channel() Channel { return m.channel }
func (m Subscribed) Event() Event     { return EventSubscribed }

// Unsubscribed unsubscription ack on any channel.
type Unsubscribed struct {
	header
	channel Channel
}

func (m Unsubscribed) Channel() Channel { return m.channel }
func (m Unsubscribed) Event() Event     { return EventUnsubscribed }

// Rejected the venue refused a request on the channel.
type Rejected struct {
	header
	channel Channel
	Text    string
}

func (m Rejected) Channel() Channel { return m.channel }
func (m Rejected) Event() Event     { return EventRejected }

// SymbolsSnapshot reference data of every listed symbol.
type SymbolsSnapshot struct {
	header
	Symbols map[domain.Symbol]domain.SymbolMeta
}

func (SymbolsSnapshot) Channel() Channel { return ChannelSymbols }
func (SymbolsSnapshot) Event() Event     { return EventSnapshot }

// BalancesSnapshot full balances of the account.
type BalancesSnapshot struct {
	header
	Balances []domain.Balance
}

func (BalancesSnapshot) Channel() Channel { return ChannelBalances }
func (BalancesSnapshot) Event() Event     { return EventSnapshot }

// PriceUpdate latest candle of a symbol.
type PriceUpdate struct {
	header
	Symbol domain.Symbol
	Record domain.PriceRecord
}

func (PriceUpdate) Channel() Channel { return ChannelPrices }
func (PriceUpdate) Event() Event     { return EventUpdated }

// BookSnapshot full L2 book of a symbol.
type BookSnapshot struct {
	header
	Symbol domain.Symbol
	Bids   []domain.Level
	Asks   []domain.Level
}

func (BookSnapshot) Channel() Channel { return ChannelL2 }
func (BookSnapshot) Event() Event     { return EventSnapshot }

// BookUpdate L2 levels changed since the previous message.
type BookUpdate struct {
	header
	Symbol domain.Symbol
	Bids   []domain.Level
	Asks   []domain.Level
}

func (BookUpdate) Channel() Channel { return ChannelL2 }
func (BookUpdate) Event() Event     { return EventUpdated }

// OrdersSnapshot the account's live orders at subscription time.
type OrdersSnapshot struct {
	header
	Orders []domain.Order
}

func (OrdersSnapshot) Channel() Channel { return ChannelTrading }
func (OrdersSnapshot) Event() Event     { return EventSnapshot }

// OrderUpdate execution report of one order.
type OrderUpdate struct {
	header
	Order domain.Order
}

func (OrderUpdate) Channel() Channel { return ChannelTrading }
func (OrderUpdate) Event() Event     { return EventUpdated }
