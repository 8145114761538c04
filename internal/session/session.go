package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/joe-hadchity/lescale-pos/internal/cart"
	"github.com/joe-hadchity/lescale-pos/internal/checkout"
	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTableRequired   = errors.New("table number required for dine-in orders")
)

// Session is one order in progress on this terminal: its cart, its checkout
// machine and the order metadata. All mutation happens on the handler
// goroutine of a single terminal, the manager's lock only guards the
// registry itself.
type Session struct {
	ID          string
	Type        entity.OrderType
	TableNumber string
	Note        string
	Cart        *cart.Cart
	Machine     *checkout.Machine
	OpenedAt    time.Time
}

// Order assembles the current order value from the session.
func (s *Session) Order() *entity.Order {
	return &entity.Order{
		Type:            s.Type,
		TableNumber:     s.TableNumber,
		Lines:           s.Cart.Lines(),
		DiscountPercent: s.Machine.DiscountPercent(),
		PaymentMethod:   s.Machine.Method(),
		Note:            s.Note,
	}
}

// heldCart is the JSON shape parked in Redis while an order is on hold.
type heldCart struct {
	ID          string            `json:"id"`
	Type        entity.OrderType  `json:"type"`
	TableNumber string            `json:"table_number"`
	Note        string            `json:"note,omitempty"`
	Lines       []entity.CartLine `json:"lines"`
	HeldAt      time.Time         `json:"held_at"`
}

// Manager is the registry of active sessions. Held carts are parked in
// Redis so an order survives a terminal restart between courses.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rdb      *redis.Client
	checkPin checkout.PinChecker
}

func NewManager(rdb *redis.Client, checkPin checkout.PinChecker) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		checkPin: checkPin,
	}
}

// Open starts a new order session. Dine-in orders need a table number;
// every other type gets "N/A".
func (m *Manager) Open(orderType entity.OrderType, tableNumber, note string) (*Session, error) {
	switch orderType {
	case entity.OrderTypeDineIn:
		if tableNumber == "" {
			return nil, ErrTableRequired
		}
	case entity.OrderTypeTakeAway, entity.OrderTypeDelivery:
		tableNumber = "N/A"
	default:
		return nil, fmt.Errorf("unknown order type: %s", orderType)
	}

	m.mu.Lock()
	// The ID space is small; redraw under the lock until the slot is free
	// so a collision never overwrites a live session.
	id := randomSessionID()
	for {
		if _, exists := m.sessions[id]; !exists {
			break
		}
		id = randomSessionID()
	}
	s := &Session{
		ID:          id,
		Type:        orderType,
		TableNumber: tableNumber,
		Note:        note,
		Cart:        cart.New(),
		Machine:     checkout.NewMachine(m.checkPin),
		OpenedAt:    time.Now(),
	}
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Get looks a session up by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close drops a session after submission or cancel.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// park snapshots the order for Redis. In-progress checkout input is
// discarded on purpose; only the cart contents and metadata survive.
func (s *Session) park(at time.Time) heldCart {
	return heldCart{
		ID:          s.ID,
		Type:        s.Type,
		TableNumber: s.TableNumber,
		Note:        s.Note,
		Lines:       s.Cart.Lines(),
		HeldAt:      at,
	}
}

// restore rebuilds a live session from a parked cart, with a fresh checkout
// machine.
func (m *Manager) restore(held heldCart) *Session {
	s := &Session{
		ID:          held.ID,
		Type:        held.Type,
		TableNumber: held.TableNumber,
		Note:        held.Note,
		Cart:        cart.New(),
		Machine:     checkout.NewMachine(m.checkPin),
		OpenedAt:    time.Now(),
	}
	for _, line := range held.Lines {
		s.Cart.AddLine(line)
	}
	return s
}

// Hold parks a session's cart in Redis and removes it from the registry.
func (m *Manager) Hold(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	if m.rdb == nil {
		return errors.New("held carts are not configured")
	}

	raw, err := json.Marshal(s.park(time.Now()))
	if err != nil {
		return err
	}
	key := fmt.Sprintf("held-cart:%s", id)
	if err := m.rdb.Set(ctx, key, raw, 24*time.Hour).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error holding cart %s", id)
		return err
	}

	m.Close(id)
	return nil
}

// Resume restores a held cart into a fresh session.
func (m *Manager) Resume(ctx context.Context, id string) (*Session, error) {
	if m.rdb == nil {
		return nil, errors.New("held carts are not configured")
	}
	key := fmt.Sprintf("held-cart:%s", id)
	raw, err := m.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var held heldCart
	if err := json.Unmarshal([]byte(raw), &held); err != nil {
		return nil, err
	}

	s := m.restore(held)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if err := m.rdb.Del(ctx, key).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error deleting held cart %s", id)
	}
	return s, nil
}

func randomSessionID() string {
	return fmt.Sprintf("%d", 100000+rand.Intn(900000))
}
