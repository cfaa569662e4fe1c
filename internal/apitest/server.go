// Package apitest serves an in-memory productos collection for tests.
package apitest

import (
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"productos/internal/domain"
)

type Server struct {
	URL string

	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Product
	order  []int64
	fail   map[string]int // method -> forced status
	calls  map[string]int
	bodies []map[string]any
}

// NewServer starts the fake on a loopback port and stops it when the test ends.
func NewServer(t testing.TB, seed ...domain.Product) *Server {
	t.Helper()
	s := &Server{
		items: map[int64]domain.Product{},
		fail:  map[string]int{},
		calls: map[string]int{},
	}
	for _, p := range seed {
		s.put(p)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(s.count)
	app.Get("/api/productos/", s.list)
	app.Post("/api/productos/", s.create)
	app.Put("/api/productos/:id/", s.update)
	app.Delete("/api/productos/:id/", s.remove)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("apitest listen: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	s.URL = "http://" + ln.Addr().String()
	return s
}

// Product builds a seed record; price is parsed as a decimal.
func Product(id int64, name, desc, price string, stock int) domain.Product {
	pr, _ := domain.NewPrice(price)
	return domain.Product{ID: id, Name: name, Description: desc, Price: pr, Stock: stock}
}

// Fail makes every request with method answer with status until Heal.
func (s *Server) Fail(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = status
}

func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = map[string]int{}
}

// Calls returns how many requests with method reached the server.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// TotalCalls counts requests of every method.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.calls {
		n += v
	}
	return n
}

// LastBody is the decoded JSON body of the latest POST or PUT.
func (s *Server) LastBody() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return nil
	}
	return s.bodies[len(s.bodies)-1]
}

// Products returns the stored collection in insertion order.
func (s *Server) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Set replaces a stored record behind the client's back.
func (s *Server) Set(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(p)
}

func (s *Server) put(p domain.Product) {
	if _, ok := s.items[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.items[p.ID] = p
	if p.ID >= s.nextID {
		s.nextID = p.ID
	}
}

func (s *Server) count(c *fiber.Ctx) error {
	s.mu.Lock()
	s.calls[c.Method()]++
	code, failing := s.fail[c.Method()]
	s.mu.Unlock()
	if failing {
		return c.Status(code).JSON(fiber.Map{"detail": "forced failure"})
	}
	return c.Next()
}

type body struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       domain.Price `json:"price"`
	Stock       int          `json:"stock"`
}

func (s *Server) parse(c *fiber.Ctx) (body, bool) {
	var raw map[string]any
	_ = c.App().Config().JSONDecoder(c.Body(), &raw)
	var b body
	if err := c.BodyParser(&b); err != nil || b.Name == "" || !b.Price.Valid || b.Price.Amount.IsNegative() || b.Stock < 0 {
		return b, false
	}
	s.mu.Lock()
	s.bodies = append(s.bodies, raw)
	s.mu.Unlock()
	return b, true
}

func (s *Server) list(c *fiber.Ctx) error {
	return c.JSON(s.Products())
}

func (s *Server) create(c *fiber.Ctx) error {
	b, ok := s.parse(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid"})
	}
	s.mu.Lock()
	s.nextID++
	p := domain.Product{ID: s.nextID, Name: b.Name, Description: b.Description, Price: b.Price, Stock: b.Stock}
	s.put(p)
	s.mu.Unlock()
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	b, ok := s.parse(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.items[id]; !found {
		return c.SendStatus(fiber.StatusNotFound)
	}
	p := domain.Product{ID: id, Name: b.Name, Description: b.Description, Price: b.Price, Stock: b.Stock}
	s.items[id] = p
	return c.JSON(p)
}

func (s *Server) remove(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.items[id]; !found {
		return c.SendStatus(fiber.StatusNotFound)
	}
	delete(s.items, id)
	kept := s.order[:0]
	for _, x := range s.order {
		if x != id {
			kept = append(kept, x)
		}
	}
	s.order = kept
	return c.SendStatus(fiber.StatusNoContent)
}
