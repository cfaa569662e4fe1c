package services_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"productos/internal/api"
	"productos/internal/apitest"
	"productos/internal/domain"
	"productos/internal/services"
)

var errDown = errors.New("service down")

// stubAPI records calls and fails on demand.
type stubAPI struct {
	mu       sync.Mutex
	list     []domain.Product
	failList bool
	failMut  bool
	calls    []string
	payloads []domain.Payload
}

func (s *stubAPI) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubAPI) List() ([]domain.Product, error) {
	s.record("list")
	if s.failList {
		return nil, errDown
	}
	return append([]domain.Product(nil), s.list...), nil
}

func (s *stubAPI) Create(p domain.Payload) (domain.Product, error) {
	s.record("create")
	s.payloads = append(s.payloads, p)
	if s.failMut {
		return domain.Product{}, errDown
	}
	return domain.Product{ID: 99, Name: p.Name}, nil
}

func (s *stubAPI) Update(id int64, p domain.Payload) (domain.Product, error) {
	s.record("update")
	s.payloads = append(s.payloads, p)
	if s.failMut {
		return domain.Product{}, errDown
	}
	return domain.Product{ID: id, Name: p.Name}, nil
}

func (s *stubAPI) Delete(id int64) error {
	s.record("delete")
	if s.failMut {
		return errDown
	}
	return nil
}

func widget() domain.Product { return apitest.Product(1, "Widget", "A widget", "9.99", 5) }

func TestRefresh_ReplacesCacheInServerOrder(t *testing.T) {
	stub := &stubAPI{list: []domain.Product{apitest.Product(2, "B", "", "1", 1), widget()}}
	ctl := services.NewProductController(stub)

	if err := ctl.Refresh(); err != nil {
		t.Fatal(err)
	}
	v := ctl.View()
	if !reflect.DeepEqual(v.Products, stub.list) {
		t.Fatalf("cache differs from server: %+v", v.Products)
	}
	if v.Error != "" {
		t.Fatalf("unexpected error %q", v.Error)
	}
}

func TestRefresh_FailureKeepsStaleCache(t *testing.T) {
	stub := &stubAPI{list: []domain.Product{widget()}}
	ctl := services.NewProductController(stub)
	if err := ctl.Refresh(); err != nil {
		t.Fatal(err)
	}

	stub.failList = true
	stub.list = nil
	if err := ctl.Refresh(); err == nil {
		t.Fatal("expected error")
	}
	v := ctl.View()
	if len(v.Products) != 1 || v.Products[0].ID != 1 {
		t.Fatalf("stale cache lost: %+v", v.Products)
	}
	if v.Error != services.MsgFetchFailed {
		t.Fatalf("want %q, got %q", services.MsgFetchFailed, v.Error)
	}
}

func TestSubmit_CreateClosesEditorAndRefreshes(t *testing.T) {
	stub := &stubAPI{}
	ctl := services.NewProductController(stub)
	ctl.BeginCreate()
	if !ctl.View().EditorOpen {
		t.Fatal("editor should be open")
	}

	id, err := ctl.Submit(domain.Draft{Name: "Widget", Description: "A widget", Price: "9.99", Stock: "5"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 99 {
		t.Fatalf("want created id 99, got %d", id)
	}
	if want := []string{"create", "list"}; !reflect.DeepEqual(stub.calls, want) {
		t.Fatalf("want calls %v, got %v", want, stub.calls)
	}
	v := ctl.View()
	if v.EditorOpen || v.Draft != (domain.Draft{}) {
		t.Fatalf("editor not closed: %+v", v)
	}
}

func TestSubmit_UpdateUsesEditingID(t *testing.T) {
	stub := &stubAPI{list: []domain.Product{widget()}}
	ctl := services.NewProductController(stub)
	_ = ctl.Refresh()

	ctl.BeginEdit(widget())
	d := ctl.View().Draft
	if d.EditingID == nil || *d.EditingID != 1 || d.Price != "9.99" || d.Stock != "5" {
		t.Fatalf("draft not filled from product: %+v", d)
	}
	d.Name = "Widget 2"
	if _, err := ctl.Submit(d); err != nil {
		t.Fatal(err)
	}
	if stub.calls[len(stub.calls)-2] != "update" {
		t.Fatalf("expected update call, got %v", stub.calls)
	}
	if got := stub.payloads[len(stub.payloads)-1].Name; got != "Widget 2" {
		t.Fatalf("payload name %q", got)
	}
}

func TestSubmit_FailureKeepsEditorOpen(t *testing.T) {
	stub := &stubAPI{list: []domain.Product{widget()}, failMut: true}
	ctl := services.NewProductController(stub)
	_ = ctl.Refresh()
	ctl.BeginCreate()

	d := domain.Draft{Name: "Nuevo", Price: "1.00", Stock: "1"}
	if _, err := ctl.Submit(d); err == nil {
		t.Fatal("expected error")
	}
	v := ctl.View()
	if !v.EditorOpen || v.Draft != d || v.Error != services.MsgSaveFailed {
		t.Fatalf("editor state after failure: %+v", v)
	}
	if len(v.Products) != 1 {
		t.Fatalf("cache changed: %+v", v.Products)
	}
}

func TestSubmit_InvalidDraftMakesNoCall(t *testing.T) {
	stub := &stubAPI{}
	ctl := services.NewProductController(stub)
	ctl.BeginCreate()

	if _, err := ctl.Submit(domain.Draft{Name: "x", Price: "-5", Stock: "1"}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(stub.calls) != 0 {
		t.Fatalf("no network call expected, got %v", stub.calls)
	}
	if v := ctl.View(); v.Error != services.MsgSaveFailed || !v.EditorOpen {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestSubmit_StaleAfterRefreshFailure(t *testing.T) {
	stub := &stubAPI{failList: true}
	ctl := services.NewProductController(stub)
	_, err := ctl.Submit(domain.Draft{Name: "x", Price: "1", Stock: "1"})
	if !errors.Is(err, services.ErrStale) {
		t.Fatalf("want ErrStale, got %v", err)
	}
	if v := ctl.View(); v.EditorOpen || v.Error != services.MsgFetchFailed {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestRemove_RequiresConfirmation(t *testing.T) {
	stub := &stubAPI{list: []domain.Product{widget()}}
	ctl := services.NewProductController(stub)
	_ = ctl.Refresh()
	stub.calls = nil

	if err := ctl.Remove(1, false); !errors.Is(err, services.ErrNotConfirmed) {
		t.Fatalf("want ErrNotConfirmed, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("unconfirmed remove made calls: %v", stub.calls)
	}
	if len(ctl.View().Products) != 1 {
		t.Fatal("cache changed")
	}

	stub.list = nil
	if err := ctl.Remove(1, true); err != nil {
		t.Fatal(err)
	}
	if want := []string{"delete", "list"}; !reflect.DeepEqual(stub.calls, want) {
		t.Fatalf("want %v, got %v", want, stub.calls)
	}
	if len(ctl.View().Products) != 0 {
		t.Fatal("cache not refreshed")
	}
}

func TestRemove_FailureSetsError(t *testing.T) {
	stub := &stubAPI{list: []domain.Product{widget()}, failMut: true}
	ctl := services.NewProductController(stub)
	_ = ctl.Refresh()
	if err := ctl.Remove(1, true); err == nil {
		t.Fatal("expected error")
	}
	v := ctl.View()
	if v.Error != services.MsgDeleteFailed || len(v.Products) != 1 {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestCancelEdit_ClearsErrorAndDraft(t *testing.T) {
	stub := &stubAPI{failMut: true}
	ctl := services.NewProductController(stub)
	ctl.BeginCreate()
	_, _ = ctl.Submit(domain.Draft{Name: "x", Price: "1", Stock: "1"})

	ctl.CancelEdit()
	v := ctl.View()
	if v.EditorOpen || v.Error != "" || v.Draft != (domain.Draft{}) {
		t.Fatalf("cancel left state behind: %+v", v)
	}
}

func TestBeginCreate_ResetsEditingDraft(t *testing.T) {
	ctl := services.NewProductController(&stubAPI{})
	ctl.BeginEdit(widget())
	ctl.BeginCreate()
	if d := ctl.View().Draft; d.Editing() || d.Name != "" {
		t.Fatalf("draft not reset: %+v", d)
	}
}

func TestProductLookup(t *testing.T) {
	ctl := services.NewProductController(&stubAPI{list: []domain.Product{widget()}})
	_ = ctl.Refresh()
	if p, err := ctl.Product(1); err != nil || p.Name != "Widget" {
		t.Fatalf("lookup failed: %+v %v", p, err)
	}
	if _, err := ctl.Product(7); !errors.Is(err, services.ErrUnknownProduct) {
		t.Fatalf("want ErrUnknownProduct, got %v", err)
	}
}

// Against the fake service through the real client.
func TestController_WithRemoteService(t *testing.T) {
	srv := apitest.NewServer(t, widget())
	ctl := services.NewProductController(api.NewClient(srv.URL, 0))

	if err := ctl.Refresh(); err != nil {
		t.Fatal(err)
	}
	v := ctl.View()
	if len(v.Products) != 1 || v.Products[0].PriceLabel() != "$9.99" {
		t.Fatalf("unexpected list: %+v", v.Products)
	}

	ctl.BeginEdit(v.Products[0])
	d := ctl.View().Draft
	d.Name, d.Price, d.Stock = "Widget Pro", "19.50", "2"
	if _, err := ctl.Submit(d); err != nil {
		t.Fatal(err)
	}
	p, err := ctl.Product(1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Widget Pro" || p.PriceLabel() != "$19.50" || p.Stock != 2 {
		t.Fatalf("update not reflected after refresh: %+v", p)
	}

	srv.Fail(fiber.MethodDelete, fiber.StatusInternalServerError)
	if err := ctl.Remove(1, true); err == nil {
		t.Fatal("expected delete failure")
	}
	if v := ctl.View(); v.Error != services.MsgDeleteFailed || len(v.Products) != 1 {
		t.Fatalf("unexpected view after failed delete: %+v", v)
	}
}
