package services

import (
	"errors"
	"sync"

	"productos/internal/domain"
	"productos/internal/validate"
)

// Messages shown in the error slot. Each failure overwrites the previous one.
const (
	MsgFetchFailed  = "Error al cargar los productos"
	MsgSaveFailed   = "Error al guardar el producto"
	MsgDeleteFailed = "Error al eliminar el producto"
)

var (
	ErrNotConfirmed   = errors.New("delete not confirmed")
	ErrUnknownProduct = errors.New("product not in list")
	// ErrStale wraps a refresh failure that followed a successful mutation.
	ErrStale = errors.New("mutation applied but list refresh failed")
)

// ProductAPI is the remote collection endpoint.
type ProductAPI interface {
	List() ([]domain.Product, error)
	Create(p domain.Payload) (domain.Product, error)
	Update(id int64, p domain.Payload) (domain.Product, error)
	Delete(id int64) error
}

// ProductController owns the product list cache, the editor draft and the
// error slot. The lock is never held across a call to API, so overlapping
// operations complete in whatever order the transport delivers them.
type ProductController struct {
	API ProductAPI

	mu         sync.Mutex
	products   []domain.Product
	draft      domain.Draft
	editorOpen bool
	err        string
}

func NewProductController(api ProductAPI) *ProductController {
	return &ProductController{API: api, products: []domain.Product{}}
}

// View is a snapshot for rendering.
type View struct {
	Products   []domain.Product
	Draft      domain.Draft
	EditorOpen bool
	Error      string
}

func (c *ProductController) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps := make([]domain.Product, len(c.products))
	copy(ps, c.products)
	return View{Products: ps, Draft: c.draft, EditorOpen: c.editorOpen, Error: c.err}
}

// Refresh replaces the cache with the server collection. On failure the old
// cache stays.
func (c *ProductController) Refresh() error {
	ps, err := c.API.List()
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.err = MsgFetchFailed
		return err
	}
	c.products = ps
	return nil
}

// Submit creates the draft, or updates draft.EditingID when set, and returns
// the id of the saved product. On success the editor closes and the list is
// re-fetched; on failure the editor stays open with the submitted draft.
func (c *ProductController) Submit(d domain.Draft) (int64, error) {
	var saved domain.Product
	p, err := validate.Draft(d)
	if err == nil {
		if d.EditingID != nil {
			saved, err = c.API.Update(*d.EditingID, p)
		} else {
			saved, err = c.API.Create(p)
		}
	}
	c.mu.Lock()
	if err != nil {
		c.draft = d
		c.editorOpen = true
		c.err = MsgSaveFailed
		c.mu.Unlock()
		return 0, err
	}
	c.draft = domain.Draft{}
	c.editorOpen = false
	c.err = ""
	c.mu.Unlock()
	id := saved.ID
	if id == 0 && d.EditingID != nil {
		id = *d.EditingID
	}
	return id, c.refreshAfterMutation()
}

// Remove deletes id once the user confirmed it. Unconfirmed calls do nothing.
func (c *ProductController) Remove(id int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := c.API.Delete(id); err != nil {
		c.mu.Lock()
		c.err = MsgDeleteFailed
		c.mu.Unlock()
		return err
	}
	return c.refreshAfterMutation()
}

func (c *ProductController) refreshAfterMutation() error {
	if err := c.Refresh(); err != nil {
		return errors.Join(ErrStale, err)
	}
	return nil
}

func (c *ProductController) BeginCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = domain.Draft{}
	c.editorOpen = true
}

func (c *ProductController) BeginEdit(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = validate.FromProduct(p)
	c.editorOpen = true
}

func (c *ProductController) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = domain.Draft{}
	c.editorOpen = false
	c.err = ""
}

// Product looks id up in the cache.
func (c *ProductController) Product(id int64) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrUnknownProduct
}

// State exports what survives between requests.
func (c *ProductController) State() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.ViewState{EditorOpen: c.editorOpen, Draft: c.draft, Error: c.err}
}

func (c *ProductController) Restore(st domain.ViewState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editorOpen = st.EditorOpen
	c.draft = st.Draft
	c.err = st.Error
}
