// Package api talks to the remote productos collection endpoint.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"productos/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const collectionPath = "/api/productos/"

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Client struct {
	BaseURL string
	Timeout time.Duration // 0: wait for the transport

	http *fiber.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		http: &fiber.Client{
			UserAgent:   "productos-ui",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
}

func (c *Client) collectionURL() string { return c.BaseURL + collectionPath }

func (c *Client) itemURL(id int64) string {
	return fmt.Sprintf("%s%s%d/", c.BaseURL, collectionPath, id)
}

// do runs the agent and returns the body of a 2xx response.
func (c *Client) do(a *fiber.Agent, method, url string) ([]byte, error) {
	if c.Timeout > 0 {
		a.Timeout(c.Timeout)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, errors.Wrapf(errs[0], "%s %s", method, url)
	}
	if code < 200 || code > 299 {
		return nil, errors.WithStack(&StatusError{Method: method, URL: url, Code: code, Body: string(body)})
	}
	return body, nil
}

// List fetches the whole collection in server order.
func (c *Client) List() ([]domain.Product, error) {
	url := c.collectionURL()
	body, err := c.do(c.http.Get(url), fiber.MethodGet, url)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", url)
	}
	return out, nil
}

func (c *Client) Create(p domain.Payload) (domain.Product, error) {
	url := c.collectionURL()
	body, err := c.do(c.http.Post(url).JSON(p), fiber.MethodPost, url)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeOne(body, url)
}

func (c *Client) Update(id int64, p domain.Payload) (domain.Product, error) {
	url := c.itemURL(id)
	body, err := c.do(c.http.Put(url).JSON(p), fiber.MethodPut, url)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeOne(body, url)
}

func (c *Client) Delete(id int64) error {
	url := c.itemURL(id)
	_, err := c.do(c.http.Delete(url), fiber.MethodDelete, url)
	return err
}

func decodeOne(body []byte, url string) (domain.Product, error) {
	var p domain.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.Product{}, errors.Wrapf(err, "decode %s", url)
	}
	return p, nil
}
