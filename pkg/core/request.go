package core

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Params is a flat set of query parameters. Values are formatted with fmt.Sprint.
type Params map[string]any

// Request describes one call to dispatch. Auth, Affiliate, UserIP and Category
// are declarative: the session turns them into headers, query or body fields
// and a rate-limit bucket.
type Request struct {
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Query     url.Values        `json:"query,omitempty"`
	Body      any               `json:"body,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Auth      bool              `json:"auth"`
	Affiliate bool              `json:"affiliate"`
	UserIP    string            `json:"user_ip,omitempty"`
	Category  RateCategory      `json:"category,omitempty"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:   method,
		Path:     path,
		Query:    make(url.Values),
		Headers:  make(map[string]string),
		Category: CategoryDefault,
	}
}

// Get creates a GET request for path.
func Get(path string) *Request {
	return NewRequest(http.MethodGet, path)
}

// Post creates a POST request for path with the given JSON body.
func Post(path string, body any) *Request {
	return NewRequest(http.MethodPost, path).SetBody(body)
}

// SetQuery replaces any values of key with value.
func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Set(key, fmt.Sprint(value))
	return r
}

// AddQuery appends value to key, keeping earlier values.
func (r *Request) AddQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Add(key, fmt.Sprint(value))
	return r
}

// SetQueryParams sets every entry of params in key order. Nil values are skipped.
func (r *Request) SetQueryParams(params Params) *Request {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if params[k] == nil {
			continue
		}
		r.SetQuery(k, params[k])
	}
	return r
}

func (r *Request) SetBody(body any) *Request {
	r.Body = body
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetAuth marks the request as requiring the account secret.
func (r *Request) SetAuth(auth bool) *Request {
	r.Auth = auth
	return r
}

// SetAffiliate marks the request as crediting the configured affiliate.
func (r *Request) SetAffiliate(affiliate bool) *Request {
	r.Affiliate = affiliate
	return r
}

// SetUserIP forwards the end user's address. Empty leaves the header unset.
func (r *Request) SetUserIP(ip string) *Request {
	r.UserIP = strings.TrimSpace(ip)
	return r
}

func (r *Request) SetCategory(category RateCategory) *Request {
	r.Category = category.Normalize()
	return r
}

// String returns the method and path, e.g. "GET /coins".
func (r *Request) String() string {
	return r.Method + " " + r.Path
}
