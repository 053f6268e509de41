package openproject

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is the number of work packages requested per page when listing the work
// packages for a project.
const DefaultPageSize = 100

// Client is a minimal OpenProject API v3 client for work packages. The base URL is the API
// root e.g. https://pm.example.com/api/v3.
type Client struct {
	base   *url.URL
	auth   string
	client *http.Client
	debug  bool
}

func NewClient(base string, apikey string, timeout time.Duration, debug bool) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(base), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid OpenProject URL '%v' (%w)", base, err)
	} else if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid OpenProject URL '%v' - expected something like 'https://pm.example.com/api/v3'", base)
	}

	if strings.TrimSpace(apikey) == "" {
		return nil, fmt.Errorf("missing OpenProject API key")
	}

	credentials := base64.StdEncoding.EncodeToString([]byte("apikey:" + apikey))

	return &Client{
		base: u,
		auth: "Basic " + credentials,
		client: &http.Client{
			Timeout: timeout,
		},
		debug: debug,
	}, nil
}

// ProjectHref returns the API path for a project e.g. /api/v3/projects/3.
func (c *Client) ProjectHref(project string) string {
	return path.Join("/", c.base.Path, "projects", project)
}

func (c *Client) TypeHref(id string) string {
	return path.Join("/", c.base.Path, "types", id)
}

func (c *Client) WorkPackageHref(id int) string {
	return path.Join("/", c.base.Path, "work_packages", strconv.Itoa(id))
}

func (c *Client) CreateWorkPackage(ctx context.Context, form WorkPackageForm) (*WorkPackage, error) {
	var wp WorkPackage

	if err := c.do(ctx, http.MethodPost, "work_packages", nil, form, &wp); err != nil {
		return nil, err
	}

	return &wp, nil
}

func (c *Client) WorkPackage(ctx context.Context, id int) (*WorkPackage, error) {
	var wp WorkPackage

	if err := c.do(ctx, http.MethodGet, "work_packages/"+strconv.Itoa(id), nil, nil, &wp); err != nil {
		return nil, err
	}

	return &wp, nil
}

func (c *Client) DeleteWorkPackage(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "work_packages/"+strconv.Itoa(id), nil, nil, nil)
}

// WorkPackages retrieves all the work packages (open and closed) for a project, one page at a
// time.
func (c *Client) WorkPackages(ctx context.Context, project string, pageSize int) ([]WorkPackage, error) {
	query := url.Values{}
	query.Set("filters", "[]")

	list, err := fetchAll[WorkPackage](ctx, c, path.Join("projects", project, "work_packages"), query, pageSize)
	if err != nil {
		return nil, fmt.Errorf("error fetching work packages for project %v (%w)", project, err)
	}

	return list, nil
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return fetchAll[Project](ctx, c, "projects", nil, DefaultPageSize)
}

func (c *Client) Types(ctx context.Context) ([]Type, error) {
	return fetchAll[Type](ctx, c, "types", nil, DefaultPageSize)
}

// fetchAll retrieves a collection one page at a time. Paging stops once the reported total has
// been retrieved or on a short page.
func fetchAll[T any](ctx context.Context, c *Client, endpoint string, query url.Values, pageSize int) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	list := []T{}

	for page := 1; ; page++ {
		var reply collection[T]

		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}

		q.Set("pageSize", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(page))

		if err := c.do(ctx, http.MethodGet, endpoint, q, nil, &reply); err != nil {
			return nil, fmt.Errorf("page %v of %v (%w)", page, endpoint, err)
		}

		elements := reply.Embedded.Elements
		list = append(list, elements...)

		if c.debug {
			log.Printf("%-5s fetched page %v of %v with %v elements (%v of %v)", "DEBUG", page, endpoint, len(elements), len(list), reply.Total)
		}

		if len(elements) == 0 || len(list) >= reply.Total || len(elements) < pageSize {
			break
		}
	}

	return list, nil
}

func (c *Client) do(ctx context.Context, method string, endpoint string, query url.Values, request any, reply any) error {
	u := *c.base
	u.Path = path.Join(c.base.Path, endpoint)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if request != nil {
		b, err := json.Marshal(request)
		if err != nil {
			return err
		}

		if c.debug {
			log.Printf("%-5s %v %v %s", "DEBUG", method, u.String(), b)
		}

		body = bytes.NewReader(b)
	} else if c.debug {
		log.Printf("%-5s %v %v", "DEBUG", method, u.String())
	}

	rq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}

	rq.Header.Set("Authorization", c.auth)
	rq.Header.Set("Accept", "application/hal+json")
	if body != nil {
		rq.Header.Set("Content-Type", "application/json")
	}

	response, err := c.client.Do(rq)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	b, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return decodeError(response.StatusCode, b)
	}

	if reply != nil && len(b) > 0 {
		if err := json.Unmarshal(b, reply); err != nil {
			return fmt.Errorf("invalid response from %v %v (%w)", method, u.Path, err)
		}
	}

	return nil
}
