package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/domain/entity"
)

const errBodyLimit = 512

// Client is the JSON/HTTP implementation of API against the books-api
// service. Records are rebuilt fresh from every response; the client keeps
// no cache or identity map.
type Client struct {
	BaseURL   string
	ImageBase string
	HTTP      *http.Client
	Logger    *logrus.Logger
}

func NewClient(baseURL, imageBase string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		BaseURL:   baseURL,
		ImageBase: imageBase,
		HTTP:      &http.Client{Timeout: timeout},
		Logger:    logger,
	}
}

// searchedBook is the wire shape of search results: category, author and
// publisher come back as nested objects and are flattened into their
// display names during mapping.
type searchedBook struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Category      nameRef `json:"category"`
	Image         string  `json:"image"`
	Author        nameRef `json:"author"`
	Publisher     nameRef `json:"publisher"`
	PublishDate   *string `json:"publishDate"`
	Overview      string  `json:"overview"`
	NumberOfPages int     `json:"numberOfPages"`
}

type nameRef struct {
	Name string `json:"name"`
}

func (c *Client) GetBook(ctx context.Context, id string) (entity.Book, error) {
	var b entity.Book
	if err := c.do(ctx, "getBook", http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &b); err != nil {
		return entity.Book{}, err
	}
	return entity.NewBook(c.ImageBase, b), nil
}

func (c *Client) SearchBooks(ctx context.Context, criteria entity.SearchCriteria) ([]entity.Book, error) {
	var raw []searchedBook
	if err := c.do(ctx, "searchBooks", http.MethodPost, "/api/books/search", criteria, &raw); err != nil {
		return nil, err
	}
	books := make([]entity.Book, 0, len(raw))
	for _, r := range raw {
		books = append(books, entity.NewBook(c.ImageBase, entity.Book{
			ID:            r.ID,
			Title:         r.Title,
			Category:      r.Category.Name,
			Image:         r.Image,
			Author:        r.Author.Name,
			Publisher:     r.Publisher.Name,
			PublishDate:   r.PublishDate,
			Overview:      r.Overview,
			NumberOfPages: r.NumberOfPages,
		}))
	}
	return books, nil
}

func (c *Client) SubmitBorrow(ctx context.Context, req BorrowRequest) error {
	return c.do(ctx, "submitBorrow", http.MethodPost, "/api/borrows", req, nil)
}

func (c *Client) EditUser(ctx context.Context, draft map[string]any) (entity.User, error) {
	var u entity.User
	if err := c.do(ctx, "editUser", http.MethodPut, "/api/users", draft, &u); err != nil {
		return entity.User{}, err
	}
	return u, nil
}

func (c *Client) DeleteUser(ctx context.Context, draft map[string]any) error {
	return c.do(ctx, "deleteUser", http.MethodDelete, "/api/users", draft, nil)
}

func (c *Client) UploadAvatar(ctx context.Context, req AvatarUpload) (string, error) {
	var ref string
	if err := c.do(ctx, "uploadAvatar", http.MethodPost, "/api/users/avatar", req, &ref); err != nil {
		return "", err
	}
	return ref, nil
}

func (c *Client) ChangePassword(ctx context.Context, req PasswordChange) error {
	return c.do(ctx, "changePassword", http.MethodPut, "/api/users/password", req, nil)
}

func (c *Client) LinkLibraryCard(ctx context.Context, req CardLink) (entity.LibraryCard, error) {
	var card entity.LibraryCard
	if err := c.do(ctx, "linkLibraryCard", http.MethodPost, "/api/library-cards/link", req, &card); err != nil {
		return entity.LibraryCard{}, err
	}
	return card, nil
}

func (c *Client) CurrentUser(ctx context.Context, username string) (entity.User, error) {
	var u entity.User
	if err := c.do(ctx, "currentUser", http.MethodGet, "/api/users/"+url.PathEscape(username), nil, &u); err != nil {
		return entity.User{}, err
	}
	return u, nil
}

// do executes one round trip. Transport-level failures (the server could not
// be reached) map to StatusUnreachable; non-2xx responses map to their HTTP
// status. ctx cancellation aborts the in-flight request.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &StatusError{Op: op, Status: StatusUnreachable, Body: err.Error()}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return &StatusError{Op: op, Status: StatusUnreachable, Body: err.Error()}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).WithField("op", op).Warn("gateway unreachable")
		}
		return &StatusError{Op: op, Status: StatusUnreachable}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		if c.Logger != nil {
			c.Logger.WithFields(logrus.Fields{"op": op, "status": resp.StatusCode}).Warn("gateway call failed")
		}
		return &StatusError{Op: op, Status: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &StatusError{Op: op, Status: resp.StatusCode, Body: "malformed response: " + err.Error()}
	}
	return nil
}
