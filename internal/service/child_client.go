package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/asq3-api/internal/models"
)

// ErrChildNotFound is returned by child providers when the registry has no such child.
var ErrChildNotFound = errors.New("child not found")

type remoteChild struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id"`
	Name     string  `json:"name"`
	Birthday string  `json:"birthday"`
	Gender   string  `json:"gender"`
	IsActive *bool   `json:"is_active"`
}

type remoteChildEnvelope struct {
	Data  *remoteChild `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ChildClient reads children from a remote registry over HTTP.
type ChildClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewChildClient builds a registry client. Transport errors and 5xx responses are retried.
func NewChildClient(baseURL, token string, timeout time.Duration, retries int, logger *zap.Logger) *ChildClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &ChildClient{http: client, logger: logger}
}

// FindByID fetches a child by id.
func (c *ChildClient) FindByID(ctx context.Context, id string) (*models.Child, error) {
	var envelope remoteChildEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&envelope).
		SetError(&envelope).
		Get("/children/{id}")
	if err != nil {
		c.logger.Error("child registry call failed", zap.String("child_id", id), zap.Error(err))
		return nil, fmt.Errorf("fetch child %s: %w", id, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrChildNotFound
	case resp.IsError():
		msg := resp.Status()
		if envelope.Error != nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return nil, fmt.Errorf("child registry returned %d: %s", resp.StatusCode(), msg)
	case envelope.Data == nil:
		return nil, fmt.Errorf("child registry returned empty payload for %s", id)
	}

	return envelope.Data.toModel()
}

func (r *remoteChild) toModel() (*models.Child, error) {
	birthday, err := parseBirthday(r.Birthday)
	if err != nil {
		return nil, fmt.Errorf("child %s: %w", r.ID, err)
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Child{
		ID:       r.ID,
		ParentID: r.ParentID,
		Name:     r.Name,
		Birthday: birthday,
		Gender:   r.Gender,
		IsActive: active,
	}, nil
}

func parseBirthday(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid birthday %q", raw)
}
