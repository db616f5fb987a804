package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
)

// APIClient speaks the fetch-style API: the poll transport's only path, and
// both transports' initial-load path.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{},
	}
}

func (c *APIClient) do(method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return fmt.Errorf("%w: %s", errorKind(resp.StatusCode), errBody.Error)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func errorKind(status int) error {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	default:
		return fmt.Errorf("http %d", status)
	}
}

// Register creates an account and returns the user with its token.
func (c *APIClient) Register(email, password, name string) (models.PublicUser, string, error) {
	var out struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	err := c.do(http.MethodPost, "/users/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &out)
	return out.User, out.Token, err
}

// Login verifies credentials and returns the user with its token.
func (c *APIClient) Login(email, password string) (models.PublicUser, string, error) {
	var out struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	err := c.do(http.MethodPost, "/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out.User, out.Token, err
}

// Friends fetches the caller's full friend list.
func (c *APIClient) Friends() ([]models.FriendRecord, error) {
	var out struct {
		Friends []models.FriendRecord `json:"friends"`
	}
	err := c.do(http.MethodGet, "/friends", nil, &out)
	return out.Friends, err
}

// IncomingRequests fetches pending requests addressed to the caller.
func (c *APIClient) IncomingRequests() ([]models.FriendRequest, error) {
	var out struct {
		Requests []models.FriendRequest `json:"requests"`
	}
	err := c.do(http.MethodGet, "/friends/requests/incoming", nil, &out)
	return out.Requests, err
}

// OutgoingRequests fetches pending requests the caller has sent.
func (c *APIClient) OutgoingRequests() ([]models.FriendRequest, error) {
	var out struct {
		Requests []models.FriendRequest `json:"requests"`
	}
	err := c.do(http.MethodGet, "/friends/requests/outgoing", nil, &out)
	return out.Requests, err
}

// Messages fetches the caller's view of one conversation.
func (c *APIClient) Messages(friendID string) ([]models.Message, error) {
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	err := c.do(http.MethodGet, "/messages/"+friendID, nil, &out)
	return out.Messages, err
}

// SendMessage appends a message over the fetch API.
func (c *APIClient) SendMessage(friendID, content string) (*models.Message, error) {
	var out struct {
		Message *models.Message `json:"message"`
	}
	err := c.do(http.MethodPost, "/messages/"+friendID, map[string]string{"content": content}, &out)
	return out.Message, err
}

// MarkRead zeroes the unread counter for a peer.
func (c *APIClient) MarkRead(friendID string) error {
	return c.do(http.MethodPost, "/messages/"+friendID+"/read", nil, nil)
}

// RevokeMessage tombstones a message.
func (c *APIClient) RevokeMessage(friendID, messageID string) error {
	return c.do(http.MethodPost, "/messages/"+friendID+"/"+messageID+"/revoke", nil, nil)
}

// DeleteMessage hides a message from the caller's view.
func (c *APIClient) DeleteMessage(friendID, messageID string) error {
	return c.do(http.MethodDelete, "/messages/"+friendID+"/"+messageID, nil, nil)
}

// SendFriendRequest proposes a friendship.
func (c *APIClient) SendFriendRequest(toUserID string) (*models.FriendRequest, error) {
	var out struct {
		Request *models.FriendRequest `json:"request"`
	}
	err := c.do(http.MethodPost, "/friends/"+toUserID+"/request", nil, &out)
	return out.Request, err
}

// ApproveFriendRequest accepts a pending request.
func (c *APIClient) ApproveFriendRequest(requestID string) error {
	return c.do(http.MethodPost, "/friends/requests/"+requestID+"/approve", nil, nil)
}

// DeclineFriendRequest rejects a pending request.
func (c *APIClient) DeclineFriendRequest(requestID string) error {
	return c.do(http.MethodPost, "/friends/requests/"+requestID+"/decline", nil, nil)
}
