package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/TWRT/join-board/internal/client"
	"github.com/TWRT/join-board/internal/models"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRequestFailed = errors.New("request failed")
)

// StatusError is a non-2xx answer from the backend. It unwraps to
// ErrUnauthorized for 401 and ErrRequestFailed for everything else.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (board): status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (board): status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return ErrRequestFailed
}

// TokenSource yields the bearer token of the persisted session. It is
// consulted on every authenticated call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type BoardClient struct {
	baseUrl    string
	guestsPath string
	tokens     TokenSource
	httpClient *http.Client
}

func NewBoardClient(baseUrl, guestsPath string, timeout time.Duration, tokens TokenSource) *BoardClient {
	if !strings.HasSuffix(baseUrl, "/") {
		baseUrl += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BoardClient{
		baseUrl:    baseUrl,
		guestsPath: strings.TrimPrefix(guestsPath, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ client.BoardBackend = (*BoardClient)(nil)
var _ client.Authenticator = (*BoardClient)(nil)

func (c *BoardClient) do(ctx context.Context, op, method, path string, payload any, auth bool) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request (board): %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request (board): %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if auth {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read session token (board): %w", err)
		}
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s (board): %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body (board): %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode}
		var boardErr BoardError
		if err := json.Unmarshal(respBody, &boardErr); err == nil {
			statusErr.Message = boardErr.Error
			if statusErr.Message == "" {
				statusErr.Message = boardErr.Detail
			}
		}
		return nil, statusErr
	}

	return respBody, nil
}

// decodeRecords fans a list response out into records. The backend answers
// with a mapping keyed by id; arrays are accepted too. Keyed records take
// their id from the key unless the fields carry one.
func decodeRecords[T any](body []byte, idOf func(*T) *models.ID) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return nil, err
	}

	keys := make([]models.ID, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, models.ID(k))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	records := make([]T, 0, len(keys))
	for _, k := range keys {
		var rec T
		if err := json.Unmarshal(keyed[string(k)], &rec); err != nil {
			return nil, fmt.Errorf("record %s: %w", k, err)
		}
		if id := idOf(&rec); *id == "" {
			*id = k
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *BoardClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	body, err := c.do(ctx, "list tasks", http.MethodGet, string(client.ResourceTasks), nil, true)
	if err != nil {
		return nil, err
	}

	tasks, err := decodeRecords(body, func(t *models.Task) *models.ID { return &t.ID })
	if err != nil {
		return nil, fmt.Errorf("parse tasks (board): %w", err)
	}
	return tasks, nil
}

func (c *BoardClient) ListSubtasks(ctx context.Context) ([]models.Subtask, error) {
	body, err := c.do(ctx, "list subtasks", http.MethodGet, string(client.ResourceSubtasks), nil, true)
	if err != nil {
		return nil, err
	}

	subtasks, err := decodeRecords(body, func(s *models.Subtask) *models.ID { return &s.ID })
	if err != nil {
		return nil, fmt.Errorf("parse subtasks (board): %w", err)
	}
	return subtasks, nil
}

func (c *BoardClient) ListUsers(ctx context.Context) ([]models.Person, error) {
	body, err := c.do(ctx, "list users", http.MethodGet, "auth/users", nil, true)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body, func(u *UserRecord) *models.ID { return &u.ID })
	if err != nil {
		return nil, fmt.Errorf("parse users (board): %w", err)
	}

	people := make([]models.Person, 0, len(records))
	for _, r := range records {
		people = append(people, r.Person())
	}
	return people, nil
}

func (c *BoardClient) ListGuests(ctx context.Context) ([]models.Person, error) {
	body, err := c.do(ctx, "list guests", http.MethodGet, c.guestsPath, nil, true)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body, func(g *GuestRecord) *models.ID { return &g.ID })
	if err != nil {
		return nil, fmt.Errorf("parse guests (board): %w", err)
	}

	people := make([]models.Person, 0, len(records))
	for _, r := range records {
		people = append(people, r.Person())
	}
	return people, nil
}

func (c *BoardClient) CreateTask(ctx context.Context, task models.Task, subtasks []string) (*models.Task, error) {
	reqBody := CreateTaskRequest{
		Title:          task.Title,
		Description:    task.Description,
		Date:           task.Date,
		Category:       task.Category,
		Priority:       task.Priority,
		AssignedUser:   task.AssignedUser,
		AssignedGuests: task.AssignedGuests,
		Subtasks:       subtasks,
	}
	if reqBody.AssignedGuests == nil {
		reqBody.AssignedGuests = []models.ID{}
	}

	body, err := c.do(ctx, "create task", http.MethodPost, string(client.ResourceTasks), reqBody, true)
	if err != nil {
		return nil, err
	}

	var created models.Task
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("parse create task response (board): %w", err)
	}
	return &created, nil
}

func (c *BoardClient) patch(ctx context.Context, resource client.Resource, id models.ID, fields models.Fields) ([]byte, error) {
	path := string(resource) + string(id) + "/"
	return c.do(ctx, "patch "+strings.TrimSuffix(string(resource), "/"), http.MethodPatch, path, fields, true)
}

// entityBody reports whether a mutation answer carries an entity with an id.
func entityBody(body []byte) bool {
	var probe struct {
		ID models.ID `json:"id"`
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, &probe) == nil && probe.ID != ""
}

func (c *BoardClient) PatchTask(ctx context.Context, id models.ID, fields models.Fields) (*models.Task, error) {
	body, err := c.patch(ctx, client.ResourceTasks, id, fields)
	if err != nil {
		return nil, err
	}
	if !entityBody(body) {
		return nil, nil
	}

	var task models.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("parse patch task response (board): %w", err)
	}
	return &task, nil
}

func (c *BoardClient) PatchSubtask(ctx context.Context, id models.ID, fields models.Fields) (*models.Subtask, error) {
	body, err := c.patch(ctx, client.ResourceSubtasks, id, fields)
	if err != nil {
		return nil, err
	}
	if !entityBody(body) {
		return nil, nil
	}

	var subtask models.Subtask
	if err := json.Unmarshal(body, &subtask); err != nil {
		return nil, fmt.Errorf("parse patch subtask response (board): %w", err)
	}
	return &subtask, nil
}

func (c *BoardClient) Delete(ctx context.Context, resource client.Resource, id models.ID) error {
	path := string(resource) + string(id) + "/"
	_, err := c.do(ctx, "delete "+strings.TrimSuffix(string(resource), "/"), http.MethodDelete, path, nil, true)
	return err
}

func (c *BoardClient) Login(ctx context.Context, email, password string) (*client.LoginResult, error) {
	body, err := c.do(ctx, "login", http.MethodPost, "auth/login/", LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, fmt.Errorf("parse login response (board): %w", err)
	}

	person := loginResp.User.Person()
	return &client.LoginResult{
		Token: loginResp.Token,
		User: models.Identity{
			ID:    person.ID,
			Name:  person.Name,
			Email: person.Email,
			Color: person.Color,
		},
	}, nil
}

func (c *BoardClient) Register(ctx context.Context, reg client.Registration) error {
	reqBody := RegisterRequest{
		Color:            reg.Color,
		Username:         reg.Name,
		Email:            reg.Email,
		Password:         reg.Password,
		RepeatedPassword: reg.Password,
	}
	_, err := c.do(ctx, "register", http.MethodPost, "auth/register/", reqBody, false)
	return err
}
