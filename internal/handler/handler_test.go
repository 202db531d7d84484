package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/deppfellow/go-users/internal/model"
	"github.com/deppfellow/go-users/internal/repository"
	"github.com/deppfellow/go-users/internal/service"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository records calls and answers with the configured hooks.
type fakeRepository struct {
	pages    map[string]repository.Page
	err      error
	puts     []model.User
	cursors  []string
	updated  []string
	deleted  []string
	onUpdate func(id string) error
	onDelete func(id string) error
}

func (r *fakeRepository) Put(_ context.Context, user model.User) error {
	r.puts = append(r.puts, user)
	return r.err
}

func (r *fakeRepository) Scan(_ context.Context, cursor string) (repository.Page, error) {
	r.cursors = append(r.cursors, cursor)
	if r.err != nil {
		return repository.Page{}, r.err
	}
	return r.pages[cursor], nil
}

func (r *fakeRepository) Update(_ context.Context, id string, _ model.UserInput) error {
	r.updated = append(r.updated, id)
	if r.onUpdate != nil {
		return r.onUpdate(id)
	}
	return r.err
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	if r.onDelete != nil {
		return r.onDelete(id)
	}
	return r.err
}

func newTestHandler(repo repository.Repository, logs *bytes.Buffer) *Handler {
	log := zerolog.New(logs).Level(zerolog.DebugLevel)
	users := service.NewUserService(repo, service.WithIDGenerator(func() string { return "test-uuid" }))
	return NewHandler(&log, NewUserHandler(users).Routes())
}

func request(routeKey, body string, params map[string]string) Request {
	return Request{
		RouteKey:       routeKey,
		Body:           body,
		PathParameters: params,
		RequestContext: events.APIGatewayV2HTTPRequestContext{RequestID: "req-1"},
	}
}

func do(t *testing.T, h *Handler, req Request) Response {
	t.Helper()
	resp, err := h.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, resp.Headers["Content-Type"])
	return resp
}

func TestCreateUser(t *testing.T) {
	repo := &fakeRepository{}
	h := newTestHandler(repo, &bytes.Buffer{})

	resp := do(t, h, request(RouteCreateUser, `{"name":"Test","email":"test@test.com"}`, nil))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":"test-uuid","name":"Test","email":"test@test.com"}`, resp.Body)
	assert.Equal(t, []model.User{{ID: "test-uuid", Name: "Test", Email: "test@test.com"}}, repo.puts)
}

func TestCreateUserDropsUnknownFields(t *testing.T) {
	repo := &fakeRepository{}
	h := newTestHandler(repo, &bytes.Buffer{})

	resp := do(t, h, request(RouteCreateUser, `{"id":"mine","name":"Test","email":"test@test.com","admin":true}`, nil))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":"test-uuid","name":"Test","email":"test@test.com"}`, resp.Body)
}

func TestCreateUserBase64Body(t *testing.T) {
	repo := &fakeRepository{}
	h := newTestHandler(repo, &bytes.Buffer{})

	req := request(RouteCreateUser, base64.StdEncoding.EncodeToString([]byte(`{"name":"Test","email":"test@test.com"}`)), nil)
	req.IsBase64Encoded = true

	resp := do(t, h, req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty body", body: "", message: "Body parsing error."},
		{name: "malformed json", body: `{"name":`, message: "Body parsing error."},
		{name: "missing name", body: `{"email":"test@test.com"}`, message: "Input validation error."},
		{name: "empty name", body: `{"name":"","email":"test@test.com"}`, message: "Input validation error."},
		{name: "invalid email", body: `{"name":"Test","email":"not-an-email"}`, message: "Input validation error."},
		{name: "missing email", body: `{"name":"Test"}`, message: "Input validation error."},
		{name: "mistyped name", body: `{"name":42,"email":"test@test.com"}`, message: "Input validation error."},
		{name: "null document", body: `null`, message: "Input validation error."},
		{name: "array document", body: `[]`, message: "Input validation error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepository{}
			h := newTestHandler(repo, &bytes.Buffer{})

			resp := do(t, h, request(RouteCreateUser, tt.body, nil))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, `{"message":"`+tt.message+`"}`, resp.Body)
			assert.Empty(t, repo.puts)
		})
	}
}

func TestListUsers(t *testing.T) {
	a := model.User{ID: "a", Name: "A", Email: "a@test.com"}
	b := model.User{ID: "b", Name: "B", Email: "b@test.com"}
	repo := &fakeRepository{pages: map[string]repository.Page{
		"":  {Items: []model.User{a}, Next: "k"},
		"k": {Items: []model.User{b}},
	}}
	h := newTestHandler(repo, &bytes.Buffer{})

	resp := do(t, h, request(RouteListUsers, "", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"results":[
		{"id":"a","name":"A","email":"a@test.com"},
		{"id":"b","name":"B","email":"b@test.com"}
	]}`, resp.Body)
	assert.Equal(t, []string{"", "k"}, repo.cursors)
}

func TestListUsersEmpty(t *testing.T) {
	h := newTestHandler(&fakeRepository{}, &bytes.Buffer{})

	resp := do(t, h, request(RouteListUsers, "", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"results":[]}`, resp.Body)
}

func TestUpdateUser(t *testing.T) {
	repo := &fakeRepository{}
	h := newTestHandler(repo, &bytes.Buffer{})

	resp := do(t, h, request(RouteUpdateUser, `{"name":"New","email":"new@test.com"}`, map[string]string{"id": "u1"}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, resp.Body)
	assert.Equal(t, []string{"u1"}, repo.updated)
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	notFound := func(string) error { return repository.ErrNotFound }
	repo := &fakeRepository{onUpdate: notFound, onDelete: notFound}
	h := newTestHandler(repo, &bytes.Buffer{})
	params := map[string]string{"id": "missing"}

	resp := do(t, h, request(RouteUpdateUser, `{"name":"New","email":"new@test.com"}`, params))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"User not found."}`, resp.Body)

	resp = do(t, h, request(RouteDeleteUser, "", params))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"User not found."}`, resp.Body)
}

func TestDeleteUser(t *testing.T) {
	repo := &fakeRepository{}
	h := newTestHandler(repo, &bytes.Buffer{})

	resp := do(t, h, request(RouteDeleteUser, "", map[string]string{"id": "u1"}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, resp.Body)
	assert.Equal(t, []string{"u1"}, repo.deleted)
}

func TestMissingPathParam(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "update without params", req: request(RouteUpdateUser, `not json`, nil)},
		{name: "update with empty id", req: request(RouteUpdateUser, `{}`, map[string]string{"id": ""})},
		{name: "delete without params", req: request(RouteDeleteUser, "", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepository{}
			h := newTestHandler(repo, &bytes.Buffer{})

			resp := do(t, h, tt.req)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, `{"message":"Param id not found."}`, resp.Body)
			assert.Empty(t, repo.updated)
			assert.Empty(t, repo.deleted)
		})
	}
}

func TestUnmatchedRoute(t *testing.T) {
	for _, routeKey := range []string{"PUT /users", "GET /users/{id}", "DELETE /users", "GET /other", "POST /users/{id}"} {
		t.Run(routeKey, func(t *testing.T) {
			repo := &fakeRepository{}
			h := newTestHandler(repo, &bytes.Buffer{})

			resp := do(t, h, request(routeKey, `{"name":"Test","email":"test@test.com"}`, map[string]string{"id": "u1"}))

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "{}", resp.Body)
			assert.Empty(t, repo.puts)
			assert.Empty(t, repo.cursors)
		})
	}
}

func TestUnreportedFailureIsHidden(t *testing.T) {
	logs := &bytes.Buffer{}
	repo := &fakeRepository{err: errors.New("dial tcp 10.0.0.7:8000: secret detail")}
	h := newTestHandler(repo, logs)

	resp := do(t, h, request(RouteListUsers, "", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Internal server error."}`, resp.Body)
	assert.NotContains(t, resp.Body, "secret")
	assert.Contains(t, logs.String(), "secret detail")
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), `"request_id":"req-1"`)
}

func TestNewRelicTransaction(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("users-test"),
		newrelic.ConfigLicense("0123456789012345678901234567890123456789"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)
	t.Cleanup(func() { app.Shutdown(0) })

	logs := &bytes.Buffer{}
	log := zerolog.New(logs)

	var traced bool
	h := NewHandler(&log, map[string]RouteFunc{
		RouteListUsers: func(ctx context.Context, _ Request) (Response, error) {
			traced = newrelic.FromContext(ctx) != nil
			return Response{}, errors.New("scan failed")
		},
	}, WithNewRelic(app))

	resp := do(t, h, request(RouteListUsers, "", nil))

	assert.True(t, traced)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Internal server error."}`, resp.Body)
	assert.Contains(t, logs.String(), `"trace.id"`)
	assert.Contains(t, logs.String(), "scan failed")
}

func TestWithoutNewRelicNoTransaction(t *testing.T) {
	log := zerolog.Nop()

	var traced bool
	h := NewHandler(&log, map[string]RouteFunc{
		RouteListUsers: func(ctx context.Context, _ Request) (Response, error) {
			traced = newrelic.FromContext(ctx) != nil
			return JSONResponse(http.StatusOK, nil)
		},
	}, WithNewRelic(nil))

	resp := do(t, h, request(RouteListUsers, "", nil))

	assert.False(t, traced)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPanicIsRecovered(t *testing.T) {
	logs := &bytes.Buffer{}
	log := zerolog.New(logs)
	h := NewHandler(&log, map[string]RouteFunc{
		RouteListUsers: func(context.Context, Request) (Response, error) {
			panic("boom")
		},
	})

	resp := do(t, h, request(RouteListUsers, "", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Internal server error."}`, resp.Body)
	assert.Contains(t, logs.String(), "panic: boom")
}

func TestDefaultRouteKeyIsDerived(t *testing.T) {
	repo := &fakeRepository{}
	h := newTestHandler(repo, &bytes.Buffer{})

	req := Request{
		RouteKey: "$default",
		RawPath:  "/users/abc%20def",
		Body:     `{"name":"New","email":"new@test.com"}`,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: "patch"},
		},
	}

	resp := do(t, h, req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"abc def"}, repo.updated)
}

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		routeKey string
		id       string
	}{
		{
			name:     "concrete route key",
			req:      Request{RouteKey: "GET /users"},
			routeKey: "GET /users",
		},
		{
			name: "collection path",
			req: Request{RawPath: "/users", RequestContext: events.APIGatewayV2HTTPRequestContext{
				HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: "POST"},
			}},
			routeKey: "POST /users",
		},
		{
			name: "item path keeps explicit param",
			req: Request{RawPath: "/users/x", PathParameters: map[string]string{"id": "y"}, RequestContext: events.APIGatewayV2HTTPRequestContext{
				HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: "DELETE"},
			}},
			routeKey: "DELETE /users/{id}",
			id:       "y",
		},
		{
			name: "nested path",
			req: Request{RawPath: "/users/x/y", RequestContext: events.APIGatewayV2HTTPRequestContext{
				HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: "GET"},
			}},
			routeKey: "GET /users/x/y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routeKey, req := resolveRoute(tt.req)
			assert.Equal(t, tt.routeKey, routeKey)
			assert.Equal(t, tt.id, req.PathParameters[ParamID])
		})
	}
}

func TestJSONResponse(t *testing.T) {
	resp, err := JSONResponse(http.StatusOK, nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Body)

	_, err = JSONResponse(http.StatusOK, func() {})
	assert.Error(t, err)
}
