package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/teamtask/internal/identity"
	"github.com/huangang/teamtask/internal/middleware"
	"github.com/huangang/teamtask/internal/repository/gormstore"
	"github.com/huangang/teamtask/internal/services"
	"github.com/huangang/teamtask/internal/testdb"
	"github.com/huangang/teamtask/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeIdentity treats the bearer token as the user id.
type fakeIdentity struct {
	users map[string]identity.User
}

func (f *fakeIdentity) Authenticate(_ context.Context, token string) (string, error) {
	if _, ok := f.users[token]; !ok {
		return "", identity.ErrInvalidToken
	}
	return token, nil
}

func (f *fakeIdentity) LookupUser(_ context.Context, id string) (*identity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeIdentity) FindUserByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (f *fakeIdentity) ListUsers(context.Context) ([]identity.User, error) {
	out := make([]identity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db := testdb.Open(t)
	ident := &fakeIdentity{users: map[string]identity.User{
		"alice": {ID: "alice", Email: "alice@example.com", FirstName: "Alice"},
		"bob":   {ID: "bob", Email: "bob@example.com", FirstName: "Bob"},
	}}

	store := gormstore.New(db)
	scope := services.NewScope(store)
	projectService := services.NewProjectService(store, scope, services.NewRosterService(store, ident))

	projects := NewProjectHandler(projectService)
	tasks := NewTaskHandler(services.NewTaskService(store, scope, projectService))
	comments := NewCommentHandler(services.NewCommentService(store, scope))
	invites := NewInviteHandler(services.NewInviteService(store, ident, nil))

	r := gin.New()
	r.GET("/health", NewHealthHandler(db, "none").CheckHealth)
	api := r.Group("/api", middleware.AuthRequired(ident))
	api.GET("/projects", projects.List)
	api.POST("/projects", projects.Create)
	api.GET("/projects/basic_projects", projects.BasicProjects)
	api.GET("/projects/:id", projects.GetByID)
	api.PATCH("/projects/:id", projects.Update)
	api.DELETE("/projects/:id", projects.Delete)
	api.POST("/tasks", tasks.Create)
	api.GET("/tasks/personal_tasks", tasks.PersonalTasks)
	api.GET("/tasks/:id", tasks.GetByID)
	api.PATCH("/tasks/:id", tasks.Update)
	api.POST("/comments", comments.Create)
	api.GET("/comments", comments.List)
	api.POST("/invites/invite_user", invites.InviteUser)
	api.GET("/invites/pending_invites", invites.PendingInvites)
	api.POST("/invites/respond_to_invite", invites.RespondToInvite)
	return r
}

type envelope struct {
	response.Response
	Data json.RawMessage `json:"data"`
}

func call(t *testing.T, r *gin.Engine, user, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func createProject(t *testing.T, r *gin.Engine, user, name string) string {
	t.Helper()
	code, env := call(t, r, user, http.MethodPost, "/api/projects", gin.H{"name": name, "status": "active"})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var p struct {
		ID   string  `json:"id"`
		Team *string `json:"team"`
	}
	decode(t, env.Data, &p)
	require.NotEmpty(t, p.ID)
	require.NotNil(t, p.Team)
	return p.ID
}

func createTask(t *testing.T, r *gin.Engine, user string, body gin.H) (int, envelope) {
	t.Helper()
	base := gin.H{"title": "Write docs", "priority": "high", "due_date": "2030-01-02T15:04:05Z"}
	for k, v := range body {
		base[k] = v
	}
	return call(t, r, user, http.MethodPost, "/api/tasks", base)
}

func TestHealth(t *testing.T) {
	r := newRouter(t)

	code, _ := call(t, r, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestUnauthenticated(t *testing.T) {
	r := newRouter(t)

	code, env := call(t, r, "", http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 401, env.Code)

	code, _ = call(t, r, "mallory", http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProjectVisibility(t *testing.T) {
	r := newRouter(t)
	id := createProject(t, r, "alice", "Launch")

	code, _ := call(t, r, "alice", http.MethodGet, "/api/projects/"+id, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := call(t, r, "bob", http.MethodGet, "/api/projects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "project not found", env.Message)

	code, env = call(t, r, "bob", http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]interface{}
	decode(t, env.Data, &list)
	assert.Empty(t, list)
}

func TestBasicProjectsIncludesRoster(t *testing.T) {
	r := newRouter(t)
	createProject(t, r, "alice", "Launch")

	code, env := call(t, r, "alice", http.MethodGet, "/api/projects/basic_projects", nil)
	require.Equal(t, http.StatusOK, code)

	var body struct {
		Projects []struct {
			Name    string `json:"name"`
			Members []struct {
				UserID string `json:"user_id"`
				Role   string `json:"role"`
			} `json:"members"`
		} `json:"projects"`
	}
	decode(t, env.Data, &body)
	require.Len(t, body.Projects, 1)
	require.Len(t, body.Projects[0].Members, 1)
	assert.Equal(t, "alice", body.Projects[0].Members[0].UserID)
	assert.Equal(t, "owner", body.Projects[0].Members[0].Role)
}

func TestCreateTaskBindingErrors(t *testing.T) {
	r := newRouter(t)

	code, env := call(t, r, "alice", http.MethodPost, "/api/tasks", gin.H{"priority": "low"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "This field is required.", env.Errors["title"])
	assert.Equal(t, "This field is required.", env.Errors["due_date"])
	assert.NotContains(t, env.Errors, "priority")
}

func TestCreateTaskStatusRules(t *testing.T) {
	r := newRouter(t)
	projectID := createProject(t, r, "alice", "Launch")

	code, env := createTask(t, r, "alice", gin.H{"project": projectID, "status": "Blocked"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Status must be one of: Todo, In Progress, Done", env.Errors["status"])

	code, env = createTask(t, r, "alice", gin.H{"project": projectID})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var task struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		CreatedBy string `json:"created_by"`
	}
	decode(t, env.Data, &task)
	assert.Equal(t, "Todo", task.Status)
	assert.Equal(t, "alice", task.CreatedBy)

	code, env = call(t, r, "alice", http.MethodPatch, "/api/tasks/"+task.ID, gin.H{"status": "Done"})
	require.Equal(t, http.StatusOK, code, env.Message)
	decode(t, env.Data, &task)
	assert.Equal(t, "Done", task.Status)

	code, env = call(t, r, "alice", http.MethodGet, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var detail struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	decode(t, env.Data, &detail)
	assert.Equal(t, projectID, detail.Project.ID)

	code, _ = call(t, r, "bob", http.MethodGet, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPersonalTasksWrapped(t *testing.T) {
	r := newRouter(t)
	code, _ := createTask(t, r, "alice", nil)
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, r, "alice", http.MethodGet, "/api/tasks/personal_tasks", nil)
	require.Equal(t, http.StatusOK, code)
	var body struct {
		Tasks []struct {
			Title   string  `json:"title"`
			Status  string  `json:"status"`
			Project *string `json:"project"`
		} `json:"tasks"`
	}
	decode(t, env.Data, &body)
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, "Todo", body.Tasks[0].Status)
	assert.Nil(t, body.Tasks[0].Project)
}

func TestDeleteProjectWithTasksConflicts(t *testing.T) {
	r := newRouter(t)
	projectID := createProject(t, r, "alice", "Launch")
	code, _ := createTask(t, r, "alice", gin.H{"project": projectID})
	require.Equal(t, http.StatusCreated, code)

	code, _ = call(t, r, "alice", http.MethodDelete, "/api/projects/"+projectID, nil)
	assert.Equal(t, http.StatusConflict, code)

	empty := createProject(t, r, "alice", "Empty")
	code, _ = call(t, r, "alice", http.MethodDelete, "/api/projects/"+empty, nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestCommentOnInvisibleTask(t *testing.T) {
	r := newRouter(t)
	code, env := createTask(t, r, "alice", nil)
	require.Equal(t, http.StatusCreated, code)
	var task struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &task)

	code, env = call(t, r, "bob", http.MethodPost, "/api/comments", gin.H{"task": task.ID, "content": "hi"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "task")

	code, _ = call(t, r, "alice", http.MethodPost, "/api/comments", gin.H{"task": task.ID, "content": "hi"})
	require.Equal(t, http.StatusCreated, code)

	code, env = call(t, r, "alice", http.MethodGet, "/api/comments?task="+task.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var comments []map[string]interface{}
	decode(t, env.Data, &comments)
	assert.Len(t, comments, 1)
}

func TestInviteFlow(t *testing.T) {
	r := newRouter(t)
	projectID := createProject(t, r, "alice", "Launch")

	code, env := call(t, r, "alice", http.MethodPost, "/api/invites/invite_user",
		gin.H{"email": "not-an-email", "project_id": projectID})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Enter a valid email address.", env.Errors["email"])

	code, env = call(t, r, "alice", http.MethodPost, "/api/invites/invite_user",
		gin.H{"email": "Bob@Example.com", "project_id": projectID})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = call(t, r, "alice", http.MethodPost, "/api/invites/invite_user",
		gin.H{"email": "bob@example.com", "project_id": projectID})
	assert.Equal(t, http.StatusConflict, code)

	code, env = call(t, r, "bob", http.MethodGet, "/api/invites/pending_invites", nil)
	require.Equal(t, http.StatusOK, code)
	var pending struct {
		Invites []struct {
			InviteID    string `json:"invite_id"`
			ProjectName string `json:"project_name"`
			Role        string `json:"role"`
		} `json:"invites"`
	}
	decode(t, env.Data, &pending)
	require.Len(t, pending.Invites, 1)
	assert.Equal(t, "Launch", pending.Invites[0].ProjectName)
	assert.Equal(t, "member", pending.Invites[0].Role)

	code, env = call(t, r, "bob", http.MethodPost, "/api/invites/respond_to_invite",
		gin.H{"invite_id": pending.Invites[0].InviteID, "response": "accepted"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = call(t, r, "bob", http.MethodPost, "/api/invites/respond_to_invite",
		gin.H{"invite_id": pending.Invites[0].InviteID, "response": "accepted"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, r, "bob", http.MethodGet, "/api/projects/"+projectID, nil)
	assert.Equal(t, http.StatusOK, code)
}
