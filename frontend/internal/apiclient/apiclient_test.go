package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/purplesanya/tg-bot/frontend/internal/accounts"
	"github.com/purplesanya/tg-bot/frontend/internal/session"
	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
	internal_errors "github.com/purplesanya/tg-bot/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWith(active *domain.UserId, users ...domain.User) *accounts.Store {
	return accounts.New(accounts.NewMemoryStore(accounts.State{
		UserAccounts: accounts.Data{ActiveAccountId: active, Accounts: users},
	}))
}

func idPtr(id domain.UserId) *domain.UserId { return &id }

func newTestClient(t *testing.T, handler http.HandlerFunc, store *accounts.Store) (*APIClient, *session.Context) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	sess := session.New()
	return New(server.URL, 5*time.Second, sess, store), sess
}

func TestSchedule_Multipart(t *testing.T) {
	var got map[string]string
	var fileCount int
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/schedule", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		got = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			got[k] = v[0]
		}
		fileCount = len(r.MultipartForm.File["files"])
		w.Write([]byte(`{"success": true, "task_id": "abc"}`))
	}
	client, _ := newTestClient(t, handler, storeWith(nil))

	resp, err := client.Schedule(context.Background(), TaskForm{
		ChatIds:       []domain.ChatId{101},
		Message:       "hi",
		IntervalValue: 2,
		IntervalUnit:  domain.UnitHours,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.TaskId)

	assert.Equal(t, "101", got["chat_ids"])
	assert.Equal(t, "hi", got["message"])
	assert.Equal(t, "2", got["interval_value"])
	assert.Equal(t, "hours", got["interval_unit"])
	assert.Equal(t, "[]", got["final_order"])
	assert.NotContains(t, got, "keep_existing")
	assert.NotContains(t, got, "send_immediately")
	assert.Zero(t, fileCount)
}

func TestUpdateTask_Multipart(t *testing.T) {
	var values map[string][]string
	var names []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tasks/t1/update", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		values = r.MultipartForm.Value
		for _, fh := range r.MultipartForm.File["files"] {
			names = append(names, fh.Filename)
			f, err := fh.Open()
			require.NoError(t, err)
			data, _ := io.ReadAll(f)
			f.Close()
			assert.Equal(t, "data-"+fh.Filename, string(data))
		}
		w.Write([]byte(`{"success": true}`))
	}
	client, _ := newTestClient(t, handler, storeWith(nil))

	send := true
	err := client.UpdateTask(context.Background(), "t1", TaskForm{
		ChatIds:         []domain.ChatId{1, 2, 3},
		Message:         "m",
		IntervalValue:   1,
		IntervalUnit:    domain.UnitDays,
		Files:           []FilePart{{Name: "a.png", Data: []byte("data-a.png")}, {Name: `q"b.jpg`, Data: []byte(`data-q"b.jpg`)}},
		FinalOrder:      []string{"a.png", "/uploads/x.png", `q"b.jpg`},
		KeepExisting:    []string{"/uploads/x.png"},
		SendImmediately: &send,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1,2,3"}, values["chat_ids"])
	assert.Equal(t, []string{`["/uploads/x.png"]`}, values["keep_existing"])
	assert.Equal(t, []string{`["a.png","/uploads/x.png","q\"b.jpg"]`}, values["final_order"])
	assert.NotContains(t, values, "send_immediately", "send_immediately is create-only")
	assert.Equal(t, []string{"a.png", `q"b.jpg`}, names)
}

func TestDo_SessionLossFallsBackToRemainingAccount(t *testing.T) {
	a := domain.User{Id: 1, FirstName: "A"}
	b := domain.User{Id: 2, FirstName: "B"}
	store := storeWith(idPtr(a.Id), a, b)

	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, store)

	_, err := client.GetTasks(context.Background(), false, "UTC")
	require.Error(t, err)
	assert.True(t, internal_errors.IsSessionExpired(err))

	data := store.Snapshot()
	require.Len(t, data.Accounts, 1)
	assert.Equal(t, b.Id, data.Accounts[0].Id)
	require.NotNil(t, data.ActiveAccountId)
	assert.Equal(t, b.Id, *data.ActiveAccountId)

	assert.Equal(t, 1, sess.Navigations())
	assert.Equal(t, session.NavReload, sess.Pending().Kind)
	assert.True(t, sess.Ending())
}

func TestDo_LastAccountLossNavigatesToEntry(t *testing.T) {
	a := domain.User{Id: 1, FirstName: "A"}
	store := storeWith(idPtr(a.Id), a)

	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, store)

	err := client.AuthStatus(context.Background())
	assert.ErrorIs(t, err, internal_errors.ErrSessionExpired)
	assert.True(t, store.Snapshot().Empty())
	assert.Nil(t, store.Snapshot().ActiveAccountId)
	assert.Equal(t, session.NavEntry, sess.Pending().Kind)
}

// brokenDisk loads the given state but never saves.
type brokenDisk struct{ state accounts.State }

func (d brokenDisk) Load() (accounts.State, error) { return d.state, nil }
func (d brokenDisk) Save(accounts.State) error     { return errors.New("disk full") }

func TestDo_UnsavedAccountLossNavigatesToEntry(t *testing.T) {
	a := domain.User{Id: 1, FirstName: "A"}
	b := domain.User{Id: 2, FirstName: "B"}
	store := accounts.New(brokenDisk{state: accounts.State{
		UserAccounts: accounts.Data{ActiveAccountId: idPtr(a.Id), Accounts: []domain.User{a, b}},
	}})

	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, store)

	err := client.AuthStatus(context.Background())
	assert.ErrorIs(t, err, internal_errors.ErrSessionExpired)
	// a reload would restore the expired account and loop
	assert.Equal(t, session.NavEntry, sess.Pending().Kind)
	assert.Equal(t, 1, sess.Navigations())
}

func TestDo_ConcurrentSessionLossNavigatesOnce(t *testing.T) {
	store := storeWith(idPtr(1), domain.User{Id: 1}, domain.User{Id: 2}, domain.User{Id: 3})
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := client.AuthStatus(context.Background())
			assert.ErrorIs(t, err, internal_errors.ErrSessionExpired)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sess.Navigations())
	assert.Len(t, store.Snapshot().Accounts, 2, "only one account is dropped")
}

func TestDo_SequentialSessionLossNavigatesOnce(t *testing.T) {
	store := storeWith(idPtr(1), domain.User{Id: 1}, domain.User{Id: 2})
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, store)

	_ = client.AuthStatus(context.Background())
	_ = client.AuthStatus(context.Background())

	assert.Equal(t, 1, sess.Navigations())
	assert.Len(t, store.Snapshot().Accounts, 1)
}

func TestDo_APIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantAction  string
	}{
		{
			name:        "structured error with action",
			status:      http.StatusBadRequest,
			body:        `{"error": "API credentials required", "action": "require_full_login"}`,
			wantMessage: "API credentials required",
			wantAction:  internal_errors.ActionRequireFullLogin,
		},
		{
			name:        "structured error without action",
			status:      http.StatusNotFound,
			body:        `{"error": "Task not found"}`,
			wantMessage: "Task not found",
		},
		{
			name:        "undecodable body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, storeWith(nil))

			err := client.StartAuth(context.Background(), api.StartAuthRequest{Phone: "+100"})
			var apiErr *internal_errors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantAction, apiErr.Action)
			assert.Zero(t, sess.Navigations())
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(url, time.Second, session.New(), storeWith(nil))
	_, err := client.GetChats(context.Background())

	var netErr *internal_errors.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "GET /api/chats", netErr.Op)
	msg, show := internal_errors.UserMessage(err)
	assert.True(t, show)
	assert.Equal(t, "Internal error: backend unavailable.", msg)
}

func TestDo_CookieSessionCarried(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/verify_code":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
			json.NewEncoder(w).Encode(map[string]any{"success": true, "user": map[string]any{"id": 7, "first_name": "Ann"}})
		case "/api/user/info":
			c, err := r.Cookie("session")
			if err != nil || c.Value != "s1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"logged_in": true, "user": {"id": 7, "first_name": "Ann"}}`))
		}
	}
	client, _ := newTestClient(t, handler, storeWith(nil))

	resp, err := client.VerifyCode(context.Background(), "12345")
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, domain.UserId(7), resp.User.Id)

	info, err := client.UserInfo(context.Background())
	require.NoError(t, err)
	assert.True(t, info.LoggedIn)
}

func TestGetTasks_TimezoneAndArchive(t *testing.T) {
	var gotPath, gotTZ string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTZ = r.URL.Query().Get("timezone")
		w.Write([]byte(`{"tasks": [{"id": "t1", "message": "hi", "status": "archived", "files": 2, "next_run": "2025-01-02T10:00:00+02:00"}]}`))
	}, storeWith(nil))

	tasks, err := client.GetTasks(context.Background(), true, "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "/api/tasks/archived", gotPath)
	assert.Equal(t, "Europe/Berlin", gotTZ)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskArchived, tasks[0].Status)
	assert.Equal(t, 2, tasks[0].FileCount)
	require.NotNil(t, tasks[0].NextRun)
}

func TestTaskCommands(t *testing.T) {
	var calls []string
	var mu sync.Mutex
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`{"success": true}`))
	}, storeWith(nil))

	ctx := context.Background()
	require.NoError(t, client.PauseTask(ctx, "t1"))
	require.NoError(t, client.ResumeTask(ctx, "t1"))
	require.NoError(t, client.ArchiveTask(ctx, "t1"))
	require.NoError(t, client.UnarchiveTask(ctx, "t1"))
	require.NoError(t, client.DeleteTask(ctx, "t1"))

	assert.Equal(t, []string{
		"POST /api/tasks/t1/pause",
		"POST /api/tasks/t1/resume",
		"POST /api/tasks/t1/archive",
		"POST /api/tasks/t1/unarchive",
		"DELETE /api/tasks/t1",
	}, calls)
}
