package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	authpkg "github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/database"
	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
	"github.com/choreme/choreme/internal/task"
	"github.com/choreme/choreme/internal/websocket"
)

type testEnv struct {
	db     *sql.DB
	hub    *websocket.Hub
	parent *model.User
	child  *model.User
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h, err := store.NewHouseholdStore(db).Create("Baggins")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	us := store.NewUserStore(db)
	parent, err := us.Create(h.ID, "Bilbo", "Baggins", "bilbo@shire.test", "x", model.RoleParent)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := us.Create(h.ID, "Frodo", "Baggins", "frodo@shire.test", "x", model.RoleChildren)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	return &testEnv{
		db:     db,
		hub:    websocket.NewHub(slog.Default()),
		parent: parent,
		child:  child,
	}
}

// asUser attaches an auth context the way the session middleware would.
func asUser(r *http.Request, u *model.User) *http.Request {
	return r.WithContext(authpkg.WithAuth(r.Context(), authpkg.AuthContext{
		UserID:      u.ID,
		HouseholdID: u.HouseholdID,
		Role:        u.Role,
	}))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestSignup(t *testing.T) {
	env := setupEnv(t)
	h := NewAuthHandler(store.NewUserStore(env.db), store.NewHouseholdStore(env.db), store.NewSessionStore(env.db), slog.Default())

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{
			"valid signup",
			map[string]any{"firstName": "Sam", "lastName": "Gamgee", "email": "sam@shire.test", "password": "potatoes", "role": "children"},
			http.StatusCreated, "User created",
		},
		{
			"missing password",
			map[string]any{"firstName": "Merry", "email": "merry@shire.test"},
			http.StatusUnprocessableEntity, "Invalid Data",
		},
		{
			"missing email",
			map[string]any{"firstName": "Merry", "password": "x"},
			http.StatusUnprocessableEntity, "Invalid Data",
		},
		{
			"duplicate email",
			map[string]any{"firstName": "Frodo", "lastName": "Baggins", "email": "frodo@shire.test", "password": "ring"},
			http.StatusConflict, "User already exists",
		},
		{
			"bogus role",
			map[string]any{"firstName": "Pippin", "email": "pippin@shire.test", "password": "x", "role": "wizard"},
			http.StatusUnprocessableEntity, "Invalid Data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", jsonBody(t, tt.body))
			rec := httptest.NewRecorder()
			h.Signup(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeBody(t, rec)["message"]; got != tt.wantMsg {
				t.Errorf("message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestSignupWithInviteCode(t *testing.T) {
	env := setupEnv(t)
	hs := store.NewHouseholdStore(env.db)
	h := NewAuthHandler(store.NewUserStore(env.db), hs, store.NewSessionStore(env.db), slog.Default())

	household, err := hs.GetByID(env.parent.HouseholdID)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}

	body := map[string]any{
		"firstName": "Sam", "lastName": "Gamgee", "email": "sam@shire.test",
		"password": "potatoes", "role": "children", "inviteCode": household.InviteCode,
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", jsonBody(t, body))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	sam, err := store.NewUserStore(env.db).GetByEmail("sam@shire.test")
	if err != nil || sam == nil {
		t.Fatalf("get sam: %v", err)
	}
	if sam.HouseholdID != env.parent.HouseholdID {
		t.Errorf("household = %d, want %d", sam.HouseholdID, env.parent.HouseholdID)
	}
}

func TestLoginAndLogout(t *testing.T) {
	env := setupEnv(t)
	us := store.NewUserStore(env.db)
	ss := store.NewSessionStore(env.db)
	h := NewAuthHandler(us, store.NewHouseholdStore(env.db), ss, slog.Default())

	hash, err := authpkg.HashPassword("ring")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	household, _ := store.NewHouseholdStore(env.db).Create("Took")
	if _, err := us.Create(household.ID, "Pippin", "Took", "pippin@shire.test", hash, model.RoleChildren); err != nil {
		t.Fatalf("create user: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		jsonBody(t, map[string]string{"email": "pippin@shire.test", "password": "ring"}))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName || cookies[0].Value == "" {
		t.Fatalf("session cookie not set: %v", cookies)
	}

	// Wrong password.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		jsonBody(t, map[string]string{"email": "pippin@shire.test", "password": "wrong"}))
	rec = httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	// Logout invalidates the session.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", rec.Code)
	}
	sess, err := ss.GetByToken(cookies[0].Value)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess != nil {
		t.Error("session survives logout")
	}
}

func TestChoreCreateEndpoint(t *testing.T) {
	env := setupEnv(t)
	cs := store.NewChoreStore(env.db)
	ts := store.NewTaskStore(env.db)
	h := NewChoreHandler(cs, ts, env.hub, slog.Default())

	body := map[string]any{
		"chore":      map[string]any{"name": "Dishes", "points": 5, "assignedTo": []int64{env.child.ID}},
		"recurrence": map[string]any{"type": "Weekly", "repeat": []int{1, 3, 5}, "startDate": "2026-08-24"},
	}
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/parent/chore", jsonBody(t, body)), env.parent)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["message"]; got != "Chore created" {
		t.Errorf("message = %q, want Chore created", got)
	}

	chores, err := cs.ListByHousehold(env.parent.HouseholdID)
	if err != nil || len(chores) != 1 {
		t.Fatalf("chores = %v, %v", chores, err)
	}
	tasks, err := ts.ListByChore(chores[0].ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].OwnerID != env.child.ID {
		t.Fatalf("tasks = %v, want one for the assignee", tasks)
	}
	if got := tasks[0].StartDate.Format("2006-01-02"); got != "2026-08-24" {
		t.Errorf("task start = %s, want the recurrence start date", got)
	}

	// Same chore again is a duplicate.
	req = asUser(httptest.NewRequest(http.MethodPost, "/api/parent/chore", jsonBody(t, body)), env.parent)
	rec = httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate status = %d, want 400", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Chore already exists" {
		t.Errorf("duplicate message = %q", got)
	}
}

func TestChoreUpdateEndpoint(t *testing.T) {
	env := setupEnv(t)
	cs := store.NewChoreStore(env.db)
	h := NewChoreHandler(cs, store.NewTaskStore(env.db), env.hub, slog.Default())

	chore, err := cs.Create(env.parent.HouseholdID, "Dishes", 5, []int64{env.child.ID}, "Daily", time.Now())
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	// A "None" recurrence in the payload is ignored, matching the old pages.
	body := map[string]any{
		"chore":      map[string]any{"name": "Dishes and pans", "points": 8},
		"recurrence": map[string]any{"type": "None"},
	}
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/parent/chore?_id="+itoa(chore.ID), jsonBody(t, body)), env.parent)
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	updated, err := cs.GetByID(chore.ID)
	if err != nil {
		t.Fatalf("get chore: %v", err)
	}
	if updated.Name != "Dishes and pans" || updated.Points != 8 {
		t.Errorf("chore = %q/%d, want updated fields", updated.Name, updated.Points)
	}
	if len(updated.AssignedTo) != 1 {
		t.Errorf("assignees = %v, want preserved", updated.AssignedTo)
	}

	recur, err := cs.GetRecurrence(chore.ID)
	if err != nil {
		t.Fatalf("get recurrence: %v", err)
	}
	if recur.Rule != "Daily" {
		t.Errorf("rule = %q, want Daily untouched by None payload", recur.Rule)
	}
}

func TestChoreDeleteEndpoint(t *testing.T) {
	env := setupEnv(t)
	cs := store.NewChoreStore(env.db)
	h := NewChoreHandler(cs, store.NewTaskStore(env.db), env.hub, slog.Default())

	chore, err := cs.Create(env.parent.HouseholdID, "Dishes", 5, nil, "None", time.Now())
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/parent/chore?_id="+itoa(chore.ID), nil), env.parent)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Chore deleted" {
		t.Errorf("message = %q", got)
	}
}

func TestTaskUpdateEndpoint(t *testing.T) {
	env := setupEnv(t)
	cs := store.NewChoreStore(env.db)
	ts := store.NewTaskStore(env.db)
	h := NewTaskHandler(ts, env.hub, slog.Default())

	chore, err := cs.Create(env.parent.HouseholdID, "Dishes", 5, []int64{env.child.ID}, "None", time.Now())
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	tasks, err := ts.CreateBatch(chore.ID, []int64{env.child.ID}, time.Now())
	if err != nil {
		t.Fatalf("create tasks: %v", err)
	}
	id := tasks[0].ID

	// Paying an unfinished task is an illegal transition.
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/parent/chore/task?_id="+itoa(id),
		jsonBody(t, map[string]any{"paid": true})), env.parent)
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("pay unfinished status = %d, want 409", rec.Code)
	}

	// Finish, then pay.
	req = asUser(httptest.NewRequest(http.MethodPut, "/api/parent/chore/task?_id="+itoa(id),
		jsonBody(t, map[string]any{"status": "finished"})), env.parent)
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("finish status = %d, want 204", rec.Code)
	}

	req = asUser(httptest.NewRequest(http.MethodPut, "/api/parent/chore/task?_id="+itoa(id),
		jsonBody(t, map[string]any{"paid": true})), env.parent)
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("pay status = %d, want 204", rec.Code)
	}

	paid, err := ts.GetByID(id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if paid.PaidDate == nil || paid.Status != string(task.StatusPaid) {
		t.Errorf("task = %+v, want paid", paid)
	}
}

func TestChildrenFinishEndpoint(t *testing.T) {
	env := setupEnv(t)
	cs := store.NewChoreStore(env.db)
	ts := store.NewTaskStore(env.db)
	h := NewChildrenHandler(ts, env.hub, slog.Default())

	chore, err := cs.Create(env.parent.HouseholdID, "Dishes", 5, []int64{env.child.ID}, "None", time.Now())
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	tasks, err := ts.CreateBatch(chore.ID, []int64{env.child.ID}, time.Now())
	if err != nil {
		t.Fatalf("create tasks: %v", err)
	}
	id := tasks[0].ID

	// Another user cannot finish someone else's task.
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/children/chore?_id="+itoa(id), nil), env.parent)
	rec := httptest.NewRecorder()
	h.Finish(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("foreign task status = %d, want 500", rec.Code)
	}

	req = asUser(httptest.NewRequest(http.MethodPut, "/api/children/chore?_id="+itoa(id), nil), env.child)
	rec = httptest.NewRecorder()
	h.Finish(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["message"]; got != "Chore finished" {
		t.Errorf("message = %q", got)
	}

	finished, err := ts.GetByID(id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if finished.Status != string(task.StatusFinished) || finished.FinishedDate == nil {
		t.Errorf("task = %+v, want finished", finished)
	}
}

func TestChildrenOwedEndpoint(t *testing.T) {
	env := setupEnv(t)
	cs := store.NewChoreStore(env.db)
	ts := store.NewTaskStore(env.db)
	h := NewChildrenHandler(ts, env.hub, slog.Default())

	chore, err := cs.Create(env.parent.HouseholdID, "Dishes", 5, []int64{env.child.ID}, "None", time.Now())
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	tasks, err := ts.CreateBatch(chore.ID, []int64{env.child.ID}, time.Now())
	if err != nil {
		t.Fatalf("create tasks: %v", err)
	}
	if _, err := ts.SetStatus(tasks[0].ID, task.StatusFinished, time.Now()); err != nil {
		t.Fatalf("finish: %v", err)
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/children/owed", nil), env.child)
	rec := httptest.NewRecorder()
	h.Owed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["owed"] != float64(5) {
		t.Errorf("owed = %v, want 5", body["owed"])
	}
	if body["rewarded"] != float64(0) {
		t.Errorf("rewarded = %v, want 0", body["rewarded"])
	}
}

func TestPointsAddEndpoint(t *testing.T) {
	env := setupEnv(t)
	us := store.NewUserStore(env.db)
	ls := store.NewLedgerStore(env.db)
	h := NewPointsHandler(us, ls, slog.Default())

	// 5 points across two users is 2.5 each.
	body := map[string]any{"userIds": []int64{env.parent.ID, env.child.ID}, "points": 5}
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/parent/points/add", jsonBody(t, body)), env.parent)
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	child, err := us.GetByID(env.child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if child.PointsOwned.String() != "2.5" {
		t.Errorf("child points = %s, want 2.5", child.PointsOwned)
	}

	entries, err := ls.ListByUser(env.child.ID)
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != model.LedgerAdjust || entries[0].Amount.String() != "2.5" {
		t.Errorf("ledger = %v, want one 2.5 adjust entry", entries)
	}
}

func TestRouteNotValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/parent/chore", nil)
	rec := httptest.NewRecorder()
	RouteNotValid(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Route not valid" {
		t.Errorf("message = %q", got)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
