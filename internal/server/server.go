package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/choreme/choreme/internal/apiv1"
	"github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/backup"
	"github.com/choreme/choreme/internal/config"
	"github.com/choreme/choreme/internal/handler"
	"github.com/choreme/choreme/internal/middleware"
	"github.com/choreme/choreme/internal/push"
	"github.com/choreme/choreme/internal/scheduler"
	"github.com/choreme/choreme/internal/store"
	ws "github.com/choreme/choreme/internal/websocket"
)

// Server wires the stores, both API surfaces, and the background
// services together.
type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH      *handler.AuthHandler
	choreH     *handler.ChoreHandler
	taskH      *handler.TaskHandler
	childrenH  *handler.ChildrenHandler
	pointsH    *handler.PointsHandler
	recurringH *handler.RecurringHandler

	v1 *apiv1.Server

	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	rateLimiter   *middleware.RateLimiter
	sched         *scheduler.Scheduler
	backupManager *backup.Manager
	pushService   *push.Service
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)
	choreStore := store.NewChoreStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)
	ledgerStore := store.NewLedgerStore(db)
	pushStore := store.NewPushStore(db)

	var pushSvc *push.Service
	var notifier *push.Notifier
	if cfg.Push.Enabled() {
		pushSvc = push.NewService(cfg.Push.PublicKey, cfg.Push.PrivateKey, cfg.Push.Subscriber)
		notifier = push.NewNotifier(pushSvc, pushStore, logger)
	}

	sched := scheduler.New(choreStore, taskStore, logger)
	if notifier != nil {
		sched.SetNotifier(notifier)
	}

	backupMgr := backup.NewManager(backup.Config{
		Bucket:     cfg.Backup.Bucket,
		Region:     cfg.Backup.Region,
		Endpoint:   cfg.Backup.Endpoint,
		AccessKey:  cfg.Backup.AccessKeyID,
		SecretKey:  cfg.Backup.SecretAccessKey,
		Passphrase: cfg.Backup.Passphrase,
		Interval:   time.Duration(cfg.Backup.IntervalHours) * time.Hour,
	}, db, logger)

	v1 := apiv1.NewServer(apiv1.Deps{
		Users:      userStore,
		Households: householdStore,
		Chores:     choreStore,
		Tasks:      taskStore,
		Rewards:    rewardStore,
		Ledger:     ledgerStore,
		PushSubs:   pushStore,
		JWT:        auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer),
		Hub:        hub,
		Notifier:   notifier,
		PushSvc:    pushSvc,
		Logger:     logger,
		GinMode:    cfg.Server.GinMode,
	})

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, householdStore, sessionStore, logger.With("component", "auth")),
		choreH:        handler.NewChoreHandler(choreStore, taskStore, hub, logger.With("component", "chore")),
		taskH:         handler.NewTaskHandler(taskStore, hub, logger.With("component", "task")),
		childrenH:     handler.NewChildrenHandler(taskStore, hub, logger.With("component", "children")),
		pointsH:       handler.NewPointsHandler(userStore, ledgerStore, logger.With("component", "points")),
		recurringH:    handler.NewRecurringHandler(sched, logger.With("component", "recurring")),
		v1:            v1,
		sessionStore:  sessionStore,
		userStore:     userStore,
		rateLimiter:   middleware.NewRateLimiter(),
		sched:         sched,
		backupManager: backupMgr,
		pushService:   pushSvc,
		logger:        logger,
	}
}

// Scheduler returns the recurrence scheduler for lifecycle management.
func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.sched
}

// BackupManager returns the backup manager for lifecycle management.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("/api/auth/signup", handler.RouteNotValid)
	outerMux.HandleFunc("/api/auth/login", handler.RouteNotValid)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// The SPA surface carries its own bearer-token auth.
	outerMux.Handle("/api/v1/", s.v1.Handler())

	// Session-protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/api/", authMiddleware(protectedMux))
	outerMux.Handle("GET /ws", authMiddleware(ws.HandleWebSocket(s.hub)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Parent routes
	parent := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireParent(h)
	}
	mux.Handle("POST /api/parent/chore", parent(s.choreH.Create))
	mux.Handle("PUT /api/parent/chore", parent(s.choreH.Update))
	mux.Handle("DELETE /api/parent/chore", parent(s.choreH.Delete))
	mux.Handle("GET /api/parent/chores", parent(s.choreH.List))
	mux.Handle("PUT /api/parent/chore/task", parent(s.taskH.Update))
	mux.Handle("PUT /api/parent/points/add", parent(s.pointsH.Add))
	mux.Handle("GET /api/parent/recurring", parent(s.recurringH.Run))

	// Children routes
	mux.HandleFunc("PUT /api/children/chore", s.childrenH.Finish)
	mux.HandleFunc("GET /api/children/tasks", s.childrenH.Tasks)
	mux.HandleFunc("GET /api/children/owed", s.childrenH.Owed)

	// Known paths hit with the wrong method answer the legacy 500.
	for _, path := range []string{
		"/api/auth/logout",
		"/api/parent/chore",
		"/api/parent/chores",
		"/api/parent/chore/task",
		"/api/parent/points/add",
		"/api/parent/recurring",
		"/api/children/chore",
		"/api/children/tasks",
		"/api/children/owed",
	} {
		mux.HandleFunc(path, handler.RouteNotValid)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
