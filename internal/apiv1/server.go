package apiv1

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/push"
	"github.com/choreme/choreme/internal/recurrence"
	"github.com/choreme/choreme/internal/store"
	"github.com/choreme/choreme/internal/websocket"
)

// Server is the /api/v1 REST surface the SPA client talks to.
type Server struct {
	users      *store.UserStore
	households *store.HouseholdStore
	chores     *store.ChoreStore
	tasks      *store.TaskStore
	rewards    *store.RewardStore
	ledger     *store.LedgerStore
	pushSubs   *store.PushStore

	jwt      *auth.JWTService
	hub      *websocket.Hub
	notifier *push.Notifier
	pushSvc  *push.Service
	logger   *slog.Logger

	ginMode string
	engine  *gin.Engine
}

type Deps struct {
	Users      *store.UserStore
	Households *store.HouseholdStore
	Chores     *store.ChoreStore
	Tasks      *store.TaskStore
	Rewards    *store.RewardStore
	Ledger     *store.LedgerStore
	PushSubs   *store.PushStore
	JWT        *auth.JWTService
	Hub        *websocket.Hub
	Notifier   *push.Notifier
	PushSvc    *push.Service
	Logger     *slog.Logger
	GinMode    string
}

func NewServer(d Deps) *Server {
	s := &Server{
		users:      d.Users,
		households: d.Households,
		chores:     d.Chores,
		tasks:      d.Tasks,
		rewards:    d.Rewards,
		ledger:     d.Ledger,
		pushSubs:   d.PushSubs,
		jwt:        d.JWT,
		hub:        d.Hub,
		notifier:   d.Notifier,
		pushSvc:    d.PushSvc,
		logger:     d.Logger.With("component", "apiv1"),
		ginMode:    d.GinMode,
	}
	s.setupValidators()
	s.setupRoutes()
	return s
}

// setupValidators registers the recurrence rule check used by the chore
// DTOs ("None", "Daily", "Weekly", "Monthly").
func (s *Server) setupValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("rrule", func(fl validator.FieldLevel) bool {
			_, err := recurrence.Parse(fl.Field().String())
			return err == nil
		})
	}
}

func (s *Server) setupRoutes() {
	mode := s.ginMode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())

	v1 := s.engine.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
	}

	v1.POST("/households/join", s.joinHousehold)

	protected := v1.Group("")
	protected.Use(authMiddleware(s.jwt))
	{
		protected.POST("/households/invite", requireParent(), s.generateInvite)

		protected.GET("/users/me", s.getCurrentUser)
		protected.PUT("/users/me", s.updateCurrentUser)
		protected.GET("/users", requireParent(), s.getUsers)

		protected.GET("/chores", s.getChores)
		protected.POST("/chores", requireParent(), s.createChore)
		protected.GET("/chores/:id", s.getChore)
		protected.PUT("/chores/:id", requireParent(), s.updateChore)
		protected.DELETE("/chores/:id", requireParent(), s.deleteChore)

		protected.GET("/assignments", s.getAssignments)
		protected.GET("/assignments/:id", s.getAssignment)
		protected.PATCH("/assignments/:id/complete", s.completeAssignment)
		protected.PATCH("/assignments/:id/approve", requireParent(), s.approveAssignment)
		protected.PATCH("/assignments/:id/reject", requireParent(), s.rejectAssignment)

		protected.GET("/rewards", s.getRewards)
		protected.POST("/rewards", requireParent(), s.createReward)
		protected.GET("/rewards/:id", s.getReward)
		protected.PUT("/rewards/:id", requireParent(), s.updateReward)
		protected.DELETE("/rewards/:id", requireParent(), s.deleteReward)
		protected.POST("/rewards/:id/redeem", s.redeemReward)

		protected.GET("/redemptions", s.getRedemptions)
		protected.PATCH("/redemptions/:id/approve", requireParent(), s.approveRedemption)
		protected.PATCH("/redemptions/:id/reject", requireParent(), s.rejectRedemption)

		protected.GET("/ledger", s.getLedger)
		protected.GET("/ledger/balance", s.getBalance)
		protected.POST("/ledger/adjust", requireParent(), s.adjustLedger)

		protected.GET("/notifications/vapid-key", s.getVAPIDKey)
		protected.POST("/notifications/subscribe", s.subscribePush)
	}
}

// Handler exposes the engine for mounting on the outer mux.
func (s *Server) Handler() http.Handler {
	return s.engine
}
