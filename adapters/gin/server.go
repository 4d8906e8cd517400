package donorgin

import (
	"sync"

	"github.com/PaulFidika/donorkit/adapters/gin/handlers"
	"github.com/PaulFidika/donorkit/adapters/ginutil"
	core "github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Options configures a Server. Zero values take defaults.
type Options struct {
	Config   core.Config
	Limiter  ginutil.RateLimiter
	Events   core.EventLogger
	Clock    core.Clock
	Log      logrus.FieldLogger
	Language *LanguageConfig
	Client   *ClientConfig
}

// Server exposes redemption, status, consumption and the landing page over
// HTTP. Each client gets its own slot in Store.
type Server struct {
	store core.Storage
	opts  Options
	// mu guards read-modify-write when store is not a core.Updater.
	mu sync.Mutex
}

func NewServer(store core.Storage, opts Options) *Server {
	if opts.Config.Catalog == nil {
		opts.Config.Catalog = entitlements.DefaultCatalog()
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Server{store: store, opts: opts}
}

// ServiceFor implements handlers.ServiceProvider.
func (s *Server) ServiceFor(c *gin.Context, opts ...core.Option) *core.Service {
	id, _ := ClientID(c)
	base := []core.Option{
		core.WithClock(s.opts.Clock),
		core.WithLogger(s.opts.Log.WithField("client_id", id)),
		core.WithLock(&s.mu),
	}
	if s.opts.Events != nil {
		base = append(base, core.WithEventLogger(s.opts.Events))
	}
	return core.NewService(s.opts.Config, core.Scoped(s.store, id), append(base, opts...)...)
}

// Register mounts the routes and their middleware on r.
func (s *Server) Register(r gin.IRouter) {
	g := r.Group("/")
	g.Use(LanguageMiddleware(s.opts.Language), ClientMiddleware(s.opts.Client))
	g.GET("/", handlers.HandlePageGET(s))
	g.GET("/index.html", handlers.HandlePageGET(s))
	g.GET("/status", handlers.HandleStatusGET(s, s.opts.Limiter))
	g.POST("/redeem", handlers.HandleRedeemPOST(s, s.opts.Limiter))
	g.POST("/consume", handlers.HandleConsumePOST(s, s.opts.Limiter))
}

// Engine returns a gin engine with recovery, request logging and the routes.
func (s *Server) Engine() *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), RequestLogger(s.opts.Log))
	s.Register(e)
	return e
}
