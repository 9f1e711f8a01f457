package app

import (
	"slices"
	"time"

	"bitwise74/user-api/app/auth"
	"bitwise74/user-api/app/root"
	"bitwise74/user-api/app/user"
	"bitwise74/user-api/internal"
	"bitwise74/user-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		corsFor(d.Config.Host.CORS),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetUint("userID"); v != 0 {
					fields = append(fields, zap.Uint("userID", v))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewTimeoutMiddleware(d.Config.Host.RequestTimeout),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	jwt := middleware.NewJWTMiddleware(d.Auth)
	owner := middleware.NewOwnerMiddleware()
	bodyLimit := middleware.BodySizeLimiter(1 << 20)

	// GET /			-> Banner
	router.GET("/", root.Banner)

	// GET /health			-> Used to check if the server is alive
	router.GET("/health", root.Heartbeat)
	router.HEAD("/health", root.Heartbeat)

	a := router.Group("/auth", bodyLimit)
	{
		// POST /auth/login		-> Logs in a user and returns a bearer token
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /auth/logout		-> Revokes the presented token
		a.POST("/logout", jwt, func(c *gin.Context) { auth.Logout(c, d) })

		// GET /auth/validate		-> Returns the user behind a token
		a.GET("/validate", jwt, auth.Validate)
	}

	u := router.Group("/users", bodyLimit)
	{
		// GET /users			-> Lists users, ?skip=&limit=
		u.GET("", cacheFor(d.Config.Cache.TTL, d.Config.Cache.RedisAddr), func(c *gin.Context) { user.UserList(c, d) })

		// POST /users			-> Registers a new user
		u.POST("", func(c *gin.Context) { user.UserCreate(c, d) })

		// GET /users/:id		-> Returns a single user
		u.GET("/:id", func(c *gin.Context) { user.UserFetch(c, d) })

		// PUT /users/:id		-> Updates the caller's own record
		u.PUT("/:id", jwt, owner, func(c *gin.Context) { user.UserUpdate(c, d) })

		// PATCH /users/:id		-> Same as PUT, only the sent fields change
		u.PATCH("/:id", jwt, owner, func(c *gin.Context) { user.UserUpdate(c, d) })

		// DELETE /users/:id		-> Deletes the caller's own record
		u.DELETE("/:id", jwt, owner, func(c *gin.Context) { user.UserDelete(c, d) })
	}

	return router
}

// MakeLogger replaces the global zap logger with a coloured development
// logger writing at level
func MakeLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)
	return nil
}

func corsFor(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}

// cacheFor caches responses by URI. A zero ttl disables it, a redis address
// moves the store out of process.
func cacheFor(ttl time.Duration, redisAddr string) gin.HandlerFunc {
	if ttl <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var store persist.CacheStore
	if redisAddr != "" {
		store = persist.NewRedisStore(redis.NewClient(&redis.Options{Addr: redisAddr}))
	} else {
		store = persist.NewMemoryStore(time.Minute)
	}

	return cache.CacheByRequestURI(store, ttl)
}
