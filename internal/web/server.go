// Package web serves the admin dashboard as server-rendered pages on top of
// the dashboard bindings.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muhammadarsalan100/ramik"
	"github.com/muhammadarsalan100/ramik/dashboard"
	"github.com/muhammadarsalan100/ramik/guard"
	"github.com/muhammadarsalan100/ramik/table"
)

// Options wires a Server.
type Options struct {
	Dashboard *dashboard.Dashboard
	Guard     *guard.Guard

	// PublicPath is where ended sessions are sent. Default: "/".
	PublicPath string

	// GeoIP enriches access logs. Optional.
	GeoIP *guard.GeoIP

	// Cart backs the cart page. Default: dashboard.MockCart().
	Cart *dashboard.Cart

	// Registry receives the server's collectors and is exposed on /metrics.
	// Default: a new registry.
	Registry *prometheus.Registry

	Logger *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	dash       *dashboard.Dashboard
	guard      *guard.Guard
	publicPath string
	geoip      *guard.GeoIP
	cart       *dashboard.Cart
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	log        *slog.Logger
	router     *gin.Engine
}

// New builds the server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Dashboard == nil || opts.Guard == nil {
		return nil, errors.New("web: dashboard and guard are required")
	}
	if opts.PublicPath == "" {
		opts.PublicPath = "/"
	}
	if opts.Cart == nil {
		opts.Cart = dashboard.MockCart()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		dash:       opts.Dashboard,
		guard:      opts.Guard,
		publicPath: opts.PublicPath,
		geoip:      opts.GeoIP,
		cart:       opts.Cart,
		registry:   opts.Registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ramik_web_requests_total",
			Help: "Dashboard HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		log: opts.Logger.With("component", "web"),
	}
	if err := s.registry.Register(s.requests); err != nil {
		return nil, fmt.Errorf("web: failed to register metrics: %w", err)
	}

	s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.SetHTMLTemplate(pages)

	r.GET("/", s.loginPage)
	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.POST("/logout", s.logout)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": ramik.Version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	d := r.Group("/dashboard")
	d.Use(s.guard.Gin())
	d.GET("", s.overview)
	d.GET("/products", s.products)
	d.GET("/products/:id/sizes", s.productSizes)
	d.GET("/categories", s.categories)
	d.GET("/languages", s.languages)
	d.GET("/regions", s.regions)
	d.GET("/users", s.users)
	d.POST("/users/:id", s.updateUser)
	d.GET("/cart", s.cartPage)
	d.POST("/cart/:id/quantity", s.cartQuantity)
	d.POST("/cart/:id/remove", s.cartRemove)

	s.router = r
}

// accessLog logs each request with its visitor and counts it by route.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		v := guard.Inspect(c.Request)
		s.geoip.Locate(&v)
		s.log.InfoContext(c.Request.Context(), "http request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"visitor", v,
		)
	}
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func (s *Server) loginPage(c *gin.Context) {
	if s.guard.Check(c.Request.Context()) == nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login", page{Title: "Sign in"})
}

func (s *Server) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login", page{Title: "Sign in", Error: "Enter a valid email and password"})
		return
	}

	_, err := s.dash.Client().Login(c.Request.Context(), ramik.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		status := http.StatusBadGateway
		var re *ramik.RequestError
		if errors.As(err, &re) && re.Status < http.StatusInternalServerError {
			status = http.StatusUnauthorized
		}
		c.HTML(status, "login", page{Title: "Sign in", Error: message(err)})
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) logout(c *gin.Context) {
	if err := s.dash.Client().Logout(c.Request.Context()); err != nil {
		s.log.ErrorContext(c.Request.Context(), "logout failed", "error", err)
	}
	c.Redirect(http.StatusSeeOther, s.publicPath)
}

// render writes a full page around body, sending the user back to the public
// page when the session ended mid-request.
func (s *Server) render(c *gin.Context, status int, p page, err error) {
	if errors.Is(err, ramik.ErrSessionEnded) {
		c.Redirect(http.StatusFound, s.publicPath)
		return
	}
	if err != nil {
		p.Error = message(err)
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
	}
	if user, uerr := s.dash.Client().CurrentUser(c.Request.Context()); uerr == nil && user != nil {
		p.User = user.Name
	}
	c.HTML(status, "page", p)
}

func renderTable[T any](s *Server, c *gin.Context, title string, rows []T, err error, cols []table.Column[T]) {
	if errors.Is(err, ramik.ErrSessionEnded) {
		c.Redirect(http.StatusFound, s.publicPath)
		return
	}
	var buf bytes.Buffer
	view := table.View[T]{Rows: rows, Columns: cols, Failed: err != nil}
	if werr := table.WriteHTML(&buf, view); werr != nil {
		c.AbortWithError(http.StatusInternalServerError, werr)
		return
	}
	s.render(c, http.StatusOK, page{Title: title, Flash: c.Query("flash"), Body: template.HTML(buf.String())}, err)
}

// message is the text shown to the user for err.
func message(err error) string {
	var re *ramik.RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ue *ramik.UploadError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return err.Error()
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "invalid id %q", c.Param("id"))
		return 0, false
	}
	return id, true
}
