package server

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"infinisweeper/config"
	"infinisweeper/game"
	"infinisweeper/solver"
	"infinisweeper/viewmodel"
)

// Server はゲームのセッションとHTTPハンドラを管理します
type Server struct {
	cfg      *config.Config
	sessions *Sessions
	metrics  *Metrics
	log      logrus.FieldLogger
}

// NewServer はサーバーインスタンスを初期化します
func NewServer(cfg *config.Config, log logrus.FieldLogger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: NewSessions(cfg.Server.MaxSessions),
		metrics:  NewMetrics(),
		log:      log,
	}
}

// Router はAPI・メトリクス・静的ファイルのルートを持つ gin.Engine を返します
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"sessions":  s.sessions.Len(),
			"timestamp": time.Now().Unix(),
		})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api/games")
	{
		api.POST("", s.HandleNew)
		api.DELETE("/:id", s.HandleDelete)
		api.POST("/:id/open", s.HandleOpen)
		api.POST("/:id/flag", s.HandleFlag)
		api.POST("/:id/bot", s.HandleBot)
		api.GET("/:id/cell", s.HandleCell)
		api.GET("/:id/board", s.HandleBoard)
	}

	if dir := s.cfg.Server.StaticDir; dir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(dir))))
	}
	return r
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}

type newGameRequest struct {
	Seed    uint64 `json:"seed"`
	Density int    `json:"density"`
}

type newGameResponse struct {
	ID      string               `json:"id"`
	Seed    uint64               `json:"seed"`
	Density int                  `json:"density"`
	Reveal  viewmodel.RevealView `json:"reveal"`
}

type botResponse struct {
	Move   *moveView            `json:"move"`
	Reveal viewmodel.RevealView `json:"reveal"`
}

type moveView struct {
	X          int64   `json:"x"`
	Y          int64   `json:"y"`
	Type       string  `json:"type"`
	IsGuess    bool    `json:"is_guess"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// HandleNew は新しいゲームを作り、原点を開けた結果を返します
func (s *Server) HandleNew(c *gin.Context) {
	var req newGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
			return
		}
	}
	if req.Density < 0 {
		abortWithError(c, http.StatusBadRequest, errors.Errorf("density must be >= 1, got %d", req.Density))
		return
	}

	opts := s.cfg.Game.Options()
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	if req.Density > 0 {
		opts.Density = req.Density
	}

	sess, err := s.sessions.Create(func(id string) *game.Engine {
		o := opts
		o.Logger = s.log.WithField("session", id)
		return game.New(o)
	})
	if err != nil {
		abortWithError(c, http.StatusServiceUnavailable, err)
		return
	}
	s.metrics.sessions.Set(float64(s.sessions.Len()))

	sess.Mutex.Lock()
	res := sess.Engine.Reveal(game.Origin)
	sess.Mutex.Unlock()
	s.metrics.ObserveReveal(res)

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"seed":    opts.Seed,
		"density": sess.Engine.Options().Density,
	}).Info("new game")

	c.JSON(http.StatusCreated, newGameResponse{
		ID:      sess.ID,
		Seed:    opts.Seed,
		Density: sess.Engine.Options().Density,
		Reveal:  viewmodel.NewRevealView(res, false),
	})
}

// HandleDelete はゲームを破棄します
func (s *Server) HandleDelete(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		abortWithError(c, http.StatusNotFound, errors.New("game not found"))
		return
	}
	s.metrics.sessions.Set(float64(s.sessions.Len()))
	c.Status(http.StatusNoContent)
}

// HandleOpen はマスを開けるAPI
func (s *Server) HandleOpen(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	at, err := parseCoord(c, "x", "y")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	sess.Mutex.Lock()
	defer sess.Mutex.Unlock()
	if sess.GameOver {
		abortWithError(c, http.StatusConflict, errors.New("game is over"))
		return
	}
	res := sess.Engine.Reveal(at)
	s.metrics.ObserveReveal(res)
	if res.HitMine() {
		sess.GameOver = true
		s.log.WithFields(logrus.Fields{"session": sess.ID, "x": at.X, "y": at.Y}).Info("mine revealed")
	}
	c.JSON(http.StatusOK, viewmodel.NewRevealView(res, sess.GameOver))
}

// HandleFlag はフラグを切り替えるAPI
func (s *Server) HandleFlag(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	at, err := parseCoord(c, "x", "y")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	sess.Mutex.Lock()
	defer sess.Mutex.Unlock()
	if sess.GameOver {
		abortWithError(c, http.StatusConflict, errors.New("game is over"))
		return
	}
	state, changed := sess.Engine.ToggleFlag(at)
	if !changed {
		abortWithError(c, http.StatusConflict, errors.New("cell is already open"))
		return
	}
	c.JSON(http.StatusOK, viewmodel.NewCellView(state, false))
}

// HandleBot はBotに1手進めさせます
func (s *Server) HandleBot(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	sess.Mutex.Lock()
	defer sess.Mutex.Unlock()
	if sess.GameOver {
		abortWithError(c, http.StatusConflict, errors.New("game is over"))
		return
	}

	move := solver.New(sess.Engine.Board()).NextMove()
	if move == nil {
		c.JSON(http.StatusOK, botResponse{Reveal: viewmodel.NewRevealView(game.Result{}, false)})
		return
	}
	res := solver.Apply(sess.Engine, move)
	if move.Type == solver.MoveOpen {
		s.metrics.ObserveReveal(res)
		if res.HitMine() {
			sess.GameOver = true
		}
	}
	c.JSON(http.StatusOK, botResponse{
		Move: &moveView{
			X:          move.X,
			Y:          move.Y,
			Type:       move.Type.String(),
			IsGuess:    move.IsGuess,
			Strategy:   move.Strategy,
			Confidence: move.Confidence,
		},
		Reveal: viewmodel.NewRevealView(res, sess.GameOver),
	})
}

// HandleCell は生成済みのマスを1つ返します
func (s *Server) HandleCell(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	at, err := parseCoord(c, "x", "y")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	sess.Mutex.Lock()
	defer sess.Mutex.Unlock()
	state, found := sess.Engine.Query(at)
	if !found {
		abortWithError(c, http.StatusNotFound, errors.Errorf("cell (%d,%d) not generated", at.X, at.Y))
		return
	}
	c.JSON(http.StatusOK, viewmodel.NewCellView(state, sess.GameOver))
}

// HandleBoard は矩形範囲の生成済みマスを返します
func (s *Server) HandleBoard(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	from, err := parseCoord(c, "x0", "y0")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	to, err := parseCoord(c, "x1", "y1")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	rect, err := s.window(from, to)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	sess.Mutex.Lock()
	defer sess.Mutex.Unlock()
	c.JSON(http.StatusOK, viewmodel.NewBoardView(sess.Engine.Board(), rect, sess.GameOver))
}

func (s *Server) session(c *gin.Context) (*Session, bool) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, errors.New("game not found"))
	}
	return sess, ok
}

// window は2点から矩形を作り、大きさを制限します
func (s *Server) window(a, b game.Coord) (game.Rect, error) {
	r := game.NewRect(a, b)
	limit := s.cfg.Server.MaxWindow
	dx, dy, ok := r.Span()
	if !ok || limit < 1 || dx >= uint64(limit) || dy >= uint64(limit) {
		return game.Rect{}, errors.Errorf("window larger than %d cells per side", limit)
	}
	return r, nil
}

func parseCoord(c *gin.Context, xKey, yKey string) (game.Coord, error) {
	x, err := strconv.ParseInt(c.Query(xKey), 10, 64)
	if err != nil {
		return game.Coord{}, errors.Wrapf(err, "invalid %s", xKey)
	}
	y, err := strconv.ParseInt(c.Query(yKey), 10, 64)
	if err != nil {
		return game.Coord{}, errors.Wrapf(err, "invalid %s", yKey)
	}
	return game.Coord{X: x, Y: y}, nil
}
