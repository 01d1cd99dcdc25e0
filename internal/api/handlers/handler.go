package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cadugr/frotawatch/internal/importer"
	"github.com/cadugr/frotawatch/internal/repository"
	"github.com/cadugr/frotawatch/internal/scheduling"
	"github.com/cadugr/frotawatch/internal/service"
	"github.com/cadugr/frotawatch/pkg/ws"
)

// Handler serves the dashboard HTTP API.
type Handler struct {
	logger    *zap.Logger
	dashboard *service.Dashboard
	scheduler *scheduling.Service
	importSvc *importer.Service
	fleetRepo *repository.FleetRepository
	logRepo   *repository.ImportLogRepository
	logLimit  int
	wsHub     *ws.Hub
	upgrader  websocket.Upgrader
}

func NewHandler(
	logger *zap.Logger,
	dashboard *service.Dashboard,
	scheduler *scheduling.Service,
	importSvc *importer.Service,
	fleetRepo *repository.FleetRepository,
	logRepo *repository.ImportLogRepository,
	logLimit int,
	wsHub *ws.Hub,
) *Handler {
	return &Handler{
		logger:    logger,
		dashboard: dashboard,
		scheduler: scheduler,
		importSvc: importSvc,
		fleetRepo: fleetRepo,
		logRepo:   logRepo,
		logLimit:  logLimit,
		wsHub:     wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // frontend runs on another port in development
			},
		},
	}
}

// HandleWebSocket upgrades the connection and attaches it to the hub.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"ws_clients": h.wsHub.ClientCount(),
	})
}
